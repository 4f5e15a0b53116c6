package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lumierephotos/lumiere/pkg/assets"
	"github.com/lumierephotos/lumiere/pkg/config"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/joblogs"
	"github.com/lumierephotos/lumiere/pkg/jobs"
	"github.com/lumierephotos/lumiere/pkg/libraries"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/lumierephotos/lumiere/pkg/users"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"
)

var processID = randStringBytes(8)

type Worker struct {
	config        *config.Config
	configService *config.Service
	log           logger.Logger

	processFuncs map[string]func(ctx context.Context, job *models.Job) error

	assetService   *assets.Service
	jobService     *jobs.Service
	jobLogService  *joblogs.Service
	libraryService *libraries.Service
	userService    *users.Service

	extractor  Extractor
	transcoder Transcoder

	queue          chan *models.Job
	shutdown       chan struct{}
	doneFetching   chan struct{}
	doneProcessing chan struct{}
}

type Options struct {
	ConfigService *config.Service
	Extractor     Extractor
	Transcoder    Transcoder
}

func New(cfg *config.Config, db *bun.DB, opts Options) *Worker {
	if opts.Extractor == nil {
		opts.Extractor = NoopExtractor{}
	}
	if opts.Transcoder == nil {
		opts.Transcoder = NoopTranscoder{}
	}

	w := &Worker{
		config:        cfg,
		configService: opts.ConfigService,
		log:           logger.New(),

		assetService:   assets.NewService(db),
		jobService:     jobs.NewService(db),
		jobLogService:  joblogs.NewService(db),
		libraryService: libraries.NewService(db),
		userService:    users.NewService(db),

		extractor:  opts.Extractor,
		transcoder: opts.Transcoder,

		queue:          make(chan *models.Job, cfg.WorkerProcesses),
		shutdown:       make(chan struct{}),
		doneFetching:   make(chan struct{}),
		doneProcessing: make(chan struct{}, cfg.WorkerProcesses),
	}

	w.processFuncs = map[string]func(ctx context.Context, job *models.Job) error{
		models.JobTypeLibraryScan:        w.ProcessLibraryScanJob,
		models.JobTypeLibraryScanAsset:   w.ProcessScanAssetJob,
		models.JobTypeMarkAssetOffline:   w.ProcessMarkAssetOfflineJob,
		models.JobTypeLibraryDelete:      w.ProcessLibraryDeleteJob,
		models.JobTypeQueueCleanup:       w.ProcessQueueCleanupJob,
		models.JobTypeRemoveOffline:      w.ProcessRemoveOfflineJob,
		models.JobTypeMetadataExtraction: w.ProcessMetadataExtractionJob,
		models.JobTypeVideoConversion:    w.ProcessVideoConversionJob,
		models.JobTypeAssetDeletion:      w.ProcessAssetDeletionJob,
	}

	return w
}

func (w *Worker) Start() {
	go w.fetchJobs()
	for i := 0; i < w.config.WorkerProcesses; i++ {
		go w.processJobs()
	}
}

func (w *Worker) fetchJobs() {
	duration := 5 * time.Second
	timer := time.NewTimer(duration)

	for {
		select {
		case <-w.shutdown:
			// We're shutting down, so stop adding more jobs to the queue.
			w.doneFetching <- struct{}{}
			return
		case <-timer.C:
			j, err := w.jobService.ListJobs(context.Background(), jobs.ListJobsOptions{
				Limit:              pointerutil.Int(w.config.WorkerProcesses),
				Statuses:           []string{models.JobStatusPending, models.JobStatusInProgress},
				ProcessIDToExclude: &processID,
				SkipPausedQueues:   true,
			})
			if err != nil {
				w.log.Err(err).Error("list jobs error")
				timer.Reset(duration)
				continue
			}
			for _, job := range j {
				w.queue <- job
			}
			timer.Reset(duration)
		}
	}
}

func (w *Worker) processJobs() {
	for {
		select {
		case <-w.shutdown:
			w.doneProcessing <- struct{}{}
			return
		case job := <-w.queue:
			// Prep the context to be passed down to the process function.
			id, err := uuid.NewRandom()
			if err != nil {
				w.log.Err(err).Error("new uuid error")
				continue
			}
			log := w.log.ID(id.String()).Root(logger.Data{"job_id": job.ID, "type": job.Type, "process_id": processID})
			ctx := log.WithContext(context.Background())

			// Update job to be in progress and claimed by this process.
			job.Status = models.JobStatusInProgress
			job.ProcessID = &processID
			job.Attempts++

			err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
				Columns: []string{"status", "process_id", "attempts"},
			})
			if err != nil {
				log.Err(err).Error("update job error")
				continue
			}

			// Find and invoke the appropriate process function.
			jobLog := w.jobLogService.NewJobLogger(ctx, job.ID, log)
			fn, ok := w.processFuncs[job.Type]
			if !ok {
				jobLog.Error("can't find process function for type", nil, nil)
				w.finishJob(ctx, job, models.JobStatusFailed)
				continue
			}
			err = fn(ctx, job)
			if err != nil {
				jobLog.Error("process error", err, logger.Data{"attempts": job.Attempts})
				w.retryJob(ctx, job, err)
				continue
			}

			// Update job to be completed so that it's not picked up anymore.
			w.finishJob(ctx, job, models.JobStatusCompleted)
		}
	}
}

// retryJob releases a failed job back to the queue until the attempt budget
// is exhausted, then marks it failed for good. Typed errcodes errors are
// deterministic (validation failures, missing rows): retrying won't change
// the answer, so those fail on the spot.
func (w *Worker) retryJob(ctx context.Context, job *models.Job, procErr error) {
	log := logger.FromContext(ctx)

	var codeErr *errcodes.Error
	if errors.As(procErr, &codeErr) {
		log.Warn("job failed with non-retryable error", logger.Data{"code": codeErr.Code})
		w.finishJob(ctx, job, models.JobStatusFailed)
		return
	}

	if job.Attempts >= w.config.JobMaxAttempts {
		log.Warn("job attempts exhausted", logger.Data{"attempts": job.Attempts})
		w.finishJob(ctx, job, models.JobStatusFailed)
		return
	}

	job.Status = models.JobStatusPending
	job.ProcessID = nil

	err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status", "process_id"},
	})
	if err != nil {
		log.Err(err).Error("update job error")
	}
}

func (w *Worker) finishJob(ctx context.Context, job *models.Job, status string) {
	log := logger.FromContext(ctx)

	job.Status = status

	err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status"},
	})
	if err != nil {
		log.Err(err).Error("update job error")
	}
}

func (w *Worker) Shutdown() {
	close(w.shutdown)

	<-w.doneFetching
	for i := 0; i < w.config.WorkerProcesses; i++ {
		<-w.doneProcessing
	}
}

const letterBytes = "abcdef0123456789"

func randStringBytes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}

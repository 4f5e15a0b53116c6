package worker

import (
	"context"
	"time"

	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/robinjoseph08/golib/logger"
)

// StartScheduler queues a periodic sweep of every external library at the
// user-configured interval. The interval is re-read each tick so a config
// change takes effect without a restart.
func (w *Worker) StartScheduler() {
	go w.runScheduler()
}

func (w *Worker) runScheduler() {
	timer := time.NewTimer(w.syncInterval())

	for {
		select {
		case <-w.shutdown:
			timer.Stop()
			return
		case <-timer.C:
			w.runScheduledSweep()
			timer.Reset(w.syncInterval())
		}
	}
}

func (w *Worker) runScheduledSweep() {
	log := w.log.Root(logger.Data{"process_id": processID})
	ctx := log.WithContext(context.Background())

	// Don't stack sweeps if the previous one is still being worked through.
	hasActive, err := w.jobService.HasActiveJob(ctx, models.JobTypeLibraryScan, nil)
	if err != nil {
		log.Err(err).Error("check active scan error")
		return
	}
	if hasActive {
		log.Info("scan already active; skipping scheduled sweep")
		return
	}

	if err := w.QueueAllScans(ctx, false); err != nil {
		log.Err(err).Error("queue all scans error")
	}
}

func (w *Worker) syncInterval() time.Duration {
	interval := 60 * time.Minute
	if w.configService != nil {
		if userConfig, err := w.configService.RetrieveUserConfig(); err == nil && userConfig.SyncIntervalMinutes > 0 {
			interval = time.Duration(userConfig.SyncIntervalMinutes) * time.Minute
		}
	}
	return interval
}

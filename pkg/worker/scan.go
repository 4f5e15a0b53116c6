package worker

import (
	"context"

	"github.com/lumierephotos/lumiere/pkg/crawler"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/fileutils"
	"github.com/lumierephotos/lumiere/pkg/libraries"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
)

// QueueAllScans enqueues one scan job per non-deleted external library, plus
// a cleanup job that re-drives any half-finished library deletions. force
// re-imports every file instead of only new and modified ones.
func (w *Worker) QueueAllScans(ctx context.Context, force bool) error {
	log := logger.FromContext(ctx)

	externalType := models.LibraryTypeExternal
	allLibraries, err := w.libraryService.ListLibraries(ctx, libraries.ListLibrariesOptions{
		Type: &externalType,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, library := range allLibraries {
		_, err := w.jobService.Enqueue(ctx, models.JobTypeLibraryScan, &models.JobLibraryScanData{
			LibraryID:            library.ID,
			RefreshModifiedFiles: !force,
			RefreshAllFiles:      force,
		})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	_, err = w.jobService.Enqueue(ctx, models.JobTypeQueueCleanup, &models.JobQueueCleanupData{})
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("queued library scans", logger.Data{"count": len(allLibraries), "force": force})
	return nil
}

// ProcessLibraryScanJob reconciles one external library against disk. It only
// emits per-path jobs and stamps refreshed_at; every asset mutation happens
// in the per-path handlers so that paths retry independently.
func (w *Worker) ProcessLibraryScanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	data := job.DataParsed.(*models.JobLibraryScanData)

	library, err := w.libraryService.RetrieveLibrary(ctx, libraries.RetrieveLibraryOptions{
		ID: &data.LibraryID,
	})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Library")) {
			log.Warn("library missing or deleted; skipping scan")
			return nil
		}
		return errors.WithStack(err)
	}
	if library.Type != models.LibraryTypeExternal {
		log.Warn("library is not external; skipping scan")
		return nil
	}

	owner, err := w.userService.Retrieve(ctx, library.OwnerID)
	if err != nil {
		return errors.WithStack(err)
	}
	if owner.ExternalPath == nil || *owner.ExternalPath == "" {
		log.Warn("owner has no external path configured; skipping scan", logger.Data{"owner_id": owner.ID})
		return nil
	}

	crawled, err := crawler.Crawl(log, crawler.Options{
		PathsToCrawl:      library.ImportPathStrings(),
		ExclusionPatterns: library.ExclusionPatternStrings(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Discard anything that escapes the owner's external root. A crawl result
	// outside the root means a misconfigured import path or a symlink pointing
	// elsewhere.
	crawledSet := make(map[string]struct{}, len(crawled))
	for _, path := range crawled {
		if !fileutils.IsContained(*owner.ExternalPath, path) {
			log.Warn("crawled path outside external root", logger.Data{"path": path})
			continue
		}
		crawledSet[path] = struct{}{}
	}

	// Anything in the catalog but no longer on disk gets flagged offline.
	onlinePaths, err := w.assetService.OnlinePaths(ctx, library.ID)
	if err != nil {
		return errors.WithStack(err)
	}
	onlineSet := make(map[string]struct{}, len(onlinePaths))
	offlineJobs := 0
	for _, path := range onlinePaths {
		onlineSet[path] = struct{}{}
		if _, ok := crawledSet[path]; ok {
			continue
		}
		_, err := w.jobService.Enqueue(ctx, models.JobTypeMarkAssetOffline, &models.JobMarkAssetOfflineData{
			LibraryID: library.ID,
			AssetPath: path,
		})
		if err != nil {
			return errors.WithStack(err)
		}
		offlineJobs++
	}

	// Refresh scans consider every crawled path; plain scans only paths the
	// catalog doesn't know yet.
	scanJobs := 0
	for path := range crawledSet {
		if !data.RefreshAllFiles && !data.RefreshModifiedFiles {
			if _, ok := onlineSet[path]; ok {
				continue
			}
		}
		_, err := w.jobService.Enqueue(ctx, models.JobTypeLibraryScanAsset, &models.JobScanAssetData{
			LibraryID: library.ID,
			OwnerID:   library.OwnerID,
			AssetPath: path,
			Force:     data.RefreshAllFiles,
		})
		if err != nil {
			return errors.WithStack(err)
		}
		scanJobs++
	}

	err = w.libraryService.UpdateRefreshedAt(ctx, library.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("finished library scan", logger.Data{
		"library_id":   library.ID,
		"crawled":      len(crawledSet),
		"offline_jobs": offlineJobs,
		"scan_jobs":    scanJobs,
	})
	return nil
}

// ProcessQueueCleanupJob re-enqueues deletion for libraries that are soft
// deleted but still hold assets. Deletion converges over repeated sweeps
// instead of one long transaction.
func (w *Worker) ProcessQueueCleanupJob(ctx context.Context, _ *models.Job) error {
	log := logger.FromContext(ctx)

	deleted, err := w.libraryService.ListLibraries(ctx, libraries.ListLibrariesOptions{
		OnlyDeleted: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, library := range deleted {
		hasActive, err := w.jobService.HasActiveJob(ctx, models.JobTypeLibraryDelete, pointerutil.Int(library.ID))
		if err != nil {
			return errors.WithStack(err)
		}
		if hasActive {
			continue
		}
		_, err = w.jobService.Enqueue(ctx, models.JobTypeLibraryDelete, &models.JobLibraryDeleteData{
			LibraryID: library.ID,
		})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if len(deleted) > 0 {
		log.Info("re-queued library deletions", logger.Data{"count": len(deleted)})
	}
	return nil
}

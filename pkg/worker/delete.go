package worker

import (
	"context"

	"github.com/lumierephotos/lumiere/pkg/assets"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/libraries"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ProcessLibraryDeleteJob drains a soft-deleted library. Every owned asset
// becomes its own deletion job; the library row is hard-deleted only once the
// asset count reaches zero. Until then the row stays soft-deleted and the
// cleanup sweep re-enqueues this job, so deletion converges across crashes
// and restarts.
func (w *Worker) ProcessLibraryDeleteJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	data := job.DataParsed.(*models.JobLibraryDeleteData)

	library, err := w.libraryService.RetrieveLibrary(ctx, libraries.RetrieveLibraryOptions{
		ID:             &data.LibraryID,
		IncludeDeleted: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	count, err := w.assetService.CountAssets(ctx, library.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	if count == 0 {
		err := w.libraryService.HardDeleteLibrary(ctx, library.ID)
		if err != nil {
			return errors.WithStack(err)
		}
		log.Info("hard-deleted empty library", logger.Data{"library_id": library.ID})
		return nil
	}

	ids, err := w.assetService.AssetIDs(ctx, library.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	fromExternal := library.Type == models.LibraryTypeExternal
	for _, id := range ids {
		_, err := w.jobService.Enqueue(ctx, models.JobTypeAssetDeletion, &models.JobAssetDeletionData{
			AssetID:             id,
			FromExternalLibrary: fromExternal,
		})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	log.Info("queued asset deletions for library", logger.Data{"library_id": library.ID, "count": len(ids)})
	return nil
}

// ProcessAssetDeletionJob removes one asset record from the catalog. For
// external-origin assets the backing file is never touched; the catalog only
// indexes it.
func (w *Worker) ProcessAssetDeletionJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	data := job.DataParsed.(*models.JobAssetDeletionData)

	asset, err := w.assetService.RetrieveAsset(ctx, assets.RetrieveAssetOptions{
		ID: &data.AssetID,
	})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Asset")) {
			// Already gone; deletion jobs are delivered at least once.
			return nil
		}
		return errors.WithStack(err)
	}

	if !data.FromExternalLibrary && asset.IsExternal {
		// An upload-side deletion request must never remove an externally
		// indexed asset it doesn't own.
		log.Warn("refusing to delete external asset from upload flow", logger.Data{"asset_id": asset.ID})
		return nil
	}

	err = w.assetService.DeleteAsset(ctx, asset)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("deleted asset", logger.Data{"asset_id": asset.ID, "path": asset.OriginalPath})
	return nil
}

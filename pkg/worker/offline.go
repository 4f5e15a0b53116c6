package worker

import (
	"context"

	"github.com/lumierephotos/lumiere/pkg/assets"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/fileutils"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
)

const removeOfflinePageSize = 1000

// ProcessMarkAssetOfflineJob flags the asset at a path as offline. The record
// keeps its id and path so the asset comes back intact if the file reappears.
func (w *Worker) ProcessMarkAssetOfflineJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	data := job.DataParsed.(*models.JobMarkAssetOfflineData)

	path, err := fileutils.Normalize(data.AssetPath)
	if err != nil {
		return errors.WithStack(err)
	}

	asset, err := w.assetService.RetrieveAsset(ctx, assets.RetrieveAssetOptions{
		LibraryID:    &data.LibraryID,
		OriginalPath: &path,
	})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Asset")) {
			// A concurrent refresh or deletion may have raced us here; nothing
			// left to flag.
			log.Warn("asset not found for offline mark", logger.Data{"path": path})
			return nil
		}
		return errors.WithStack(err)
	}

	if asset.IsOffline {
		return nil
	}

	err = w.markAssetOffline(ctx, asset)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("marked asset offline", logger.Data{"asset_id": asset.ID, "path": path})
	return nil
}

// ProcessRemoveOfflineJob pages through the library's offline assets and
// turns each into an individual deletion job. Online assets are untouched.
func (w *Worker) ProcessRemoveOfflineJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	data := job.DataParsed.(*models.JobRemoveOfflineData)

	offline := true
	queued := 0
	for offset := 0; ; offset += removeOfflinePageSize {
		page, err := w.assetService.ListAssets(ctx, assets.ListAssetsOptions{
			LibraryID: &data.LibraryID,
			IsOffline: &offline,
			Limit:     pointerutil.Int(removeOfflinePageSize),
			Offset:    pointerutil.Int(offset),
		})
		if err != nil {
			return errors.WithStack(err)
		}
		if len(page) == 0 {
			break
		}

		for _, asset := range page {
			_, err := w.jobService.Enqueue(ctx, models.JobTypeAssetDeletion, &models.JobAssetDeletionData{
				AssetID:             asset.ID,
				FromExternalLibrary: true,
			})
			if err != nil {
				return errors.WithStack(err)
			}
			queued++
		}

		if len(page) < removeOfflinePageSize {
			break
		}
	}

	log.Info("queued offline asset removals", logger.Data{"library_id": data.LibraryID, "count": queued})
	return nil
}

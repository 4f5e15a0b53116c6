package worker

import (
	"context"
	"os"
	"time"

	"github.com/lumierephotos/lumiere/pkg/assets"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/fileutils"
	"github.com/lumierephotos/lumiere/pkg/libraries"
	"github.com/lumierephotos/lumiere/pkg/mediafile"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/lumierephotos/lumiere/pkg/sidecar"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ProcessScanAssetJob imports or refreshes a single file path. Re-running it
// with unchanged stat metadata and force unset is a no-op, which is what
// makes at-least-once job delivery safe.
func (w *Worker) ProcessScanAssetJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	data := job.DataParsed.(*models.JobScanAssetData)

	path, err := fileutils.Normalize(data.AssetPath)
	if err != nil {
		return errors.WithStack(err)
	}
	log = log.Data(logger.Data{"path": path, "library_id": data.LibraryID})

	owner, err := w.userService.Retrieve(ctx, data.OwnerID)
	if err != nil {
		return errors.WithStack(err)
	}
	if owner.ExternalPath == nil || *owner.ExternalPath == "" {
		log.Warn("owner has no external path configured; skipping path")
		return nil
	}
	if !fileutils.IsContained(*owner.ExternalPath, path) {
		log.Warn("path outside external root; skipping path", logger.Data{"external_path": *owner.ExternalPath})
		return nil
	}

	existing, err := w.assetService.RetrieveAsset(ctx, assets.RetrieveAssetOptions{
		LibraryID:    &data.LibraryID,
		OriginalPath: &path,
	})
	if err != nil && !errors.Is(err, errcodes.NotFound("Asset")) {
		return errors.WithStack(err)
	}

	stat, statErr := os.Stat(path)
	if statErr != nil {
		if existing == nil {
			// Unknown and unreachable. Surface it so the queue retries.
			return errors.Wrapf(statErr, "stat %s", path)
		}
		// Known asset with an unreachable file is the expected offline
		// transition, not an error.
		log.Info("file unreachable; marking asset offline", logger.Data{"asset_id": existing.ID})
		return w.markAssetOffline(ctx, existing)
	}

	// Falling through this switch means import (existing == nil) or refresh.
	wasOffline := existing != nil && existing.IsOffline
	switch {
	case existing == nil:
		// Import below.
	case wasOffline:
		// The file came back. Presence alone forces a refresh; the mtime
		// comparison is skipped so recovery wins regardless of whether the
		// offline-mark job for the same path has run yet.
	case !stat.ModTime().Equal(existing.FileModifiedAt):
	case data.Force:
	default:
		log.Debug("asset already up to date", logger.Data{"asset_id": existing.ID})
		return nil
	}

	assetType, err := mediafile.TypeForPath(path)
	if err != nil {
		// Validation failure: the worker fails the job without retrying.
		log.Warn("unsupported file type")
		return errors.WithStack(err)
	}
	if ok, detected := mediafile.ContentMatchesExtension(path); !ok {
		log.Warn("file content does not match extension", logger.Data{"detected": detected})
	}

	sidecarPath := sidecar.Discover(path)

	if existing == nil {
		return w.importAsset(ctx, data, path, stat.ModTime(), assetType, sidecarPath)
	}

	existing.FileCreatedAt = stat.ModTime()
	existing.FileModifiedAt = stat.ModTime()
	existing.SidecarPath = sidecarPath
	columns := []string{"file_created_at", "file_modified_at", "sidecar_path"}
	if wasOffline {
		existing.IsOffline = false
		columns = append(columns, "is_offline")
	}

	err = w.assetService.UpdateAsset(ctx, existing, assets.UpdateAssetOptions{Columns: columns})
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("refreshed asset", logger.Data{"asset_id": existing.ID, "was_offline": wasOffline})

	return w.queueDownstream(ctx, existing.ID, assetType)
}

func (w *Worker) importAsset(ctx context.Context, data *models.JobScanAssetData, path string, mtime time.Time, assetType string, sidecarPath *string) error {
	log := logger.FromContext(ctx)

	// Re-check deletion status right before the insert so a concurrent
	// library delete can't race us into creating an orphan.
	_, err := w.libraryService.RetrieveLibrary(ctx, libraries.RetrieveLibraryOptions{
		ID: &data.LibraryID,
	})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Library")) {
			log.Warn("library deleted mid-import; aborting")
			return nil
		}
		return errors.WithStack(err)
	}

	asset := &models.Asset{
		OwnerID:      data.OwnerID,
		LibraryID:    data.LibraryID,
		OriginalPath: path,
		// Placeholder until a downstream stage computes the content digest.
		Checksum:       fileutils.PathChecksum(path),
		Type:           assetType,
		FileCreatedAt:  mtime,
		FileModifiedAt: mtime,
		LocalDateTime:  mtime,
		IsReadOnly:     true,
		IsExternal:     true,
		IsVisible:      true,
		SidecarPath:    sidecarPath,
	}

	err = w.assetService.CreateAsset(ctx, asset)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("imported asset", logger.Data{"asset_id": asset.ID, "type": assetType})

	return w.queueDownstream(ctx, asset.ID, assetType)
}

// queueDownstream fans out the post-import pipeline: metadata for everything,
// transcoding for videos.
func (w *Worker) queueDownstream(ctx context.Context, assetID int, assetType string) error {
	_, err := w.jobService.Enqueue(ctx, models.JobTypeMetadataExtraction, &models.JobMetadataExtractionData{
		AssetID: assetID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if assetType == models.AssetTypeVideo {
		_, err := w.jobService.Enqueue(ctx, models.JobTypeVideoConversion, &models.JobVideoConversionData{
			AssetID: assetID,
		})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func (w *Worker) markAssetOffline(ctx context.Context, asset *models.Asset) error {
	if asset.IsOffline {
		return nil
	}
	asset.IsOffline = true
	err := w.assetService.UpdateAsset(ctx, asset, assets.UpdateAssetOptions{
		Columns: []string{"is_offline"},
	})
	return errors.WithStack(err)
}

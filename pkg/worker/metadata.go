package worker

import (
	"context"
	"time"

	"github.com/lumierephotos/lumiere/pkg/assets"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Extractor pulls metadata out of a media file. The engine only drives the
// pipeline; what extraction means is up to the implementation.
type Extractor interface {
	Extract(ctx context.Context, asset *models.Asset) error
	// ReloadGeodata rebuilds the reverse-geocoding index from the given path.
	ReloadGeodata(ctx context.Context, geodataPath string) error
}

// Transcoder converts videos into web-playable formats.
type Transcoder interface {
	Transcode(ctx context.Context, asset *models.Asset) error
}

type NoopExtractor struct{}

func (NoopExtractor) Extract(context.Context, *models.Asset) error { return nil }
func (NoopExtractor) ReloadGeodata(context.Context, string) error  { return nil }

type NoopTranscoder struct{}

func (NoopTranscoder) Transcode(context.Context, *models.Asset) error { return nil }

func (w *Worker) ProcessMetadataExtractionJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	data := job.DataParsed.(*models.JobMetadataExtractionData)

	asset, err := w.assetService.RetrieveAsset(ctx, assets.RetrieveAssetOptions{
		ID: &data.AssetID,
	})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Asset")) {
			// Deleted between enqueue and processing.
			return nil
		}
		return errors.WithStack(err)
	}

	err = w.extractor.Extract(ctx, asset)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	asset.MetadataAt = &now
	err = w.assetService.UpdateAsset(ctx, asset, assets.UpdateAssetOptions{
		Columns: []string{"metadata_at"},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("extracted metadata", logger.Data{"asset_id": asset.ID})
	return nil
}

func (w *Worker) ProcessVideoConversionJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	data := job.DataParsed.(*models.JobVideoConversionData)

	asset, err := w.assetService.RetrieveAsset(ctx, assets.RetrieveAssetOptions{
		ID: &data.AssetID,
	})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Asset")) {
			return nil
		}
		return errors.WithStack(err)
	}

	err = w.transcoder.Transcode(ctx, asset)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("converted video", logger.Data{"asset_id": asset.ID})
	return nil
}

// ReloadGeodata swaps the reverse-geocoding index under the metadata queue.
// The queue is paused so no extraction observes a half-built index, and the
// config version is snapshotted up front: if the config changes again while
// we reload, the stale reload is abandoned and the newer one wins.
func (w *Worker) ReloadGeodata(ctx context.Context) error {
	log := logger.FromContext(ctx)

	version := w.configService.Version()
	userConfig, err := w.configService.RetrieveUserConfig()
	if err != nil {
		return errors.WithStack(err)
	}
	if userConfig.GeodataPath == "" {
		log.Debug("no geodata path configured; skipping reload")
		return nil
	}

	err = w.jobService.PauseQueue(ctx, models.JobTypeMetadataExtraction)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if err := w.jobService.ResumeQueue(ctx, models.JobTypeMetadataExtraction); err != nil {
			log.Err(err).Error("resume metadata queue error")
		}
	}()

	if w.configService.Version() != version {
		log.Warn("user config changed during geodata reload; aborting")
		return nil
	}

	err = w.extractor.ReloadGeodata(ctx, userConfig.GeodataPath)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("reloaded geodata", logger.Data{"path": userConfig.GeodataPath})
	return nil
}

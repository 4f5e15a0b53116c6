package worker

import (
	"context"
	"testing"

	"github.com/lumierephotos/lumiere/pkg/assets"
	"github.com/lumierephotos/lumiere/pkg/config"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExtractor struct {
	extracted []int
	reloads   []string
}

func (r *recordingExtractor) Extract(_ context.Context, asset *models.Asset) error {
	r.extracted = append(r.extracted, asset.ID)
	return nil
}

func (r *recordingExtractor) ReloadGeodata(_ context.Context, path string) error {
	r.reloads = append(r.reloads, path)
	return nil
}

func TestMetadataExtraction_StampsAsset(t *testing.T) {
	tc := newTestContext(t)
	dir := t.TempDir()

	extractor := &recordingExtractor{}
	tc.worker.extractor = extractor

	user := tc.createUser(dir)
	library := tc.createExternalLibrary(user.ID, dir)
	tc.writeFile(dir, "a.jpg")
	require.NoError(t, tc.runScan(library.ID, false, false))
	tc.processPending(models.JobTypeLibraryScanAsset)

	asset := tc.listAssets(library.ID)[0]
	require.Nil(t, asset.MetadataAt)

	require.Equal(t, 1, tc.processPending(models.JobTypeMetadataExtraction))

	assert.Equal(t, []int{asset.ID}, extractor.extracted)
	stamped := tc.listAssets(library.ID)[0]
	assert.NotNil(t, stamped.MetadataAt)

	// The no-metadata predicate no longer matches.
	missing, err := tc.assetService.ListAssets(tc.ctx, assets.ListAssetsOptions{WithoutMetadata: true})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestReloadGeodata_PausesAndResumesMetadataQueue(t *testing.T) {
	tc := newTestContext(t)

	extractor := &recordingExtractor{}
	tc.worker.extractor = extractor

	userConfig := &config.UserConfig{SyncIntervalMinutes: 60, GeodataPath: "/geodata"}
	tc.worker.configService = config.NewService(&config.Config{UserConfig: userConfig})

	require.NoError(t, tc.worker.ReloadGeodata(tc.ctx))

	assert.Equal(t, []string{"/geodata"}, extractor.reloads)

	// The queue must be resumed afterwards.
	paused, err := tc.jobService.IsQueuePaused(tc.ctx, models.JobTypeMetadataExtraction)
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestReloadGeodata_SkipsWithoutPath(t *testing.T) {
	tc := newTestContext(t)

	extractor := &recordingExtractor{}
	tc.worker.extractor = extractor
	tc.worker.configService = config.NewService(&config.Config{
		UserConfig: &config.UserConfig{SyncIntervalMinutes: 60},
	})

	require.NoError(t, tc.worker.ReloadGeodata(tc.ctx))
	assert.Empty(t, extractor.reloads)
}

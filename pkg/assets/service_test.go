package assets

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/migrations"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestAsset(libraryID int, path string) *models.Asset {
	now := time.Now()
	return &models.Asset{
		OwnerID:        1,
		LibraryID:      libraryID,
		OriginalPath:   path,
		Checksum:       "deadbeef",
		Type:           models.AssetTypeImage,
		FileCreatedAt:  now,
		FileModifiedAt: now,
		LocalDateTime:  now,
		IsExternal:     true,
		IsReadOnly:     true,
		IsVisible:      true,
	}
}

func TestRetrieveAsset_ByLibraryAndPath(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	asset := newTestAsset(1, "/photos/a.jpg")
	require.NoError(t, svc.CreateAsset(ctx, asset))
	require.NotZero(t, asset.ID)

	libraryID := 1
	path := "/photos/a.jpg"
	found, err := svc.RetrieveAsset(ctx, RetrieveAssetOptions{LibraryID: &libraryID, OriginalPath: &path})
	require.NoError(t, err)
	assert.Equal(t, asset.ID, found.ID)

	otherLibrary := 2
	_, err = svc.RetrieveAsset(ctx, RetrieveAssetOptions{LibraryID: &otherLibrary, OriginalPath: &path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.NotFound("Asset")))
}

func TestListAssets_PropertyFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	online := newTestAsset(1, "/photos/online.jpg")
	now := time.Now()
	online.MetadataAt = &now
	require.NoError(t, svc.CreateAsset(ctx, online))

	offline := newTestAsset(1, "/photos/offline.jpg")
	offline.IsOffline = true
	require.NoError(t, svc.CreateAsset(ctx, offline))

	sidecarPath := "/photos/side.jpg.xmp"
	withSidecar := newTestAsset(1, "/photos/side.jpg")
	withSidecar.SidecarPath = &sidecarPath
	require.NoError(t, svc.CreateAsset(ctx, withSidecar))

	isOffline := true
	got, err := svc.ListAssets(ctx, ListAssetsOptions{IsOffline: &isOffline})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, offline.ID, got[0].ID)

	got, err = svc.ListAssets(ctx, ListAssetsOptions{WithoutMetadata: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.ListAssets(ctx, ListAssetsOptions{WithSidecar: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, withSidecar.ID, got[0].ID)
}

func TestListAssets_Pagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, p := range []string{"/p/1.jpg", "/p/2.jpg", "/p/3.jpg"} {
		require.NoError(t, svc.CreateAsset(ctx, newTestAsset(1, p)))
	}

	limit := 2
	offset := 0
	got, total, err := svc.ListAssetsWithTotal(ctx, ListAssetsOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, got, 2)

	offset = 2
	got, _, err = svc.ListAssetsWithTotal(ctx, ListAssetsOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestOnlinePaths_ExcludesOffline(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateAsset(ctx, newTestAsset(1, "/photos/a.jpg")))

	offline := newTestAsset(1, "/photos/b.jpg")
	offline.IsOffline = true
	require.NoError(t, svc.CreateAsset(ctx, offline))

	require.NoError(t, svc.CreateAsset(ctx, newTestAsset(2, "/other/c.jpg")))

	paths, err := svc.OnlinePaths(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/photos/a.jpg"}, paths)
}

func TestUpdateAssets_BulkPartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	a := newTestAsset(1, "/photos/a.jpg")
	b := newTestAsset(1, "/photos/b.jpg")
	c := newTestAsset(1, "/photos/c.jpg")
	for _, asset := range []*models.Asset{a, b, c} {
		require.NoError(t, svc.CreateAsset(ctx, asset))
	}

	err := svc.UpdateAssets(ctx, []int{a.ID, b.ID}, &models.Asset{IsOffline: true}, UpdateAssetOptions{
		Columns: []string{"is_offline"},
	})
	require.NoError(t, err)

	got, err := svc.RetrieveAssetsByIDs(ctx, []int{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].IsOffline)
	assert.True(t, got[1].IsOffline)
	assert.False(t, got[2].IsOffline)
}

func TestDeleteAsset_AndCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	a := newTestAsset(1, "/photos/a.jpg")
	require.NoError(t, svc.CreateAsset(ctx, a))
	require.NoError(t, svc.CreateAsset(ctx, newTestAsset(1, "/photos/b.jpg")))

	count, err := svc.CountAssets(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.DeleteAsset(ctx, a))

	count, err = svc.CountAssets(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ids, err := svc.AssetIDs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

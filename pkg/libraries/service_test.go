package libraries

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

func newExternalLibrary(ownerID int, paths ...string) *models.Library {
	library := &models.Library{
		OwnerID:   ownerID,
		Name:      "External",
		Type:      models.LibraryTypeExternal,
		IsVisible: true,
	}
	for _, p := range paths {
		library.ImportPaths = append(library.ImportPaths, &models.LibraryPath{Filepath: p})
	}
	return library
}

func TestCreateLibrary_UploadRejectsImportPaths(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := &models.Library{
		OwnerID:     1,
		Name:        "Uploads",
		Type:        models.LibraryTypeUpload,
		ImportPaths: []*models.LibraryPath{{Filepath: "/photos"}},
	}

	err := svc.CreateLibrary(ctx, library)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.ValidationError("Upload libraries cannot have import paths or exclusion patterns")))
}

func TestCreateLibrary_PersistsPathsAndExclusions(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := newExternalLibrary(1, "/photos", "/videos")
	library.ExclusionPatterns = []*models.LibraryExclusion{{Pattern: "**/@eaDir/**"}}

	require.NoError(t, svc.CreateLibrary(ctx, library))
	require.NotZero(t, library.ID)

	loaded, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"/photos", "/videos"}, loaded.ImportPathStrings())
	assert.Equal(t, []string{"**/@eaDir/**"}, loaded.ExclusionPatternStrings())
}

func TestSoftDeleteLibrary_RejectsLastUploadLibrary(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	upload := &models.Library{
		OwnerID: 1,
		Name:    "Uploads",
		Type:    models.LibraryTypeUpload,
	}
	require.NoError(t, svc.CreateLibrary(ctx, upload))

	err := svc.SoftDeleteLibrary(ctx, upload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.ValidationError("Cannot delete the last upload library")))

	// The library must persist untouched.
	loaded, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &upload.ID})
	require.NoError(t, err)
	assert.Nil(t, loaded.DeletedAt)
}

func TestSoftDeleteLibrary_AllowedWithSecondUploadLibrary(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first := &models.Library{OwnerID: 1, Name: "Uploads", Type: models.LibraryTypeUpload}
	second := &models.Library{OwnerID: 1, Name: "More Uploads", Type: models.LibraryTypeUpload}
	require.NoError(t, svc.CreateLibrary(ctx, first))
	require.NoError(t, svc.CreateLibrary(ctx, second))

	require.NoError(t, svc.SoftDeleteLibrary(ctx, first))

	_, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &first.ID})
	require.Error(t, err)

	loaded, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &first.ID, IncludeDeleted: true})
	require.NoError(t, err)
	require.NotNil(t, loaded.DeletedAt)
	assert.WithinDuration(t, time.Now(), *loaded.DeletedAt, time.Minute)
}

func TestHardDeleteLibrary_RemovesPathsAndExclusions(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := newExternalLibrary(1, "/photos")
	library.ExclusionPatterns = []*models.LibraryExclusion{{Pattern: "**/*.tmp"}}
	require.NoError(t, svc.CreateLibrary(ctx, library))

	require.NoError(t, svc.HardDeleteLibrary(ctx, library.ID))

	_, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID, IncludeDeleted: true})
	require.Error(t, err)

	count, err := db.NewSelect().Model((*models.LibraryPath)(nil)).Where("library_id = ?", library.ID).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRetrieveStatistics_CountsByType(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := newExternalLibrary(1, "/photos")
	require.NoError(t, svc.CreateLibrary(ctx, library))

	now := time.Now()
	assets := []*models.Asset{
		{OwnerID: 1, LibraryID: library.ID, OriginalPath: "/photos/a.jpg", Checksum: "a", Type: models.AssetTypeImage, FileCreatedAt: now, FileModifiedAt: now, LocalDateTime: now},
		{OwnerID: 1, LibraryID: library.ID, OriginalPath: "/photos/b.jpg", Checksum: "b", Type: models.AssetTypeImage, FileCreatedAt: now, FileModifiedAt: now, LocalDateTime: now},
		{OwnerID: 1, LibraryID: library.ID, OriginalPath: "/photos/c.mp4", Checksum: "c", Type: models.AssetTypeVideo, FileCreatedAt: now, FileModifiedAt: now, LocalDateTime: now},
	}
	_, err := db.NewInsert().Model(&assets).Exec(ctx)
	require.NoError(t, err)

	stats, err := svc.RetrieveStatistics(ctx, library.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Photos)
	assert.Equal(t, 1, stats.Videos)
	assert.Equal(t, 3, stats.Total)
}

func TestListLibraries_TypeAndDeletedFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	external := newExternalLibrary(1, "/photos")
	upload := &models.Library{OwnerID: 1, Name: "Uploads", Type: models.LibraryTypeUpload}
	require.NoError(t, svc.CreateLibrary(ctx, external))
	require.NoError(t, svc.CreateLibrary(ctx, upload))

	externalType := models.LibraryTypeExternal
	got, err := svc.ListLibraries(ctx, ListLibrariesOptions{Type: &externalType})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, external.ID, got[0].ID)

	count, err := svc.CountByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

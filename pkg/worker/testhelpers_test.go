package worker

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumierephotos/lumiere/pkg/assets"
	"github.com/lumierephotos/lumiere/pkg/config"
	"github.com/lumierephotos/lumiere/pkg/jobs"
	"github.com/lumierephotos/lumiere/pkg/libraries"
	"github.com/lumierephotos/lumiere/pkg/migrations"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/lumierephotos/lumiere/pkg/users"
	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// testContext holds all the dependencies needed for testing the worker.
type testContext struct {
	t              *testing.T
	ctx            context.Context
	db             *bun.DB
	worker         *Worker
	assetService   *assets.Service
	libraryService *libraries.Service
	jobService     *jobs.Service
	userService    *users.Service
}

// newTestContext creates a new test context with an in-memory SQLite database
// and all necessary services initialized.
func newTestContext(t *testing.T) *testContext {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cfg := &config.Config{
		WorkerProcesses: 1,
		JobMaxAttempts:  3,
	}
	w := New(cfg, db, Options{})

	ctx := logger.New().WithContext(context.Background())

	tc := &testContext{
		t:              t,
		ctx:            ctx,
		db:             db,
		worker:         w,
		assetService:   w.assetService,
		libraryService: w.libraryService,
		jobService:     w.jobService,
		userService:    w.userService,
	}

	t.Cleanup(func() {
		db.Close()
	})

	return tc
}

// createUser creates a test user whose external root is the given path.
func (tc *testContext) createUser(externalPath string) *models.User {
	tc.t.Helper()

	user, err := tc.userService.Create(tc.ctx, users.CreateUserOptions{
		Name:         "Test User",
		Email:        "test@example.com",
		ExternalPath: &externalPath,
	})
	if err != nil {
		tc.t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// createExternalLibrary creates an external library owned by the user with
// the given import paths.
func (tc *testContext) createExternalLibrary(ownerID int, paths ...string) *models.Library {
	tc.t.Helper()

	importPaths := make([]*models.LibraryPath, len(paths))
	for i, p := range paths {
		importPaths[i] = &models.LibraryPath{
			Filepath: p,
		}
	}

	library := &models.Library{
		OwnerID:     ownerID,
		Name:        "Test Library",
		Type:        models.LibraryTypeExternal,
		IsVisible:   true,
		ImportPaths: importPaths,
	}

	err := tc.libraryService.CreateLibrary(tc.ctx, library)
	if err != nil {
		tc.t.Fatalf("failed to create library: %v", err)
	}
	return library
}

// writeFile creates a file with a stable mtime so repeated scans see the
// same stat metadata.
func (tc *testContext) writeFile(dir, name string) string {
	tc.t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		tc.t.Fatalf("failed to write file: %v", err)
	}
	mtime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		tc.t.Fatalf("failed to set mtime: %v", err)
	}
	return path
}

// runScan executes the per-library scan job directly.
func (tc *testContext) runScan(libraryID int, refreshModified, refreshAll bool) error {
	tc.t.Helper()

	return tc.worker.ProcessLibraryScanJob(tc.ctx, &models.Job{
		Type: models.JobTypeLibraryScan,
		DataParsed: &models.JobLibraryScanData{
			LibraryID:            libraryID,
			RefreshModifiedFiles: refreshModified,
			RefreshAllFiles:      refreshAll,
		},
	})
}

// pendingJobs lists pending jobs of the given types.
func (tc *testContext) pendingJobs(types ...string) []*models.Job {
	tc.t.Helper()

	pending, err := tc.jobService.ListJobs(tc.ctx, jobs.ListJobsOptions{
		Statuses: []string{models.JobStatusPending},
		Types:    types,
	})
	require.NoError(tc.t, err)
	return pending
}

// processPending runs every currently pending job of the given types through
// its handler and marks it completed. Jobs enqueued by the handlers
// themselves are left pending for the caller to inspect.
func (tc *testContext) processPending(types ...string) int {
	tc.t.Helper()

	pending := tc.pendingJobs(types...)
	for _, job := range pending {
		fn, ok := tc.worker.processFuncs[job.Type]
		require.True(tc.t, ok, "no process func for %s", job.Type)
		require.NoError(tc.t, fn(tc.ctx, job))

		job.Status = models.JobStatusCompleted
		require.NoError(tc.t, tc.jobService.UpdateJob(tc.ctx, job, jobs.UpdateJobOptions{
			Columns: []string{"status"},
		}))
	}
	return len(pending)
}

// listAssets returns all assets in the given library.
func (tc *testContext) listAssets(libraryID int) []*models.Asset {
	tc.t.Helper()

	all, err := tc.assetService.ListAssets(tc.ctx, assets.ListAssetsOptions{LibraryID: &libraryID})
	require.NoError(tc.t, err)
	return all
}

package worker

import (
	"os"
	"testing"

	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAssetOffline_IgnoresUnknownPath(t *testing.T) {
	tc := newTestContext(t)

	err := tc.worker.ProcessMarkAssetOfflineJob(tc.ctx, &models.Job{
		Type: models.JobTypeMarkAssetOffline,
		DataParsed: &models.JobMarkAssetOfflineData{
			LibraryID: 1,
			AssetPath: "/nowhere/a.jpg",
		},
	})
	require.NoError(t, err)
}

func TestRemoveOffline_QueuesDeletionOnlyForOfflineAssets(t *testing.T) {
	tc := newTestContext(t)
	dir := t.TempDir()

	user := tc.createUser(dir)
	library := tc.createExternalLibrary(user.ID, dir)
	tc.importAssets(library.ID, dir, "keep.jpg", "gone.jpg")

	// Take one file offline.
	require.NoError(t, os.Remove(dir+"/gone.jpg"))
	require.NoError(t, tc.runScan(library.ID, false, false))
	require.Equal(t, 1, tc.processPending(models.JobTypeMarkAssetOffline))

	err := tc.worker.ProcessRemoveOfflineJob(tc.ctx, &models.Job{
		Type:       models.JobTypeRemoveOffline,
		DataParsed: &models.JobRemoveOfflineData{LibraryID: library.ID},
	})
	require.NoError(t, err)

	deletions := tc.pendingJobs(models.JobTypeAssetDeletion)
	require.Len(t, deletions, 1)
	data := deletions[0].DataParsed.(*models.JobAssetDeletionData)
	assert.True(t, data.FromExternalLibrary)

	require.Equal(t, 1, tc.processPending(models.JobTypeAssetDeletion))

	remaining := tc.listAssets(library.ID)
	require.Len(t, remaining, 1)
	assert.Contains(t, remaining[0].OriginalPath, "keep.jpg")
	assert.False(t, remaining[0].IsOffline)
}

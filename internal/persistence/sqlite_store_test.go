package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsrishanth/PodcastAI/internal/jobs"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func sampleJob(id string) jobs.Job {
	return jobs.Job{
		ID:           id,
		Status:       jobs.StatusProcessing,
		CurrentStep:  3,
		TotalSteps:   7,
		StepName:     "Synthesizing Speech",
		Progress:     28,
		Scenario:     "Two friends debating coffee versus tea",
		SpeakerAName: "Alex",
		SpeakerBName: "Sam",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("  ")
	require.Error(t, err)
}

func TestSQLiteStore_UpsertAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	job := sampleJob("job-1")
	require.NoError(t, store.UpsertJob(ctx, job))

	loaded, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, job.ID, loaded[0].ID)
	assert.Equal(t, jobs.StatusProcessing, loaded[0].Status)
	assert.Equal(t, "Synthesizing Speech", loaded[0].StepName)
	assert.Nil(t, loaded[0].CompletedAt)

	// Upsert with the same id updates in place.
	now := time.Now().UTC().Truncate(time.Second)
	job.Status = jobs.StatusCompleted
	job.Progress = 100
	job.CompletedAt = &now
	job.OutputPath = "/data/outputs/podcast_job-1.mp4"
	job.Duration = 42.5
	require.NoError(t, store.UpsertJob(ctx, job))

	loaded, err = store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, jobs.StatusCompleted, loaded[0].Status)
	assert.Equal(t, "/data/outputs/podcast_job-1.mp4", loaded[0].OutputPath)
	require.NotNil(t, loaded[0].CompletedAt)
	assert.InDelta(t, 42.5, loaded[0].Duration, 1e-9)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.UpsertJob(context.Background(), sampleJob("job-1")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "job-1", loaded[0].ID)
}

func TestSQLiteStore_DeleteJob(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertJob(ctx, sampleJob("job-1")))
	require.NoError(t, store.DeleteJob(ctx, "job-1"))

	loaded, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// Deleting a missing job is not an error.
	require.NoError(t, store.DeleteJob(ctx, "job-1"))
}

func TestSQLiteStore_LoadOrdersByCreation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	older := sampleJob("older")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	newer := sampleJob("newer")

	require.NoError(t, store.UpsertJob(ctx, newer))
	require.NoError(t, store.UpsertJob(ctx, older))

	loaded, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "older", loaded[0].ID)
	assert.Equal(t, "newer", loaded[1].ID)
}

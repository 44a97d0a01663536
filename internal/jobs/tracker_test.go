package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsrishanth/PodcastAI/internal/pipeline"
)

type fakeRunner struct {
	err  error
	gate chan struct{} // when set, Generate blocks after the first stage
}

func (f *fakeRunner) Generate(_ context.Context, req pipeline.Request, onProgress pipeline.ProgressFunc) (*pipeline.Result, error) {
	stages := pipeline.Stages()
	onProgress(stages[0])
	if f.gate != nil {
		<-f.gate
	}
	for _, st := range stages[1:] {
		onProgress(st)
	}
	if f.err != nil {
		return nil, f.err
	}
	thumb := ""
	if req.OutputPath != "" {
		thumb = pipeline.ThumbnailPath(req.OutputPath)
		if err := os.WriteFile(req.OutputPath, []byte("mp4"), 0644); err != nil {
			return nil, err
		}
		if err := os.WriteFile(thumb, []byte("jpg"), 0644); err != nil {
			return nil, err
		}
	}
	onProgress(pipeline.StageComplete)
	return &pipeline.Result{
		OutputPath:    req.OutputPath,
		ThumbnailPath: thumb,
		Duration:      4.2,
	}, nil
}

type memStore struct {
	mu   sync.Mutex
	jobs map[string]Job
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]Job)}
}

func (m *memStore) LoadJobs(context.Context) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (m *memStore) UpsertJob(_ context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *memStore) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
	return nil
}

func newTestTracker(t *testing.T, runner Runner, store Store) *Tracker {
	t.Helper()
	dir := t.TempDir()
	tracker, err := NewTracker(runner, store, NewHistory(filepath.Join(dir, "history.json")), filepath.Join(dir, "temp"))
	require.NoError(t, err)
	return tracker
}

func waitTerminal(t *testing.T, tracker *Tracker, id string) Job {
	t.Helper()
	require.Eventually(t, func() bool {
		job, ok := tracker.Get(id)
		return ok && job.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	job, _ := tracker.Get(id)
	return job
}

func TestTracker_SubmitRunsToCompletion(t *testing.T) {
	store := newMemStore()
	tracker := newTestTracker(t, &fakeRunner{}, store)

	out := filepath.Join(t.TempDir(), "out.mp4")
	job, err := tracker.Submit(pipeline.Request{
		Scenario:   "Two colleagues discussing a product launch",
		OutputPath: out,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, pipeline.TotalStages, job.TotalSteps)
	assert.Equal(t, "Alex", job.SpeakerAName)
	assert.Equal(t, "Sam", job.SpeakerBName)

	done := waitTerminal(t, tracker, job.ID)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, float64(100), done.Progress)
	assert.Equal(t, "Complete", done.StepName)
	assert.Equal(t, out, done.OutputPath)
	require.NotNil(t, done.CompletedAt)

	// The persisted record matches the in-memory state.
	records, err := store.LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusCompleted, records[0].Status)

	items, err := tracker.History()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, job.ID, items[0].ID)
	assert.InDelta(t, 4.2, items[0].Duration, 1e-9)
}

func TestTracker_HistoryNewestFirst(t *testing.T) {
	tracker := newTestTracker(t, &fakeRunner{}, newMemStore())

	dir := t.TempDir()
	first, err := tracker.Submit(pipeline.Request{Scenario: "first scenario", OutputPath: filepath.Join(dir, "1.mp4")})
	require.NoError(t, err)
	waitTerminal(t, tracker, first.ID)

	second, err := tracker.Submit(pipeline.Request{Scenario: "second scenario", OutputPath: filepath.Join(dir, "2.mp4")})
	require.NoError(t, err)
	waitTerminal(t, tracker, second.ID)

	items, err := tracker.History()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
}

func TestTracker_FailureRecordsErrorAndSkipsHistory(t *testing.T) {
	tracker := newTestTracker(t, &fakeRunner{err: errors.New("speech service failed: edge-tts exited 1")}, newMemStore())

	job, err := tracker.Submit(pipeline.Request{Scenario: "a scenario that will not pan out"})
	require.NoError(t, err)

	done := waitTerminal(t, tracker, job.ID)
	assert.Equal(t, StatusFailed, done.Status)
	assert.Contains(t, done.Error, "edge-tts exited 1")
	assert.Empty(t, done.OutputPath)

	items, err := tracker.History()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTracker_SubscribeStreamsStagesThenCloses(t *testing.T) {
	runner := &fakeRunner{gate: make(chan struct{})}
	tracker := newTestTracker(t, runner, newMemStore())

	job, err := tracker.Submit(pipeline.Request{
		Scenario:   "A long form conversation about music",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	})
	require.NoError(t, err)

	ch, cancel, ok := tracker.Subscribe(job.ID)
	require.True(t, ok)
	defer cancel()

	close(runner.gate)

	var last Job
	for snapshot := range ch {
		assert.Equal(t, job.ID, snapshot.ID)
		last = snapshot
	}
	assert.Equal(t, StatusCompleted, last.Status)
	assert.Equal(t, float64(100), last.Progress)
}

func TestTracker_SubscribeTerminalJobClosesImmediately(t *testing.T) {
	tracker := newTestTracker(t, &fakeRunner{}, newMemStore())

	job, err := tracker.Submit(pipeline.Request{Scenario: "short lived scenario run"})
	require.NoError(t, err)
	waitTerminal(t, tracker, job.ID)

	ch, cancel, ok := tracker.Subscribe(job.ID)
	require.True(t, ok)
	defer cancel()

	snapshot, open := <-ch
	require.True(t, open)
	assert.True(t, snapshot.Status.Terminal())

	_, open = <-ch
	assert.False(t, open)
}

func TestTracker_SubscribeUnknownJob(t *testing.T) {
	tracker := newTestTracker(t, &fakeRunner{}, newMemStore())
	_, _, ok := tracker.Subscribe("nope")
	assert.False(t, ok)
}

func TestTracker_ConcurrentJobsDoNotCrossStreams(t *testing.T) {
	tracker := newTestTracker(t, &fakeRunner{}, newMemStore())

	dir := t.TempDir()
	jobA, err := tracker.Submit(pipeline.Request{Scenario: "first of two parallel runs", OutputPath: filepath.Join(dir, "a.mp4")})
	require.NoError(t, err)
	jobB, err := tracker.Submit(pipeline.Request{Scenario: "second of two parallel runs", OutputPath: filepath.Join(dir, "b.mp4")})
	require.NoError(t, err)

	chA, cancelA, ok := tracker.Subscribe(jobA.ID)
	require.True(t, ok)
	defer cancelA()
	chB, cancelB, ok := tracker.Subscribe(jobB.ID)
	require.True(t, ok)
	defer cancelB()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for snapshot := range chA {
			assert.Equal(t, jobA.ID, snapshot.ID)
		}
	}()
	go func() {
		defer wg.Done()
		for snapshot := range chB {
			assert.Equal(t, jobB.ID, snapshot.ID)
		}
	}()
	wg.Wait()
}

func TestNewTracker_MarksInterruptedJobsFailed(t *testing.T) {
	store := newMemStore()
	store.jobs["stale"] = Job{ID: "stale", Status: StatusProcessing, CreatedAt: time.Now()}

	tracker := newTestTracker(t, &fakeRunner{}, store)

	job, ok := tracker.Get("stale")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "interrupted by restart", job.Error)
	require.NotNil(t, job.CompletedAt)

	records, err := store.LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusFailed, records[0].Status)
}

func TestTracker_ForgetRemovesArtifacts(t *testing.T) {
	store := newMemStore()
	tracker := newTestTracker(t, &fakeRunner{}, store)

	out := filepath.Join(t.TempDir(), "out.mp4")
	job, err := tracker.Submit(pipeline.Request{Scenario: "a run we will delete after", OutputPath: out})
	require.NoError(t, err)
	waitTerminal(t, tracker, job.ID)
	require.FileExists(t, out)

	require.NoError(t, tracker.Forget(job.ID))

	assert.NoFileExists(t, out)
	assert.NoFileExists(t, pipeline.ThumbnailPath(out))
	_, ok := tracker.Get(job.ID)
	assert.False(t, ok)

	items, err := tracker.History()
	require.NoError(t, err)
	assert.Empty(t, items)

	records, err := store.LoadJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	// Deleting again is a no-op.
	require.NoError(t, tracker.Forget(job.ID))
}

func TestTracker_ForgetRunningJobRefused(t *testing.T) {
	runner := &fakeRunner{gate: make(chan struct{})}
	tracker := newTestTracker(t, runner, newMemStore())

	job, err := tracker.Submit(pipeline.Request{Scenario: "still running when deleted"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		j, ok := tracker.Get(job.ID)
		return ok && j.Status == StatusProcessing
	}, 5*time.Second, 10*time.Millisecond)

	err = tracker.Forget(job.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still running")

	close(runner.gate)
	waitTerminal(t, tracker, job.ID)
}

func TestTracker_SweepWorkspaces(t *testing.T) {
	runner := &fakeRunner{gate: make(chan struct{})}
	store := newMemStore()

	dir := t.TempDir()
	tempDir := filepath.Join(dir, "temp")
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	tracker, err := NewTracker(runner, store, NewHistory(filepath.Join(dir, "history.json")), tempDir)
	require.NoError(t, err)

	job, err := tracker.Submit(pipeline.Request{Scenario: "running during the sweep pass"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		j, ok := tracker.Get(job.ID)
		return ok && j.Status == StatusProcessing
	}, 5*time.Second, 10*time.Millisecond)

	runningWS := filepath.Join(tempDir, job.ID)
	orphanWS := filepath.Join(tempDir, "orphan")
	require.NoError(t, os.MkdirAll(runningWS, 0755))
	require.NoError(t, os.MkdirAll(orphanWS, 0755))

	// Nothing is old enough yet.
	assert.Zero(t, tracker.SweepWorkspaces(time.Hour))
	assert.DirExists(t, orphanWS)

	// With a zero retention the orphan goes, the running job survives.
	assert.Equal(t, 1, tracker.SweepWorkspaces(0))
	assert.NoDirExists(t, orphanWS)
	assert.DirExists(t, runningWS)

	close(runner.gate)
	waitTerminal(t, tracker, job.ID)
}

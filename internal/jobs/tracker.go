package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamsrishanth/PodcastAI/internal/pipeline"
	"github.com/iamsrishanth/PodcastAI/pkg/log"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber
// that falls further behind loses intermediate updates but always gets
// a terminal one because the channel is drained by closing.
const subscriberBuffer = 16

// Tracker owns the job table: it accepts submissions, runs them
// through the pipeline in the background and fans progress out to
// subscribers. All methods are safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	jobsMap map[string]*Job
	subs    map[string]map[int]chan Job
	nextSub int

	runner  Runner
	store   Store
	history *History
	tempDir string
}

// NewTracker builds a tracker and rehydrates the job table from the
// store. Jobs that were in flight when the process died are marked
// failed, their goroutines did not survive the restart.
func NewTracker(runner Runner, store Store, history *History, tempDir string) (*Tracker, error) {
	t := &Tracker{
		jobsMap: make(map[string]*Job),
		subs:    make(map[string]map[int]chan Job),
		runner:  runner,
		store:   store,
		history: history,
		tempDir: tempDir,
	}

	records, err := store.LoadJobs(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	for _, rec := range records {
		job := rec
		if !job.Status.Terminal() {
			now := time.Now()
			job.Status = StatusFailed
			job.Error = "interrupted by restart"
			job.CompletedAt = &now
			if err := store.UpsertJob(context.Background(), job); err != nil {
				log.Warn("failed to persist interrupted job %s: %v", job.ID, err)
			}
			log.Warn("job %s was in flight at shutdown, marked failed", job.ID)
		}
		job.WorkspaceDir = filepath.Join(tempDir, job.ID)
		t.jobsMap[job.ID] = &job
	}

	return t, nil
}

// Submit registers a new job and starts it in the background. The
// returned snapshot already carries the job id callers poll with.
func (t *Tracker) Submit(req pipeline.Request) (Job, error) {
	id := uuid.NewString()
	req.WorkspaceID = id

	job := &Job{
		ID:           id,
		Status:       StatusPending,
		TotalSteps:   pipeline.TotalStages,
		Scenario:     req.Scenario,
		SpeakerAName: req.SpeakerAName,
		SpeakerBName: req.SpeakerBName,
		CreatedAt:    time.Now(),
		WorkspaceDir: filepath.Join(t.tempDir, id),
	}
	if job.SpeakerAName == "" {
		job.SpeakerAName = "Alex"
	}
	if job.SpeakerBName == "" {
		job.SpeakerBName = "Sam"
	}

	t.mu.Lock()
	t.jobsMap[id] = job
	snapshot := *job
	t.mu.Unlock()
	t.persist(snapshot)

	go t.run(id, req)

	return snapshot, nil
}

// Get returns a snapshot of the job, if tracked.
func (t *Tracker) Get(id string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobsMap[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Subscribe registers for progress updates on a job. The current state
// arrives first, then every transition. The channel is closed after a
// terminal update. Call cancel to detach early.
func (t *Tracker) Subscribe(id string) (<-chan Job, func(), bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobsMap[id]
	if !ok {
		return nil, nil, false
	}

	ch := make(chan Job, subscriberBuffer)
	ch <- *job
	if job.Status.Terminal() {
		close(ch)
		return ch, func() {}, true
	}

	key := t.nextSub
	t.nextSub++
	if t.subs[id] == nil {
		t.subs[id] = make(map[int]chan Job)
	}
	t.subs[id][key] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if m, ok := t.subs[id]; ok {
			delete(m, key)
			if len(m) == 0 {
				delete(t.subs, id)
			}
		}
	}
	return ch, cancel, true
}

// History returns the archive of completed runs, newest first.
func (t *Tracker) History() ([]HistoryItem, error) {
	return t.history.List()
}

// Forget removes a job and its artifacts: output video, thumbnail,
// workspace and the history entry. Unknown ids are a no-op so deletes
// are idempotent.
func (t *Tracker) Forget(id string) error {
	t.mu.Lock()
	job, tracked := t.jobsMap[id]
	var snapshot Job
	if tracked {
		if !job.Status.Terminal() {
			t.mu.Unlock()
			return fmt.Errorf("job %s is still running", id)
		}
		snapshot = *job
		delete(t.jobsMap, id)
	}
	t.mu.Unlock()

	item, found, err := t.history.Remove(id)
	if err != nil {
		return err
	}
	if found {
		removeArtifact(item.OutputPath)
		removeArtifact(item.ThumbnailPath)
	}
	if tracked {
		removeArtifact(snapshot.OutputPath)
		removeArtifact(snapshot.ThumbnailPath)
		if snapshot.WorkspaceDir != "" {
			if err := os.RemoveAll(snapshot.WorkspaceDir); err != nil {
				log.Warn("failed to remove workspace %s: %v", snapshot.WorkspaceDir, err)
			}
		}
		if err := t.store.DeleteJob(context.Background(), id); err != nil {
			log.Warn("failed to delete job record %s: %v", id, err)
		}
	}
	return nil
}

func (t *Tracker) run(id string, req pipeline.Request) {
	defer func() {
		if r := recover(); r != nil {
			t.fail(id, fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	result, err := t.runner.Generate(context.Background(), req, func(st pipeline.Stage) {
		t.advance(id, st)
	})
	if err != nil {
		t.fail(id, err)
		return
	}
	t.complete(id, result)
}

func (t *Tracker) advance(id string, st pipeline.Stage) {
	t.update(id, func(job *Job) {
		job.Status = StatusProcessing
		job.CurrentStep = st.Index
		job.StepName = st.Name
		job.Progress = st.Percent
	})
}

func (t *Tracker) complete(id string, result *pipeline.Result) {
	now := time.Now()
	snapshot := t.update(id, func(job *Job) {
		job.Status = StatusCompleted
		job.CurrentStep = pipeline.TotalStages
		job.StepName = "Complete"
		job.Progress = 100
		job.CompletedAt = &now
		job.OutputPath = result.OutputPath
		job.ThumbnailPath = result.ThumbnailPath
		job.Duration = result.Duration
	})

	if err := t.history.Add(HistoryItem{
		ID:            id,
		Scenario:      snapshot.Scenario,
		SpeakerAName:  snapshot.SpeakerAName,
		SpeakerBName:  snapshot.SpeakerBName,
		CreatedAt:     snapshot.CreatedAt,
		Duration:      snapshot.Duration,
		OutputPath:    snapshot.OutputPath,
		ThumbnailPath: snapshot.ThumbnailPath,
	}); err != nil {
		log.Warn("failed to record history for job %s: %v", id, err)
	}
	log.Info("job %s completed: %s", id, snapshot.OutputPath)
}

func (t *Tracker) fail(id string, err error) {
	now := time.Now()
	t.update(id, func(job *Job) {
		job.Status = StatusFailed
		job.CompletedAt = &now
		job.Error = err.Error()
	})
	log.Error("job %s failed: %v", id, err)
}

// update mutates a job under the lock, persists it and broadcasts the
// new snapshot. Terminal transitions close all subscriber channels.
func (t *Tracker) update(id string, fn func(*Job)) Job {
	t.mu.Lock()
	job, ok := t.jobsMap[id]
	if !ok {
		t.mu.Unlock()
		return Job{}
	}
	fn(job)
	snapshot := *job

	for _, ch := range t.subs[id] {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber, drop the update.
		}
	}
	if snapshot.Status.Terminal() {
		for _, ch := range t.subs[id] {
			close(ch)
		}
		delete(t.subs, id)
	}
	t.mu.Unlock()

	t.persist(snapshot)
	return snapshot
}

func (t *Tracker) persist(job Job) {
	if err := t.store.UpsertJob(context.Background(), job); err != nil {
		log.Warn("failed to persist job %s: %v", job.ID, err)
	}
}

func removeArtifact(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove artifact %s: %v", path, err)
	}
}

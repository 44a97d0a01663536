package jobs

import (
	"context"
	"time"

	"github.com/iamsrishanth/PodcastAI/internal/pipeline"
)

// Status is the lifecycle state of a generation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the tracked state of one generation run. Values handed out by
// the tracker are snapshots, safe to retain and serialize.
type Job struct {
	ID            string     `json:"job_id"`
	Status        Status     `json:"status"`
	CurrentStep   int        `json:"current_step"`
	TotalSteps    int        `json:"total_steps"`
	StepName      string     `json:"step_name"`
	Progress      float64    `json:"progress"`
	Scenario      string     `json:"scenario"`
	SpeakerAName  string     `json:"speaker_a_name"`
	SpeakerBName  string     `json:"speaker_b_name"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	OutputPath    string     `json:"output_path,omitempty"`
	ThumbnailPath string     `json:"thumbnail_path,omitempty"`
	Duration      float64    `json:"duration,omitempty"`
	Error         string     `json:"error,omitempty"`

	WorkspaceDir string `json:"-"`
}

// Runner executes the generation pipeline. *pipeline.Pipeline
// satisfies it.
type Runner interface {
	Generate(ctx context.Context, req pipeline.Request, onProgress pipeline.ProgressFunc) (*pipeline.Result, error)
}

// Store persists job records across restarts.
type Store interface {
	LoadJobs(ctx context.Context) ([]Job, error)
	UpsertJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, id string) error
}

// Package jobs tracks the state of ingestion jobs.
package jobs

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for job stores.
var (
	ErrNotFound          = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Mode selects how the pipeline writes to the index.
type Mode string

const (
	// ModeCreate builds the index only when it is empty.
	ModeCreate Mode = "create"
	// ModeForceRefresh drops the index and rebuilds it.
	ModeForceRefresh Mode = "force_refresh"
	// ModeAppend upserts new chunks into the existing index.
	ModeAppend Mode = "append"
)

// ValidMode reports whether m is a recognized index-write mode.
func ValidMode(m Mode) bool {
	switch m {
	case ModeCreate, ModeForceRefresh, ModeAppend:
		return true
	}
	return false
}

// CanTransition reports whether a job may move from one status to the next.
// The lifecycle is monotonic: queued, running, then a terminal state.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusQueued:
		return to == StatusRunning || to == StatusFailed
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed
	}
	return false
}

// Job is one ingestion run.
type Job struct {
	ID      string   `json:"job_id"`
	Status  Status   `json:"status"`
	Mode    Mode     `json:"mode"`
	Sources []string `json:"sources,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Error              string `json:"error,omitempty"`
	DocumentsProcessed int    `json:"documents_processed"`
	ChunksCreated      int    `json:"chunks_created"`
}

// Result carries the counters recorded when a job finishes.
type Result struct {
	DocumentsProcessed int
	ChunksCreated      int
}

// Task is the queue message that triggers one pipeline run.
type Task struct {
	JobID   string   `json:"job_id"`
	Mode    Mode     `json:"mode"`
	Sources []string `json:"sources,omitempty"`
}

// Store persists job records.
type Store interface {
	// Create inserts a new job in the queued state.
	Create(ctx context.Context, job *Job) error

	// Get returns a job by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Job, error)

	// MarkRunning transitions a job to running and stamps its start time.
	MarkRunning(ctx context.Context, id string) error

	// MarkCompleted transitions a job to completed with its counters.
	MarkCompleted(ctx context.Context, id string, result Result) error

	// MarkFailed transitions a job to failed with an error message.
	MarkFailed(ctx context.Context, id string, jobErr string) error

	// Close releases store resources.
	Close() error
}

package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node setups.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

// Create inserts or replaces the job record.
func (s *MemoryStore) Create(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusQueued
	}
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

// Get returns a copy of the job.
func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	clone := *job
	return &clone, nil
}

func (s *MemoryStore) transition(id string, to Status, update func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !CanTransition(job.Status, to) {
		return fmt.Errorf("%w: job %s (%s -> %s)", ErrInvalidTransition, id, job.Status, to)
	}
	job.Status = to
	job.UpdatedAt = time.Now().UTC()
	update(job)
	return nil
}

// MarkRunning transitions a queued job to running.
func (s *MemoryStore) MarkRunning(_ context.Context, id string) error {
	return s.transition(id, StatusRunning, func(j *Job) {
		now := time.Now().UTC()
		j.StartedAt = &now
	})
}

// MarkCompleted transitions a running job to completed.
func (s *MemoryStore) MarkCompleted(_ context.Context, id string, result Result) error {
	return s.transition(id, StatusCompleted, func(j *Job) {
		now := time.Now().UTC()
		j.CompletedAt = &now
		j.DocumentsProcessed = result.DocumentsProcessed
		j.ChunksCreated = result.ChunksCreated
	})
}

// MarkFailed transitions a queued or running job to failed.
func (s *MemoryStore) MarkFailed(_ context.Context, id string, jobErr string) error {
	return s.transition(id, StatusFailed, func(j *Job) {
		now := time.Now().UTC()
		j.CompletedAt = &now
		j.Error = jobErr
	})
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

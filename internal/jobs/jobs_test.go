package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusQueued, StatusRunning, true},
		{StatusQueued, StatusFailed, true},
		{StatusQueued, StatusCompleted, false},
		{StatusRunning, StatusCompleted, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusQueued, false},
		{StatusCompleted, StatusRunning, false},
		{StatusFailed, StatusRunning, false},
		{StatusCompleted, StatusFailed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode(ModeCreate))
	assert.True(t, ValidMode(ModeForceRefresh))
	assert.True(t, ValidMode(ModeAppend))
	assert.False(t, ValidMode("rebuild"))
	assert.False(t, ValidMode(""))
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	job := &Job{ID: "job-1", Mode: ModeAppend, Sources: []string{"DataDragon"}}
	require.NoError(t, store.Create(ctx, job))
	assert.Equal(t, StatusQueued, job.Status)

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, got.Status)
	assert.Equal(t, ModeAppend, got.Mode)
	assert.Nil(t, got.StartedAt)

	require.NoError(t, store.MarkRunning(ctx, "job-1"))
	got, err = store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	assert.NotNil(t, got.StartedAt)

	require.NoError(t, store.MarkCompleted(ctx, "job-1", Result{
		DocumentsProcessed: 8,
		ChunksCreated:      24,
	}))
	got, err = store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 8, got.DocumentsProcessed)
	assert.Equal(t, 24, got.ChunksCreated)
	assert.NotNil(t, got.CompletedAt)
}

func TestMemoryStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, &Job{ID: "job-2", Mode: ModeCreate}))
	require.NoError(t, store.MarkRunning(ctx, "job-2"))
	require.NoError(t, store.MarkFailed(ctx, "job-2", "no documents collected"))

	got, err := store.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "no documents collected", got.Error)
}

func TestMemoryStoreRejectsInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, &Job{ID: "job-3", Mode: ModeCreate}))

	// queued cannot complete without running first
	err := store.MarkCompleted(ctx, "job-3", Result{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, store.MarkRunning(ctx, "job-3"))
	require.NoError(t, store.MarkCompleted(ctx, "job-3", Result{}))

	// terminal states are final
	assert.ErrorIs(t, store.MarkFailed(ctx, "job-3", "too late"), ErrInvalidTransition)
	assert.ErrorIs(t, store.MarkRunning(ctx, "job-3"), ErrInvalidTransition)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.MarkRunning(context.Background(), "missing"), ErrNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, &Job{ID: "job-4", Mode: ModeCreate}))

	got, err := store.Get(ctx, "job-4")
	require.NoError(t, err)
	got.Status = StatusFailed

	again, err := store.Get(ctx, "job-4")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, again.Status, "mutating a returned job must not affect the store")
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const jobsSchema = `
CREATE TABLE IF NOT EXISTS pipeline_jobs (
	id                  TEXT PRIMARY KEY,
	status              TEXT NOT NULL,
	mode                TEXT NOT NULL,
	sources             TEXT[],
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL,
	started_at          TIMESTAMPTZ,
	completed_at        TIMESTAMPTZ,
	error               TEXT NOT NULL DEFAULT '',
	documents_processed INTEGER NOT NULL DEFAULT 0,
	chunks_created      INTEGER NOT NULL DEFAULT 0
)`

// PostgresStore persists jobs in a pipeline_jobs table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects to Postgres and ensures the jobs table exists.
func NewPostgresStore(ctx context.Context, connString string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, jobsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating pipeline_jobs table: %w", err)
	}

	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Ping checks connectivity. Used by health handlers.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Create upserts the job row. Re-creating an existing ID resets it to the
// new record, which keeps enqueue retries idempotent.
func (s *PostgresStore) Create(ctx context.Context, job *Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusQueued
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO pipeline_jobs (id, status, mode, sources, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			mode = EXCLUDED.mode,
			sources = EXCLUDED.sources,
			updated_at = EXCLUDED.updated_at`,
		job.ID, job.Status, job.Mode, job.Sources, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting job %s: %w", job.ID, err)
	}
	return nil
}

// Get returns a job by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, status, mode, sources, created_at, updated_at,
		       started_at, completed_at, error, documents_processed, chunks_created
		FROM pipeline_jobs WHERE id = $1`, id)

	var job Job
	err := row.Scan(&job.ID, &job.Status, &job.Mode, &job.Sources,
		&job.CreatedAt, &job.UpdatedAt, &job.StartedAt, &job.CompletedAt,
		&job.Error, &job.DocumentsProcessed, &job.ChunksCreated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching job %s: %w", id, err)
	}
	return &job, nil
}

// MarkRunning transitions a queued job to running.
func (s *PostgresStore) MarkRunning(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pipeline_jobs
		SET status = $2, started_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, StatusRunning, time.Now().UTC(), StatusQueued)
	if err != nil {
		return fmt.Errorf("marking job %s running: %w", id, err)
	}
	return s.checkTransition(ctx, id, tag.RowsAffected())
}

// MarkCompleted transitions a running job to completed.
func (s *PostgresStore) MarkCompleted(ctx context.Context, id string, result Result) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pipeline_jobs
		SET status = $2, completed_at = $3, updated_at = $3,
		    documents_processed = $4, chunks_created = $5
		WHERE id = $1 AND status = $6`,
		id, StatusCompleted, time.Now().UTC(),
		result.DocumentsProcessed, result.ChunksCreated, StatusRunning)
	if err != nil {
		return fmt.Errorf("marking job %s completed: %w", id, err)
	}
	return s.checkTransition(ctx, id, tag.RowsAffected())
}

// MarkFailed transitions a queued or running job to failed.
func (s *PostgresStore) MarkFailed(ctx context.Context, id string, jobErr string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pipeline_jobs
		SET status = $2, completed_at = $3, updated_at = $3, error = $4
		WHERE id = $1 AND status IN ($5, $6)`,
		id, StatusFailed, time.Now().UTC(), jobErr, StatusQueued, StatusRunning)
	if err != nil {
		return fmt.Errorf("marking job %s failed: %w", id, err)
	}
	return s.checkTransition(ctx, id, tag.RowsAffected())
}

// checkTransition distinguishes a missing job from a terminal one when a
// guarded update touched no rows.
func (s *PostgresStore) checkTransition(ctx context.Context, id string, affected int64) error {
	if affected > 0 {
		return nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: job %s", ErrInvalidTransition, id)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

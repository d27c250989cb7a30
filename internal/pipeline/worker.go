package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/jobs"
	"github.com/riftlabs/riftqa/internal/queue"
)

const (
	defaultDequeueTimeout = 5 * time.Second
	idleSleep             = time.Second
	errorSleep            = 5 * time.Second
)

// Worker consumes ingestion tasks from the queue and runs them through the
// pipeline, recording job state transitions along the way.
type Worker struct {
	broker         queue.Broker
	store          jobs.Store
	pipeline       *Pipeline
	dequeueTimeout time.Duration
	logger         *zap.Logger
}

// NewWorker wires a worker from its dependencies. A non-positive
// dequeueTimeout falls back to the default.
func NewWorker(broker queue.Broker, store jobs.Store, p *Pipeline, dequeueTimeout time.Duration, logger *zap.Logger) *Worker {
	if dequeueTimeout <= 0 {
		dequeueTimeout = defaultDequeueTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		broker:         broker,
		store:          store,
		pipeline:       p,
		dequeueTimeout: dequeueTimeout,
		logger:         logger,
	}
}

// Run consumes tasks until ctx is cancelled. Queue errors back off rather
// than kill the loop, so a Redis restart does not take the worker down.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started", zap.Duration("dequeue_timeout", w.dequeueTimeout))

	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("worker stopping")
			return err
		}

		payload, err := w.broker.Dequeue(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.logger.Info("worker stopping")
				return err
			}
			w.logger.Error("dequeue failed, backing off", zap.Error(err))
			sleep(ctx, errorSleep)
			continue
		}
		if payload == nil {
			sleep(ctx, idleSleep)
			continue
		}

		var task jobs.Task
		if err := json.Unmarshal(payload, &task); err != nil {
			w.logger.Error("discarding malformed task", zap.Error(err),
				zap.ByteString("payload", payload))
			continue
		}

		w.process(ctx, task)
	}
}

// process runs one task, converting panics into job failures so a bad run
// never kills the worker.
func (w *Worker) process(ctx context.Context, task jobs.Task) {
	logger := w.logger.With(zap.String("job_id", task.JobID), zap.String("mode", string(task.Mode)))

	if err := w.store.MarkRunning(ctx, task.JobID); err != nil {
		logger.Error("cannot mark job running, skipping", zap.Error(err))
		return
	}

	result, err := w.runGuarded(ctx, task)
	if err != nil {
		logger.Error("job failed", zap.Error(err))
		if markErr := w.store.MarkFailed(ctx, task.JobID, err.Error()); markErr != nil {
			logger.Error("cannot mark job failed", zap.Error(markErr))
		}
		return
	}

	if err := w.store.MarkCompleted(ctx, task.JobID, result); err != nil {
		logger.Error("cannot mark job completed", zap.Error(err))
		return
	}
	logger.Info("job completed",
		zap.Int("documents", result.DocumentsProcessed),
		zap.Int("chunks", result.ChunksCreated))
}

func (w *Worker) runGuarded(ctx context.Context, task jobs.Task) (result jobs.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during pipeline run: %v", r)
		}
	}()
	return w.pipeline.Run(ctx, task)
}

// Supervise runs the worker until ctx is cancelled, restarting it after a
// backoff if it ever exits for another reason.
func (w *Worker) Supervise(ctx context.Context) {
	for {
		err := w.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("worker exited unexpectedly, restarting", zap.Error(err))
		sleep(ctx, errorSleep)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Package queue provides the job queue between the ingestion API and the
// pipeline worker.
package queue

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the queue backend cannot be reached.
var ErrUnavailable = errors.New("queue unavailable")

// Broker is a FIFO job queue. Payloads are opaque bytes; callers define the
// message format.
type Broker interface {
	// Enqueue pushes a payload onto the queue. Returns ErrUnavailable when
	// the backend is unreachable.
	Enqueue(ctx context.Context, payload []byte) error

	// Dequeue pops the oldest payload. A positive timeout blocks up to that
	// long; zero returns immediately. Returns (nil, nil) when the queue is
	// empty.
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)

	// Length returns the number of queued payloads.
	Length(ctx context.Context) (int64, error)

	// Close releases backend connections.
	Close() error
}

package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryBroker is an in-process Broker for tests and single-node setups.
type MemoryBroker struct {
	mu     sync.Mutex
	items  [][]byte
	notify chan struct{}
	closed bool
}

// NewMemoryBroker creates an empty in-memory queue.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{notify: make(chan struct{}, 1)}
}

// Enqueue appends a payload.
func (b *MemoryBroker) Enqueue(_ context.Context, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrUnavailable
	}
	b.items = append(b.items, payload)
	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue pops the oldest payload, blocking up to timeout when positive.
func (b *MemoryBroker) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return nil, ErrUnavailable
		}
		if len(b.items) > 0 {
			item := b.items[0]
			b.items = b.items[1:]
			b.mu.Unlock()
			return item, nil
		}
		b.mu.Unlock()

		if timeout <= 0 {
			return nil, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		case <-b.notify:
			timer.Stop()
		}
	}
}

// Length returns the number of queued payloads.
func (b *MemoryBroker) Length(context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrUnavailable
	}
	return int64(len(b.items)), nil
}

// Close marks the broker unavailable.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

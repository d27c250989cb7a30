package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker implements Broker on a Redis list. Producers LPUSH, the worker
// BRPOP, so the oldest job is consumed first.
type RedisBroker struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisBroker connects to Redis at rawURL (redis://host:port/db) and uses
// key as the list name.
func NewRedisBroker(rawURL, key string, logger *zap.Logger) (*RedisBroker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	return &RedisBroker{
		client: redis.NewClient(opts),
		key:    key,
		logger: logger,
	}, nil
}

// Ping checks connectivity. Used by health handlers.
func (b *RedisBroker) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Enqueue pushes a payload onto the head of the list.
func (b *RedisBroker) Enqueue(ctx context.Context, payload []byte) error {
	if err := b.client.LPush(ctx, b.key, payload).Err(); err != nil {
		b.logger.Error("enqueue failed", zap.String("queue", b.key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Dequeue pops from the tail. A positive timeout uses BRPOP and blocks; zero
// uses RPOP and returns immediately. Empty queue yields (nil, nil).
func (b *RedisBroker) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		vals, err := b.client.BRPop(ctx, timeout, b.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		// BRPOP returns [key, value].
		if len(vals) != 2 {
			return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(vals))
		}
		return []byte(vals[1]), nil
	}

	val, err := b.client.RPop(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

// Length returns the list length.
func (b *RedisBroker) Length(ctx context.Context) (int64, error) {
	n, err := b.client.LLen(ctx, b.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n, nil
}

// Close closes the Redis connection.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

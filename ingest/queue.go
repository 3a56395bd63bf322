package ingest

import (
	"context"
	"time"

	"github.com/habiliai/tutorwise/errors"
	"github.com/redis/go-redis/v9"
)

// Queue holds content ids waiting for ingestion.
type Queue interface {
	Enqueue(ctx context.Context, contentID string) error
	// Dequeue blocks until an id is available or ctx is done.
	Dequeue(ctx context.Context) (string, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

type MemoryQueue struct {
	items chan string
}

var _ Queue = (*MemoryQueue)(nil)

func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{items: make(chan string, size)}
}

// Enqueue fails with ErrQueueFull instead of blocking.
func (q *MemoryQueue) Enqueue(_ context.Context, contentID string) error {
	select {
	case q.items <- contentID:
		return nil
	default:
		return errors.Wrapf(errors.ErrQueueFull, "%d tasks waiting", cap(q.items))
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case id := <-q.items:
		return id, nil
	}
}

func (q *MemoryQueue) Len(context.Context) (int, error) {
	return len(q.items), nil
}

func (q *MemoryQueue) Close() error {
	return nil
}

// RedisQueue is a redis list shared by several processes. Producers LPUSH,
// workers BRPOP.
type RedisQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
}

var _ Queue = (*RedisQueue)(nil)

func NewRedisQueue(url, key string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "invalid redis url: %v", err)
	}
	return &RedisQueue{
		client:      redis.NewClient(opts),
		key:         key,
		pollTimeout: time.Second,
	}, nil
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return errors.Wrapf(q.client.Ping(ctx).Err(), "failed to reach redis")
}

func (q *RedisQueue) Enqueue(ctx context.Context, contentID string) error {
	if err := q.client.LPush(ctx, q.key, contentID).Err(); err != nil {
		return errors.Wrapf(err, "failed to enqueue %s", contentID)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (string, error) {
	for {
		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		switch {
		case err == nil:
			// [key, value]
			return res[1], nil
		case errors.Is(err, redis.Nil):
			continue
		case ctx.Err() != nil:
			return "", ctx.Err()
		default:
			return "", errors.Wrapf(err, "failed to dequeue")
		}
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read queue length")
	}
	return int(n), nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nemuzard/notesys/internal/domain"
)

// taskQueueKey is the Redis list backing the queue. The list is shared and
// survives process restarts, so a consumer crash does not drop items that
// have not yet been popped.
const taskQueueKey = "task:email:queue"

// RedisQueue is the production TaskQueue: LPUSH at the tail, RPOP at the
// head. RPOP is atomic, which is what makes a popped item owned by exactly
// one consumer.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Enqueue(ctx context.Context, t Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.rdb.LPush(ctx, taskQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("lpush task: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) ([]byte, error) {
	raw, err := q.rdb.RPop(ctx, taskQueueKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("rpop task: %w", err)
	}
	return raw, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, taskQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("llen task queue: %w", err)
	}
	return n, nil
}

var _ TaskQueue = (*RedisQueue)(nil)

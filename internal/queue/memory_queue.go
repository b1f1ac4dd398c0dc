package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nemuzard/notesys/internal/domain"
)

// MemoryQueue is an in-process TaskQueue with the same FIFO and non-blocking
// semantics as RedisQueue. Used in unit tests and local development where
// durability across restarts does not matter.
type MemoryQueue struct {
	mu    sync.Mutex
	items [][]byte
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(_ context.Context, t Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, payload)
	return nil
}

// EnqueueRaw appends an arbitrary payload, bypassing encoding.
// Tests use it to plant malformed items.
func (q *MemoryQueue) EnqueueRaw(raw []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, raw)
}

func (q *MemoryQueue) Dequeue(_ context.Context) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, domain.ErrQueueEmpty
	}
	raw := q.items[0]
	q.items = q.items[1:]
	return raw, nil
}

func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

var _ TaskQueue = (*MemoryQueue)(nil)

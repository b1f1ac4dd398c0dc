package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nemuzard/notesys/internal/domain"
)

// TaskKind discriminates queued payloads. Only email verification exists
// today; the discriminator keeps the wire format open for new task types.
type TaskKind string

const TaskKindEmailVerification TaskKind = "email_verification"

// Task is one unit of queued background work. Immutable once enqueued;
// the queue owns it until a consumer pops it, and a successfully processed
// task is destroyed, never re-enqueued.
type Task struct {
	Kind  TaskKind `json:"kind"`
	Email string   `json:"email"`
	Code  string   `json:"code"`
}

// DecodeTask parses a raw queue payload. A payload that is not valid JSON
// or carries no kind is fatal to that item: the consumer logs and drops it.
func DecodeTask(raw []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return Task{}, fmt.Errorf("%w: %v", domain.ErrMalformedTask, err)
	}
	if t.Kind == "" {
		return Task{}, fmt.Errorf("%w: missing kind", domain.ErrMalformedTask)
	}
	return t, nil
}

// TaskQueue is a single ordered, persisted list of pending work items.
//
// Enqueue appends to the tail and returns immediately; it never blocks on a
// consumer. Dequeue removes and returns the raw payload nearest the head, or
// domain.ErrQueueEmpty without blocking. The pop removes before handing off,
// so two consumers can run without double-processing. An item popped but
// never completed is not retried (see the worker package).
type TaskQueue interface {
	Enqueue(ctx context.Context, t Task) error
	Dequeue(ctx context.Context) ([]byte, error)
	Len(ctx context.Context) (int64, error)
}

package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nemuzard/notesys/internal/domain"
	"github.com/nemuzard/notesys/internal/queue"
)

func task(email string) queue.Task {
	return queue.Task{Kind: queue.TaskKindEmailVerification, Email: email, Code: "123456"}
}

func TestMemoryQueue_FIFO(t *testing.T) {
	q := queue.NewMemoryQueue()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := q.Enqueue(ctx, task(fmt.Sprintf("user%d@example.com", i))); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	for i := 0; i < 10; i++ {
		raw, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		got, err := queue.DecodeTask(raw)
		if err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
		want := fmt.Sprintf("user%d@example.com", i)
		if got.Email != want {
			t.Fatalf("dequeue order broken: got %q, want %q", got.Email, want)
		}
	}
}

func TestMemoryQueue_EmptySentinel(t *testing.T) {
	q := queue.NewMemoryQueue()
	ctx := context.Background()

	_ = q.Enqueue(ctx, task("a@example.com"))
	if _, err := q.Dequeue(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Drained: the next pop must return the sentinel immediately, not block.
	_, err := q.Dequeue(ctx)
	if !errors.Is(err, domain.ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}

	n, err := q.Len(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected empty queue, got len=%d err=%v", n, err)
	}
}

func TestMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := queue.NewMemoryQueue()
	ctx := context.Background()

	const producers = 5
	const perProducer = 50

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				_ = q.Enqueue(ctx, task("a@example.com"))
			}
		}()
	}
	wg.Wait()

	popped := 0
	for {
		_, err := q.Dequeue(ctx)
		if errors.Is(err, domain.ErrQueueEmpty) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		popped++
	}
	if popped != producers*perProducer {
		t.Fatalf("expected %d items, popped %d", producers*perProducer, popped)
	}
}

func TestDecodeTask(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"kind":"email_verification","email":"a@x.com","code":"123456"}`, false},
		{"not json", `{{{`, true},
		{"missing kind", `{"email":"a@x.com","code":"123456"}`, true},
		{"empty payload", ``, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := queue.DecodeTask([]byte(tc.raw))
			if tc.wantErr {
				if !errors.Is(err, domain.ErrMalformedTask) {
					t.Fatalf("expected ErrMalformedTask, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Email != "a@x.com" || got.Code != "123456" {
				t.Fatalf("unexpected task: %+v", got)
			}
		})
	}
}

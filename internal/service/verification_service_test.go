package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/domain"
	"github.com/nemuzard/notesys/internal/queue"
	"github.com/nemuzard/notesys/internal/service"
	"github.com/nemuzard/notesys/internal/verification"
)

func newVerificationService() (*service.VerificationService, *queue.MemoryQueue, *verification.MemoryStore) {
	q := queue.NewMemoryQueue()
	codes := verification.NewMemoryStore()
	svc := service.NewVerificationService(q, codes, zap.NewNop())
	return svc, q, codes
}

func TestVerificationService_RequestCodeEnqueues(t *testing.T) {
	svc, q, _ := newVerificationService()
	ctx := context.Background()

	if err := svc.RequestCode(ctx, "User@Example.COM"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("expected a queued task: %v", err)
	}
	task, err := queue.DecodeTask(raw)
	if err != nil {
		t.Fatal(err)
	}
	if task.Kind != queue.TaskKindEmailVerification {
		t.Fatalf("unexpected task kind %q", task.Kind)
	}
	// Address is normalised before queueing.
	if task.Email != "user@example.com" {
		t.Fatalf("expected normalised email, got %q", task.Email)
	}
	if len(task.Code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", task.Code)
	}
}

func TestVerificationService_RequestCode_InvalidEmail(t *testing.T) {
	svc, q, _ := newVerificationService()

	for _, email := range []string{"", "nodomain", "@x.com", "a@", "a@nodot"} {
		if err := svc.RequestCode(context.Background(), email); !errors.Is(err, domain.ErrInvalidEmail) {
			t.Fatalf("email %q: expected ErrInvalidEmail, got %v", email, err)
		}
	}
	if n, _ := q.Len(context.Background()); n != 0 {
		t.Fatalf("invalid requests must not enqueue, len=%d", n)
	}
}

func TestVerificationService_CheckCode(t *testing.T) {
	svc, _, codes := newVerificationService()
	ctx := context.Background()

	// Before the consumer processed anything the code is unknown.
	res, err := svc.CheckCode(ctx, "a@x.com", "123456")
	if err != nil || res != verification.ResultExpiredOrMissing {
		t.Fatalf("expected expired_or_missing, got %v err=%v", res, err)
	}

	_ = codes.Put(ctx, "a@x.com", "123456", 5*time.Minute)

	res, _ = svc.CheckCode(ctx, "A@X.com", "123456")
	if res != verification.ResultMatch {
		t.Fatalf("expected match with normalised subject, got %v", res)
	}
	res, _ = svc.CheckCode(ctx, "a@x.com", "000000")
	if res != verification.ResultMismatch {
		t.Fatalf("expected mismatch, got %v", res)
	}
}

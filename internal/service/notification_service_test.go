package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/domain"
	"github.com/nemuzard/notesys/internal/hub"
	"github.com/nemuzard/notesys/internal/repository"
	"github.com/nemuzard/notesys/internal/service"
)

func newService() (*service.NotificationService, *repository.MockNotificationRepository, *repository.MockActivityRepository, *hub.Hub) {
	repo := repository.NewMockNotificationRepository()
	activity := repository.NewMockActivityRepository()
	h := hub.New(zap.NewNop())
	svc := service.NewNotificationService(repo, activity, h, zap.NewNop())
	return svc, repo, activity, h
}

var validReq = domain.CreateNotificationRequest{
	Kind:        domain.KindComment,
	RecipientID: "alice",
	TargetID:    "note-1",
	Content:     "Nice write-up!",
}

func TestNotificationService_Create(t *testing.T) {
	svc, repo, activity, h := newService()
	defer h.Close()
	ctx := context.Background()

	n, err := svc.Create(ctx, "bob", validReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID == "" {
		t.Fatal("expected a non-empty ID")
	}
	if n.Read {
		t.Fatal("new notifications must start unread")
	}
	if n.ActorID != "bob" {
		t.Fatalf("expected actor from caller, got %q", n.ActorID)
	}

	stored, err := repo.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("expected the notification persisted: %v", err)
	}
	if stored.RecipientID != "alice" {
		t.Fatalf("unexpected recipient %q", stored.RecipientID)
	}

	scores, _ := activity.ScoresSince(ctx, time.Time{})
	if len(scores) != 1 || scores[0].Comments != 1 {
		t.Fatalf("expected one recorded comment, got %+v", scores)
	}
}

func TestNotificationService_Create_InvalidKind(t *testing.T) {
	svc, _, _, h := newService()
	defer h.Close()

	bad := validReq
	bad.Kind = "poke"
	if _, err := svc.Create(context.Background(), "bob", bad); !errors.Is(err, domain.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestNotificationService_Create_PushesToBoundRecipient(t *testing.T) {
	svc, repo, _, h := newService()
	defer h.Close()
	ctx := context.Background()

	b := h.Bind("alice")
	n, err := svc.Create(ctx, "bob", validReq)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case pushed := <-b.Out():
		if pushed.ID != n.ID {
			t.Fatalf("pushed %s, created %s", pushed.ID, n.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a live push for the bound recipient")
	}

	// The push never outruns persistence: the stored copy is already visible.
	if _, err := repo.GetByID(ctx, n.ID); err != nil {
		t.Fatalf("notification not persisted at push time: %v", err)
	}
}

func TestNotificationService_Create_SystemKindSkipsActivity(t *testing.T) {
	svc, _, activity, h := newService()
	defer h.Close()

	req := validReq
	req.Kind = domain.KindSystem
	if _, err := svc.Create(context.Background(), "admin", req); err != nil {
		t.Fatal(err)
	}

	scores, _ := activity.ScoresSince(context.Background(), time.Time{})
	if len(scores) != 0 {
		t.Fatalf("system notifications must not feed rankings, got %+v", scores)
	}
}

func TestNotificationService_Create_ActivityFailureDoesNotFailCreate(t *testing.T) {
	svc, repo, activity, h := newService()
	defer h.Close()

	activity.RecordErr = errors.New("activity store down")
	n, err := svc.Create(context.Background(), "bob", validReq)
	if err != nil {
		t.Fatalf("activity failure must not fail creation: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), n.ID); err != nil {
		t.Fatalf("notification must still be persisted: %v", err)
	}
}

func TestNotificationService_List_NewestFirstAndUnreadFilter(t *testing.T) {
	svc, repo, _, h := newService()
	defer h.Close()
	ctx := context.Background()

	first, _ := svc.Create(ctx, "bob", validReq)
	// Force distinct timestamps so ordering is deterministic.
	bump(t, repo, first.ID, -time.Minute)
	second, _ := svc.Create(ctx, "carol", validReq)

	list, err := svc.List(ctx, "alice", domain.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest-first [%s %s], got %+v", second.ID, first.ID, ids(list))
	}

	if err := svc.MarkRead(ctx, first.ID, "alice"); err != nil {
		t.Fatal(err)
	}
	unread, err := svc.List(ctx, "alice", domain.ListFilter{UnreadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 1 || unread[0].ID != second.ID {
		t.Fatalf("expected only the unread notification, got %v", ids(unread))
	}

	count, _ := svc.UnreadCount(ctx, "alice")
	if count != 1 {
		t.Fatalf("expected unread count 1, got %d", count)
	}
}

func TestNotificationService_MarkRead_Idempotent(t *testing.T) {
	svc, _, _, h := newService()
	defer h.Close()
	ctx := context.Background()

	n, _ := svc.Create(ctx, "bob", validReq)

	if err := svc.MarkRead(ctx, n.ID, "alice"); err != nil {
		t.Fatalf("first mark-read: %v", err)
	}
	if err := svc.MarkRead(ctx, n.ID, "alice"); err != nil {
		t.Fatalf("second mark-read must be a no-op, got %v", err)
	}

	list, _ := svc.List(ctx, "alice", domain.ListFilter{})
	if !list[0].Read {
		t.Fatal("expected the notification to stay read")
	}
}

func TestNotificationService_MarkRead_NonOwnerRejected(t *testing.T) {
	svc, _, _, h := newService()
	defer h.Close()
	ctx := context.Background()

	n, _ := svc.Create(ctx, "bob", validReq)

	err := svc.MarkRead(ctx, n.ID, "mallory")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	list, _ := svc.List(ctx, "alice", domain.ListFilter{})
	if list[0].Read {
		t.Fatal("non-owner mark-read must not change the flag")
	}
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	svc, _, _, h := newService()
	defer h.Close()

	err := svc.MarkRead(context.Background(), "missing-id", "alice")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, _, _, h := newService()
	defer h.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = svc.Create(ctx, "bob", validReq)
	}

	if err := svc.MarkAllRead(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	count, _ := svc.UnreadCount(ctx, "alice")
	if count != 0 {
		t.Fatalf("expected 0 unread after mark-all-read, got %d", count)
	}

	// Bulk variant is idempotent too.
	if err := svc.MarkAllRead(ctx, "alice"); err != nil {
		t.Fatalf("repeated mark-all-read must be a no-op, got %v", err)
	}
}

// ---- helpers ----

func ids(list []*domain.Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func bump(t *testing.T, repo *repository.MockNotificationRepository, id string, d time.Duration) {
	t.Helper()
	if !repo.ShiftCreatedAt(id, d) {
		t.Fatalf("no stored notification %s", id)
	}
}

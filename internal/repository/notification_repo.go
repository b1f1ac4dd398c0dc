package repository

import (
	"context"
	"time"

	"github.com/nemuzard/notesys/internal/domain"
)

// NotificationRepository defines all persistence operations for in-app
// notifications. The pgx implementation is in pg_notification_repo.go.
// Tests use a hand-written mock (mock_repos.go).
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	// ListForRecipient returns the recipient's notifications newest-first.
	ListForRecipient(ctx context.Context, recipientID string, filter domain.ListFilter) ([]*domain.Notification, error)
	// MarkRead flips the read flag only if recipientID owns the notification.
	// Marking an already-read notification is a no-op, not an error.
	// Returns domain.ErrNotFound or domain.ErrUnauthorized otherwise.
	MarkRead(ctx context.Context, id, recipientID string) error
	// MarkAllRead is the bulk idempotent variant.
	MarkAllRead(ctx context.Context, recipientID string) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

// ActivityRepository records domain activity and serves the aggregation
// scheduler's trailing-window scans.
type ActivityRepository interface {
	Record(ctx context.Context, e *domain.ActivityEvent) error
	// ScoresSince aggregates comment and like counts per subject for
	// activity at or after the given instant.
	ScoresSince(ctx context.Context, since time.Time) ([]domain.SubjectScore, error)
}

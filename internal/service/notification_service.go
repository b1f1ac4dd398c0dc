package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/domain"
	"github.com/nemuzard/notesys/internal/hub"
	"github.com/nemuzard/notesys/internal/repository"
)

// NotificationService turns domain events into persisted notifications and
// real-time pushes. Persistence and push are two independent sinks fed by
// one event: the durable write always happens first and a failed or
// impossible push never affects it.
type NotificationService struct {
	repo     repository.NotificationRepository
	activity repository.ActivityRepository
	pushHub  *hub.Hub
	logger   *zap.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	activity repository.ActivityRepository,
	pushHub *hub.Hub,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{repo: repo, activity: activity, pushHub: pushHub, logger: logger}
}

// Create persists a notification for the triggering domain event, records
// the activity for the ranking history, and offers the notification to the
// recipient's live connections. Returns the new notification's identifier.
func (s *NotificationService) Create(
	ctx context.Context,
	actorID string,
	req domain.CreateNotificationRequest,
) (*domain.Notification, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	n := &domain.Notification{
		ID:          uuid.New().String(),
		RecipientID: req.RecipientID,
		ActorID:     actorID,
		Kind:        req.Kind,
		TargetID:    req.TargetID,
		Content:     req.Content,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	// Comments and likes feed the activity history the ranking run scans.
	// A failed activity write degrades rankings only, never the notification.
	if req.Kind == domain.KindComment || req.Kind == domain.KindLike {
		err := s.activity.Record(ctx, &domain.ActivityEvent{
			Kind:       req.Kind,
			SubjectID:  req.TargetID,
			ActorID:    actorID,
			OccurredAt: now,
		})
		if err != nil {
			s.logger.Warn("failed to record activity event",
				zap.String("notification_id", n.ID), zap.Error(err))
		}
	}

	// Best-effort push after the durable write. Offline recipients discover
	// the notification on their next poll.
	s.pushHub.Publish(n)

	return n, nil
}

func (s *NotificationService) List(ctx context.Context, recipientID string, filter domain.ListFilter) ([]*domain.Notification, error) {
	return s.repo.ListForRecipient(ctx, recipientID, filter)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return s.repo.MarkRead(ctx, id, recipientID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

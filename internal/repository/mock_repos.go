package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nemuzard/notesys/internal/domain"
)

// MockNotificationRepository is a hand-written, in-memory implementation of
// NotificationRepository used in unit tests. No mock-generation library needed.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
	order         []string // insertion order, for stable newest-first listing

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr   error
	MarkReadErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[string]*domain.Notification),
	}
}

func (m *MockNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *n
	m.notifications[n.ID] = &clone
	m.order = append(m.order, n.ID)
	return nil
}

func (m *MockNotificationRepository) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m *MockNotificationRepository) ListForRecipient(_ context.Context, recipientID string, f domain.ListFilter) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Notification
	for _, id := range m.order {
		n := m.notifications[id]
		if n.RecipientID != recipientID {
			continue
		}
		if f.UnreadOnly && n.Read {
			continue
		}
		clone := *n
		result = append(result, &clone)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(_ context.Context, id, recipientID string) error {
	if m.MarkReadErr != nil {
		return m.MarkReadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	if n.RecipientID != recipientID {
		return domain.ErrUnauthorized
	}
	n.Read = true
	return nil
}

func (m *MockNotificationRepository) MarkAllRead(_ context.Context, recipientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (m *MockNotificationRepository) CountUnread(_ context.Context, recipientID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

// ShiftCreatedAt moves a stored notification's timestamp by d.
// Test helper for deterministic ordering; reports whether the id existed.
func (m *MockNotificationRepository) ShiftCreatedAt(id string, d time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if ok {
		n.CreatedAt = n.CreatedAt.Add(d)
	}
	return ok
}

var _ NotificationRepository = (*MockNotificationRepository)(nil)

// MockActivityRepository is the in-memory ActivityRepository for tests.
type MockActivityRepository struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
	nextID int64

	RecordErr      error
	ScoresSinceErr error
}

func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

func (m *MockActivityRepository) Record(_ context.Context, e *domain.ActivityEvent) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.events = append(m.events, *e)
	return nil
}

func (m *MockActivityRepository) ScoresSince(_ context.Context, since time.Time) ([]domain.SubjectScore, error) {
	if m.ScoresSinceErr != nil {
		return nil, m.ScoresSinceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	bySubject := make(map[string]*domain.SubjectScore)
	var order []string
	for _, e := range m.events {
		if e.OccurredAt.Before(since) {
			continue
		}
		s, ok := bySubject[e.SubjectID]
		if !ok {
			s = &domain.SubjectScore{SubjectID: e.SubjectID}
			bySubject[e.SubjectID] = s
			order = append(order, e.SubjectID)
		}
		switch e.Kind {
		case domain.KindComment:
			s.Comments++
		case domain.KindLike:
			s.Likes++
		}
	}

	result := make([]domain.SubjectScore, 0, len(order))
	for _, id := range order {
		result = append(result, *bySubject[id])
	}
	return result, nil
}

var _ ActivityRepository = (*MockActivityRepository)(nil)

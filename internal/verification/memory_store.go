package verification

import (
	"context"
	"sync"
	"time"
)

type record struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is the in-process Store used in tests.
// Now is injectable so expiry can be tested without sleeping.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]record
	Now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]record),
		Now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, subject, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[subject] = record{code: code, expiresAt: s.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Check(_ context.Context, subject, code string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[subject]
	if !ok || s.Now().After(r.expiresAt) {
		delete(s.records, subject)
		return ResultExpiredOrMissing, nil
	}
	if r.code != code {
		return ResultMismatch, nil
	}
	return ResultMatch, nil
}

var _ Store = (*MemoryStore)(nil)

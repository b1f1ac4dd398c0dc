// Package ranking computes and serves the activity-based popularity
// snapshot. Each scheduler run rebuilds the snapshot wholesale and swaps it
// in atomically; readers always see a complete, consistent snapshot and a
// failed run leaves the previous one in place.
package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotKey is where the last published snapshot is mirrored in Redis so
// a restarted process serves stale-but-available rankings before its first
// aggregation run.
const snapshotKey = "ranking:current"

// Entry is one ranked subject. Entries are ordered by descending score.
type Entry struct {
	SubjectID string `json:"subject_id"`
	Score     int64  `json:"score"`
}

// Snapshot is a wholesale, read-only ranking aggregate.
type Snapshot struct {
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
}

// Holder owns the current snapshot pointer behind an RWMutex. It is created
// once in main and passed by reference to the aggregator and the HTTP layer,
// keeping the swap contract auditable instead of hiding it in a global.
type Holder struct {
	mu      sync.RWMutex
	current *Snapshot
}

func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the most recently published snapshot, or nil before the
// first publish.
func (h *Holder) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Publish replaces the snapshot wholesale. The previous snapshot is never
// patched in place, so concurrent readers holding it keep a consistent view.
func (h *Holder) Publish(s *Snapshot) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
}

// SaveSnapshot mirrors the snapshot to Redis.
func SaveSnapshot(ctx context.Context, rdb *redis.Client, s *Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := rdb.Set(ctx, snapshotKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot fetches the mirrored snapshot, or (nil, nil) when none exists.
func LoadSnapshot(ctx context.Context, rdb *redis.Client) (*Snapshot, error) {
	raw, err := rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}

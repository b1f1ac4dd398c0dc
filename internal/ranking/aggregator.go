package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/repository"
)

// Score weights. Comments signal more engagement than likes.
const (
	commentWeight = 3
	likeWeight    = 1
)

// Aggregator recomputes the ranking snapshot from the trailing activity
// window. One run is a full pass: scan, score, sort, truncate, publish.
// A failed run publishes nothing — the holder keeps the previous snapshot
// and the next scheduled run retries.
type Aggregator struct {
	activity repository.ActivityRepository
	holder   *Holder
	window   time.Duration
	limit    int
	logger   *zap.Logger

	// persist mirrors a published snapshot to durable storage (nil = skip).
	persist func(ctx context.Context, s *Snapshot) error

	// now is injectable for tests.
	now func() time.Time
}

func NewAggregator(
	activity repository.ActivityRepository,
	holder *Holder,
	window time.Duration,
	limit int,
	persist func(ctx context.Context, s *Snapshot) error,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		activity: activity,
		holder:   holder,
		window:   window,
		limit:    limit,
		persist:  persist,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one aggregation pass. It returns an error for logging and
// metrics, but callers must not abort the schedule on failure.
func (a *Aggregator) Run(ctx context.Context) error {
	started := a.now().UTC()

	scores, err := a.activity.ScoresSince(ctx, started.Add(-a.window))
	if err != nil {
		return fmt.Errorf("scan activity window: %w", err)
	}

	entries := make([]Entry, 0, len(scores))
	for _, s := range scores {
		score := commentWeight*s.Comments + likeWeight*s.Likes
		if score <= 0 {
			continue
		}
		entries = append(entries, Entry{SubjectID: s.SubjectID, Score: score})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if a.limit > 0 && len(entries) > a.limit {
		entries = entries[:a.limit]
	}

	snapshot := &Snapshot{GeneratedAt: started, Entries: entries}
	a.holder.Publish(snapshot)

	if a.persist != nil {
		// Persistence failure does not unpublish: the in-memory snapshot is
		// already live, only the restart mirror is stale.
		if err := a.persist(ctx, snapshot); err != nil {
			a.logger.Warn("failed to mirror ranking snapshot", zap.Error(err))
		}
	}

	a.logger.Info("ranking snapshot published",
		zap.Int("entries", len(entries)),
		zap.Duration("took", time.Since(started)))
	return nil
}

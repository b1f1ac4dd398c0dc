package ranking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/domain"
	"github.com/nemuzard/notesys/internal/ranking"
	"github.com/nemuzard/notesys/internal/repository"
)

func record(t *testing.T, repo *repository.MockActivityRepository, kind domain.Kind, subject string, at time.Time) {
	t.Helper()
	err := repo.Record(context.Background(), &domain.ActivityEvent{
		Kind:       kind,
		SubjectID:  subject,
		ActorID:    "actor-1",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAggregator_ScoresAndOrders(t *testing.T) {
	repo := repository.NewMockActivityRepository()
	holder := ranking.NewHolder()
	agg := ranking.NewAggregator(repo, holder, 168*time.Hour, 50, nil, zap.NewNop())

	now := time.Now().UTC()
	// note-a: 2 comments + 1 like = 7; note-b: 1 comment = 3; note-c: 2 likes = 2.
	record(t, repo, domain.KindComment, "note-a", now)
	record(t, repo, domain.KindComment, "note-a", now)
	record(t, repo, domain.KindLike, "note-a", now)
	record(t, repo, domain.KindComment, "note-b", now)
	record(t, repo, domain.KindLike, "note-c", now)
	record(t, repo, domain.KindLike, "note-c", now)
	// Outside the trailing window: must not count.
	record(t, repo, domain.KindComment, "note-old", now.Add(-200*time.Hour))

	if err := agg.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := holder.Current()
	if s == nil {
		t.Fatal("expected a published snapshot")
	}
	want := []ranking.Entry{
		{SubjectID: "note-a", Score: 7},
		{SubjectID: "note-b", Score: 3},
		{SubjectID: "note-c", Score: 2},
	}
	if len(s.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(s.Entries), s.Entries)
	}
	for i, e := range want {
		if s.Entries[i] != e {
			t.Fatalf("entry %d: got %+v, want %+v", i, s.Entries[i], e)
		}
	}
}

func TestAggregator_FailedRunRetainsPreviousSnapshot(t *testing.T) {
	repo := repository.NewMockActivityRepository()
	holder := ranking.NewHolder()
	agg := ranking.NewAggregator(repo, holder, 168*time.Hour, 50, nil, zap.NewNop())
	ctx := context.Background()

	record(t, repo, domain.KindComment, "note-a", time.Now().UTC())
	if err := agg.Run(ctx); err != nil {
		t.Fatal(err)
	}
	previous := holder.Current()
	if previous == nil {
		t.Fatal("expected a first snapshot")
	}

	repo.ScoresSinceErr = errors.New("store unavailable")
	if err := agg.Run(ctx); err == nil {
		t.Fatal("expected the failed run to report an error")
	}
	if holder.Current() != previous {
		t.Fatal("failed run must leave the previous snapshot in place")
	}

	// Recovery: the next successful run replaces the snapshot wholesale.
	repo.ScoresSinceErr = nil
	record(t, repo, domain.KindLike, "note-b", time.Now().UTC())
	if err := agg.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if holder.Current() == previous {
		t.Fatal("successful run must publish a new snapshot")
	}
}

func TestAggregator_LimitTruncates(t *testing.T) {
	repo := repository.NewMockActivityRepository()
	holder := ranking.NewHolder()
	agg := ranking.NewAggregator(repo, holder, 168*time.Hour, 2, nil, zap.NewNop())

	now := time.Now().UTC()
	for _, subject := range []string{"a", "b", "c", "d"} {
		record(t, repo, domain.KindComment, subject, now)
	}

	if err := agg.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(holder.Current().Entries); got != 2 {
		t.Fatalf("expected 2 entries after truncation, got %d", got)
	}
}

func TestAggregator_PersistFailureDoesNotUnpublish(t *testing.T) {
	repo := repository.NewMockActivityRepository()
	holder := ranking.NewHolder()
	persist := func(context.Context, *ranking.Snapshot) error {
		return errors.New("mirror down")
	}
	agg := ranking.NewAggregator(repo, holder, 168*time.Hour, 50, persist, zap.NewNop())

	record(t, repo, domain.KindComment, "note-a", time.Now().UTC())
	if err := agg.Run(context.Background()); err != nil {
		t.Fatalf("persist failure must not fail the run: %v", err)
	}
	if holder.Current() == nil {
		t.Fatal("snapshot must stay published despite mirror failure")
	}
}

func TestHolder_EmptyBeforeFirstPublish(t *testing.T) {
	holder := ranking.NewHolder()
	if holder.Current() != nil {
		t.Fatal("expected nil snapshot before first publish")
	}
}

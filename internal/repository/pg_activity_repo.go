package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nemuzard/notesys/internal/domain"
)

type pgActivityRepository struct {
	pool *pgxpool.Pool
}

// NewPgActivityRepository returns an ActivityRepository backed by PostgreSQL.
func NewPgActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &pgActivityRepository{pool: pool}
}

func (r *pgActivityRepository) Record(ctx context.Context, e *domain.ActivityEvent) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO activity_events (kind, subject_id, actor_id, occurred_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		e.Kind, e.SubjectID, e.ActorID, e.OccurredAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert activity event: %w", err)
	}
	return nil
}

func (r *pgActivityRepository) ScoresSince(ctx context.Context, since time.Time) ([]domain.SubjectScore, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT subject_id,
		       COUNT(*) FILTER (WHERE kind = 'comment') AS comments,
		       COUNT(*) FILTER (WHERE kind = 'like')    AS likes
		FROM activity_events
		WHERE occurred_at >= $1 AND kind IN ('comment','like')
		GROUP BY subject_id`, since)
	if err != nil {
		return nil, fmt.Errorf("aggregate activity: %w", err)
	}
	defer rows.Close()

	var scores []domain.SubjectScore
	for rows.Next() {
		var s domain.SubjectScore
		if err := rows.Scan(&s.SubjectID, &s.Comments, &s.Likes); err != nil {
			return nil, fmt.Errorf("scan subject score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

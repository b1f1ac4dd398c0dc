package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nemuzard/notesys/internal/domain"
)

const defaultListLimit = 50

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
			(id, recipient_id, actor_id, kind, target_id, content, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, n.RecipientID, n.ActorID, n.Kind, n.TargetID, n.Content, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, recipient_id, actor_id, kind, target_id, content, read, created_at
		FROM notifications WHERE id = $1`, id)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return n, err
}

func (r *pgNotificationRepository) ListForRecipient(ctx context.Context, recipientID string, f domain.ListFilter) ([]*domain.Notification, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, recipient_id, actor_id, kind, target_id, content, read, created_at
		FROM notifications
		WHERE recipient_id = $1`
	if f.UnreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// MarkRead's WHERE clause enforces ownership at this layer, not only
// upstream. Zero affected rows is then disambiguated: unknown id vs.
// a caller who does not own the record.
func (r *pgNotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var owner string
	err = r.pool.QueryRow(ctx,
		`SELECT recipient_id FROM notifications WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mark read lookup: %w", err)
	}
	return domain.ErrUnauthorized
}

func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE recipient_id = $1 AND read = FALSE`, recipientID)
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND read = FALSE`, recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// ---- helpers ----

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.ActorID, &n.Kind,
		&n.TargetID, &n.Content, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanNotifications(rows pgx.Rows) ([]*domain.Notification, error) {
	var result []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

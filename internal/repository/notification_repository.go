package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ghost-league/internal/domain"
)

// NotificationRepository manages in-app notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, accountID, id string) error
	MarkAllRead(ctx context.Context, accountID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a Postgres-backed implementation.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (account_id, kind, title, body)
        VALUES ($1, $2, $3, $4)
        RETURNING id, read, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.AccountID,
		notification.Kind,
		notification.Title,
		notification.Body,
	).Scan(&notification.ID, &notification.Read, &notification.CreatedAt)
}

func (r *notificationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.Notification, error) {
	const query = `
        SELECT id, account_id, kind, title, body, read, created_at
        FROM notifications WHERE account_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, accountID, id string) error {
	const query = `UPDATE notifications SET read=TRUE WHERE id=$1 AND account_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, accountID string) error {
	const query = `UPDATE notifications SET read=TRUE WHERE account_id=$1 AND read=FALSE`
	_, err := r.pool.Exec(ctx, query, accountID)
	return err
}

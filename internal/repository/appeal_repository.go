package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ghost-league/internal/domain"
)

// AppealRepository manages appeal threads and their messages.
type AppealRepository interface {
	Create(ctx context.Context, appeal *domain.Appeal) error
	GetByID(ctx context.Context, id string) (*domain.Appeal, error)
	GetOpenByAccount(ctx context.Context, accountID string) (*domain.Appeal, error)
	ListByStatus(ctx context.Context, status domain.AppealStatus, limit, offset int) ([]domain.Appeal, error)
	AddMessage(ctx context.Context, msg *domain.AppealMessage) error
	SetStatus(ctx context.Context, id string, status domain.AppealStatus) error
}

type appealRepository struct {
	pool *pgxpool.Pool
}

// NewAppealRepository returns a Postgres-backed implementation.
func NewAppealRepository(pool *pgxpool.Pool) AppealRepository {
	return &appealRepository{pool: pool}
}

func (r *appealRepository) Create(ctx context.Context, appeal *domain.Appeal) error {
	const query = `
        INSERT INTO appeals (account_id, status)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, appeal.AccountID, appeal.Status).
		Scan(&appeal.ID, &appeal.CreatedAt, &appeal.UpdatedAt)
}

func (r *appealRepository) GetByID(ctx context.Context, id string) (*domain.Appeal, error) {
	const query = `
        SELECT id, account_id, status, created_at, updated_at
        FROM appeals WHERE id=$1`
	appeal, err := r.scanAppeal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadMessages(ctx, appeal); err != nil {
		return nil, err
	}
	return appeal, nil
}

func (r *appealRepository) GetOpenByAccount(ctx context.Context, accountID string) (*domain.Appeal, error) {
	const query = `
        SELECT id, account_id, status, created_at, updated_at
        FROM appeals WHERE account_id=$1 AND status='OPEN'
        ORDER BY created_at DESC LIMIT 1`
	appeal, err := r.scanAppeal(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, err
	}
	if err := r.loadMessages(ctx, appeal); err != nil {
		return nil, err
	}
	return appeal, nil
}

func (r *appealRepository) ListByStatus(ctx context.Context, status domain.AppealStatus, limit, offset int) ([]domain.Appeal, error) {
	const query = `
        SELECT id, account_id, status, created_at, updated_at
        FROM appeals WHERE status=$1
        ORDER BY updated_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appeals := make([]domain.Appeal, 0)
	for rows.Next() {
		var appeal domain.Appeal
		if err := rows.Scan(&appeal.ID, &appeal.AccountID, &appeal.Status, &appeal.CreatedAt, &appeal.UpdatedAt); err != nil {
			return nil, err
		}
		appeals = append(appeals, appeal)
	}
	return appeals, rows.Err()
}

func (r *appealRepository) AddMessage(ctx context.Context, msg *domain.AppealMessage) error {
	const query = `
        INSERT INTO appeal_messages (appeal_id, author_type, author_id, body)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		msg.AppealID,
		msg.AuthorType,
		msg.AuthorID,
		msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return err
	}

	const touch = `UPDATE appeals SET updated_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, touch, msg.AppealID)
	return err
}

func (r *appealRepository) SetStatus(ctx context.Context, id string, status domain.AppealStatus) error {
	const query = `UPDATE appeals SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appealRepository) scanAppeal(row pgx.Row) (*domain.Appeal, error) {
	var appeal domain.Appeal
	if err := row.Scan(&appeal.ID, &appeal.AccountID, &appeal.Status, &appeal.CreatedAt, &appeal.UpdatedAt); err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (r *appealRepository) loadMessages(ctx context.Context, appeal *domain.Appeal) error {
	const query = `
        SELECT id, appeal_id, author_type, author_id, body, created_at
        FROM appeal_messages WHERE appeal_id=$1
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, appeal.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var msg domain.AppealMessage
		if err := rows.Scan(&msg.ID, &msg.AppealID, &msg.AuthorType, &msg.AuthorID, &msg.Body, &msg.CreatedAt); err != nil {
			return err
		}
		appeal.Messages = append(appeal.Messages, msg)
	}
	return rows.Err()
}

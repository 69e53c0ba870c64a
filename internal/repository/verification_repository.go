package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ghost-league/internal/domain"
)

// ErrNoPendingVerification indicates no outstanding code exists for the email.
var ErrNoPendingVerification = errors.New("no pending verification")

// VerificationRepository stores the single outstanding verification code per
// email. Put overwrites any prior record, which is what invalidates
// superseded codes.
type VerificationRepository interface {
	Put(ctx context.Context, pv *domain.PendingVerification) error
	Get(ctx context.Context, email string) (*domain.PendingVerification, error)
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

const verificationKeyPrefix = "verify:code:"

type redisVerificationRepository struct {
	client *redis.Client
}

// NewRedisVerificationRepository stores codes in Redis hashes whose TTL is
// the code expiry itself.
func NewRedisVerificationRepository(client *redis.Client) VerificationRepository {
	return &redisVerificationRepository{client: client}
}

func (r *redisVerificationRepository) Put(ctx context.Context, pv *domain.PendingVerification) error {
	key := verificationKeyPrefix + pv.Email

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"code":       pv.Code,
		"expires_at": pv.ExpiresAt.Unix(),
		"attempts":   pv.Attempts,
		"created_at": pv.CreatedAt.Unix(),
	})
	pipe.ExpireAt(ctx, key, pv.ExpiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisVerificationRepository) Get(ctx context.Context, email string) (*domain.PendingVerification, error) {
	fields, err := r.client.HGetAll(ctx, verificationKeyPrefix+email).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNoPendingVerification
	}

	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, err
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, err
	}
	attempts, _ := strconv.Atoi(fields["attempts"])

	return &domain.PendingVerification{
		Email:     email,
		Code:      fields["code"],
		ExpiresAt: time.Unix(expiresAt, 0),
		Attempts:  attempts,
		CreatedAt: time.Unix(createdAt, 0),
	}, nil
}

func (r *redisVerificationRepository) IncrementAttempts(ctx context.Context, email string) (int, error) {
	key := verificationKeyPrefix + email
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, ErrNoPendingVerification
	}
	count, err := r.client.HIncrBy(ctx, key, "attempts", 1).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *redisVerificationRepository) Delete(ctx context.Context, email string) error {
	return r.client.Del(ctx, verificationKeyPrefix+email).Err()
}

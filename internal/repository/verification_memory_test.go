package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ghost-league/internal/domain"
)

func pendingCode(email, code string) *domain.PendingVerification {
	now := time.Now()
	return &domain.PendingVerification{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(5 * time.Minute),
		CreatedAt: now,
	}
}

func TestMemoryVerificationPutOverwrites(t *testing.T) {
	repo := NewMemoryVerificationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, pendingCode("rider@example.com", "1234")))

	// Attempts accumulated against the old code must not survive a reissue.
	_, err := repo.IncrementAttempts(ctx, "rider@example.com")
	require.NoError(t, err)

	require.NoError(t, repo.Put(ctx, pendingCode("rider@example.com", "5678")))

	stored, err := repo.Get(ctx, "rider@example.com")
	require.NoError(t, err)
	assert.Equal(t, "5678", stored.Code)
	assert.Equal(t, 0, stored.Attempts)
}

func TestMemoryVerificationGetMissing(t *testing.T) {
	repo := NewMemoryVerificationRepository()

	_, err := repo.Get(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNoPendingVerification)
}

func TestMemoryVerificationIncrementAttempts(t *testing.T) {
	repo := NewMemoryVerificationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, pendingCode("rider@example.com", "1234")))

	for want := 1; want <= 3; want++ {
		got, err := repo.IncrementAttempts(ctx, "rider@example.com")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	stored, err := repo.Get(ctx, "rider@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Attempts)
}

func TestMemoryVerificationDelete(t *testing.T) {
	repo := NewMemoryVerificationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, pendingCode("rider@example.com", "1234")))
	require.NoError(t, repo.Delete(ctx, "rider@example.com"))

	_, err := repo.Get(ctx, "rider@example.com")
	assert.ErrorIs(t, err, ErrNoPendingVerification)

	// Deleting an absent entry is not an error.
	assert.NoError(t, repo.Delete(ctx, "rider@example.com"))
}

func TestMemoryVerificationGetReturnsCopy(t *testing.T) {
	repo := NewMemoryVerificationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, pendingCode("rider@example.com", "1234")))

	first, err := repo.Get(ctx, "rider@example.com")
	require.NoError(t, err)
	first.Code = "mutated"

	second, err := repo.Get(ctx, "rider@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1234", second.Code)
}

package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/ghost-league/internal/domain"
)

// memoryVerificationRepository keeps pending codes in process memory. Used
// when Redis is not configured and by tests. Expiry is enforced on read by
// the caller; superseding still applies through Put overwrite.
type memoryVerificationRepository struct {
	mu      sync.Mutex
	pending map[string]*domain.PendingVerification
}

// NewMemoryVerificationRepository builds the in-memory implementation.
func NewMemoryVerificationRepository() VerificationRepository {
	return &memoryVerificationRepository{pending: make(map[string]*domain.PendingVerification)}
}

func (r *memoryVerificationRepository) Put(_ context.Context, pv *domain.PendingVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *pv
	r.pending[pv.Email] = &copied
	return nil
}

func (r *memoryVerificationRepository) Get(_ context.Context, email string) (*domain.PendingVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pv, ok := r.pending[email]
	if !ok {
		return nil, ErrNoPendingVerification
	}
	copied := *pv
	return &copied, nil
}

func (r *memoryVerificationRepository) IncrementAttempts(_ context.Context, email string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pv, ok := r.pending[email]
	if !ok {
		return 0, ErrNoPendingVerification
	}
	pv.Attempts++
	return pv.Attempts, nil
}

func (r *memoryVerificationRepository) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, email)
	return nil
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ghost-league/internal/config"
	"github.com/spec-kit/ghost-league/internal/domain"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
		Verification: config.VerificationConfig{
			CodeTTLMinutes: 5,
			MaxAttempts:    5,
		},
	}
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.ID = uuid.NewString()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Username == username {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) MarkVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Verified = true
	return nil
}

func (r *fakeAccountRepo) SetStatus(_ context.Context, id string, status domain.AccountStatus, reason string, suspensionDays *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Status = status
	account.StatusReason = reason
	account.SuspensionDays = suspensionDays
	if status == domain.AccountStatusSuspended {
		now := time.Now()
		account.SuspendedAt = &now
	} else {
		account.SuspendedAt = nil
	}
	return nil
}

func (r *fakeAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

// seed inserts an account directly, bypassing the registration flow.
func (r *fakeAccountRepo) seed(account *domain.Account) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	copied := *account
	r.accounts[account.ID] = &copied
	return account
}

type captureMailer struct {
	mu    sync.Mutex
	codes []string
}

func (m *captureMailer) SendVerificationCode(_ context.Context, _, _, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
	return "https://mail.test/preview/" + code, nil
}

func (m *captureMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.codes) == 0 {
		return ""
	}
	return m.codes[len(m.codes)-1]
}

func (m *captureMailer) sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes)
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return true, 0, nil
}

type denyLimiter struct {
	retryAfter time.Duration
}

func (l denyLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, l.retryAfter, nil
}

type fakeAppealRepo struct {
	mu      sync.Mutex
	appeals map[string]*domain.Appeal
}

func newFakeAppealRepo() *fakeAppealRepo {
	return &fakeAppealRepo{appeals: make(map[string]*domain.Appeal)}
}

func (r *fakeAppealRepo) Create(_ context.Context, appeal *domain.Appeal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appeal.ID = uuid.NewString()
	appeal.CreatedAt = time.Now()
	appeal.UpdatedAt = appeal.CreatedAt
	copied := *appeal
	copied.Messages = append([]domain.AppealMessage{}, appeal.Messages...)
	r.appeals[appeal.ID] = &copied
	return nil
}

func (r *fakeAppealRepo) GetByID(_ context.Context, id string) (*domain.Appeal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appeal, ok := r.appeals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneAppeal(appeal), nil
}

func (r *fakeAppealRepo) GetOpenByAccount(_ context.Context, accountID string) (*domain.Appeal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appeal := range r.appeals {
		if appeal.AccountID == accountID && appeal.Status == domain.AppealStatusOpen {
			return cloneAppeal(appeal), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAppealRepo) ListByStatus(_ context.Context, status domain.AppealStatus, limit, _ int) ([]domain.Appeal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Appeal
	for _, appeal := range r.appeals {
		if appeal.Status == status {
			out = append(out, *cloneAppeal(appeal))
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAppealRepo) AddMessage(_ context.Context, msg *domain.AppealMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appeal, ok := r.appeals[msg.AppealID]
	if !ok {
		return pgx.ErrNoRows
	}
	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	appeal.Messages = append(appeal.Messages, *msg)
	return nil
}

func (r *fakeAppealRepo) SetStatus(_ context.Context, id string, status domain.AppealStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appeal, ok := r.appeals[id]
	if !ok {
		return pgx.ErrNoRows
	}
	appeal.Status = status
	return nil
}

// backdateLastMessage shifts every stored message timestamp into the past so
// cooldown windows can be exercised without sleeping.
func (r *fakeAppealRepo) backdateLastMessage(id string, by time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appeal := r.appeals[id]
	for i := range appeal.Messages {
		appeal.Messages[i].CreatedAt = appeal.Messages[i].CreatedAt.Add(-by)
	}
}

func cloneAppeal(appeal *domain.Appeal) *domain.Appeal {
	copied := *appeal
	copied.Messages = append([]domain.AppealMessage{}, appeal.Messages...)
	return &copied
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].AccountID == accountID {
			out = append(out, r.notifications[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, accountID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].AccountID == accountID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].AccountID == accountID {
			r.notifications[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) byAccount(accountID string) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.AccountID == accountID {
			out = append(out, n)
		}
	}
	return out
}

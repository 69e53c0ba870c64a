package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ghost-league/internal/auth"
	"github.com/spec-kit/ghost-league/internal/config"
	"github.com/spec-kit/ghost-league/internal/domain"
	"github.com/spec-kit/ghost-league/internal/events"
	"github.com/spec-kit/ghost-league/internal/mail"
	"github.com/spec-kit/ghost-league/internal/ratelimit"
	"github.com/spec-kit/ghost-league/internal/repository"
	apperrors "github.com/spec-kit/ghost-league/pkg/util"
)

// RFC-lite: one @, no whitespace, a dot in the domain part.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// AuthService orchestrates the verification-gated registration and login
// flows: register -> issue code -> verify -> session, and login -> session
// or back onto the verification path.
type AuthService struct {
	accounts      repository.AccountRepository
	verifications repository.VerificationRepository
	mailer        mail.Mailer
	dispatcher    events.Dispatcher
	resendLimiter ratelimit.Limiter
	tokenMgr      *auth.TokenManager
	bcryptCost    int
	codeTTL       time.Duration
	maxAttempts   int
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	AccountRepo      repository.AccountRepository
	VerificationRepo repository.VerificationRepository
	Mailer           mail.Mailer
	Dispatcher       events.Dispatcher
	ResendLimiter    ratelimit.Limiter
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts:      deps.AccountRepo,
		verifications: deps.VerificationRepo,
		mailer:        deps.Mailer,
		dispatcher:    deps.Dispatcher,
		resendLimiter: deps.ResendLimiter,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:    cfg.Auth.BcryptCost,
		codeTTL:       cfg.Verification.CodeTTL(),
		maxAttempts:   cfg.Verification.MaxAttempts,
	}
}

// RegisterResult reports the pending-verification holding state.
type RegisterResult struct {
	Email      string
	PreviewURL string
}

// LoginResult carries an issued session.
type LoginResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// Register creates an unverified account and issues its first verification
// code. Validation reports every violated field, not just the first; no
// account is created when any check fails.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if violations := validateRegistration(username, email, password); len(violations) > 0 {
		return nil, apperrors.NewValidationError("registration failed validation", violations)
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Verified:     false,
		Status:       domain.AccountStatusActive,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventAccountRegistered, account.ID, events.AccountRegisteredPayload{
		Username: account.Username,
		Email:    account.Email,
	})

	preview, err := s.issueCode(ctx, account)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Email: email, PreviewURL: preview}, nil
}

// Login authenticates by email and password. An unverified account never
// receives a session: a fresh code is issued instead and the verification
// branch is surfaced to the caller. Account status is not consulted here;
// suspended and banned members are gated after the fact via the status
// endpoint.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAuthFailed("invalid email or password")
		}
		return nil, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewAuthFailed("invalid email or password")
	}

	if !account.Verified {
		// Reissue so the member always has a live code to enter; skip the
		// send when the per-email cap is exhausted but still surface the
		// verification branch.
		if allowed, _, limitErr := s.resendLimiter.Allow(ctx, email); limitErr == nil && allowed {
			if _, err := s.issueCode(ctx, account); err != nil {
				return nil, err
			}
		}
		return nil, apperrors.NewEmailNotVerified(email)
	}

	return s.issueSession(account)
}

// VerifyEmailAndLogin redeems a verification code. Only the most recently
// issued, unexpired code for the email is accepted; bounded wrong attempts
// burn the code entirely.
func (s *AuthService) VerifyEmailAndLogin(ctx context.Context, email, code string) (*LoginResult, error) {
	email = NormalizeEmail(email)

	pending, err := s.verifications.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNoPendingVerification) {
			return nil, apperrors.NewCodeInvalidOrExpired()
		}
		return nil, err
	}

	now := time.Now()
	if pending.Expired(now) {
		_ = s.verifications.Delete(ctx, email)
		return nil, apperrors.NewCodeInvalidOrExpired()
	}
	if pending.Attempts >= s.maxAttempts {
		return nil, apperrors.NewTooManyAttempts(retryAfterSeconds(pending.ExpiresAt, now))
	}

	if pending.Code != code {
		attempts, incErr := s.verifications.IncrementAttempts(ctx, email)
		if incErr == nil && attempts >= s.maxAttempts {
			return nil, apperrors.NewTooManyAttempts(retryAfterSeconds(pending.ExpiresAt, now))
		}
		return nil, apperrors.NewCodeInvalidOrExpired()
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"email": email})
		}
		return nil, err
	}

	if err := s.accounts.MarkVerified(ctx, account.ID); err != nil {
		return nil, err
	}
	account.Verified = true

	if err := s.verifications.Delete(ctx, email); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventEmailVerified, account.ID, events.EmailVerifiedPayload{
		Username: account.Username,
	})

	return s.issueSession(account)
}

// ResendCode supersedes any outstanding code with a fresh one. The previous
// code becomes invalid immediately, even inside its original window.
func (s *AuthService) ResendCode(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("account", map[string]any{"email": email})
		}
		return "", err
	}
	if account.Verified {
		return "", apperrors.NewConflict("email already verified", nil)
	}

	allowed, retryAfter, err := s.resendLimiter.Allow(ctx, email)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", apperrors.NewRateLimited(int(retryAfter.Seconds()))
	}

	return s.issueCode(ctx, account)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueSession(account *domain.Account) (*LoginResult, error) {
	token, expiresAt, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) issueCode(ctx context.Context, account *domain.Account) (string, error) {
	code, err := auth.GenerateVerificationCode()
	if err != nil {
		return "", err
	}

	now := time.Now()
	pending := &domain.PendingVerification{
		Email:     account.Email,
		Code:      code,
		ExpiresAt: now.Add(s.codeTTL),
		Attempts:  0,
		CreatedAt: now,
	}
	if err := s.verifications.Put(ctx, pending); err != nil {
		return "", err
	}

	return s.mailer.SendVerificationCode(ctx, account.Email, account.Username, code)
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, accountID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: accountID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// NormalizeEmail lower-cases and trims an address so lookups and storage
// agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(username, email, password string) map[string]any {
	violations := map[string]any{}
	if username == "" {
		violations["username"] = "required"
	} else if len(username) < minUsernameLen {
		violations["username"] = "must be at least 3 characters"
	}
	if email == "" {
		violations["email"] = "required"
	} else if !emailPattern.MatchString(email) {
		violations["email"] = "must be a valid email address"
	}
	if password == "" {
		violations["password"] = "required"
	} else if len(password) < minPasswordLen {
		violations["password"] = "must be at least 6 characters"
	}
	return violations
}

func retryAfterSeconds(expiresAt, now time.Time) int {
	seconds := int(expiresAt.Sub(now).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

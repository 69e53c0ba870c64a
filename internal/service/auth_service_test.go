package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ghost-league/internal/auth"
	"github.com/spec-kit/ghost-league/internal/config"
	"github.com/spec-kit/ghost-league/internal/domain"
	"github.com/spec-kit/ghost-league/internal/events"
	"github.com/spec-kit/ghost-league/internal/ratelimit"
	"github.com/spec-kit/ghost-league/internal/repository"
	apperrors "github.com/spec-kit/ghost-league/pkg/util"
)

type authFixture struct {
	service  *AuthService
	accounts *fakeAccountRepo
	mailer   *captureMailer
}

func newAuthFixture(t *testing.T, cfg config.Config, limiter ratelimit.Limiter) *authFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	mailer := &captureMailer{}
	service := NewAuthService(cfg, AuthDependencies{
		AccountRepo:      accounts,
		VerificationRepo: repository.NewMemoryVerificationRepository(),
		Mailer:           mailer,
		Dispatcher:       events.NewInMemoryDispatcher(),
		ResendLimiter:    limiter,
	})
	return &authFixture{service: service, accounts: accounts, mailer: mailer}
}

func requireDomainCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
	return domainErr
}

func TestRegisterReportsEveryViolation(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})

	_, err := f.service.Register(context.Background(), "ab", "not-an-email", "123")

	domainErr := requireDomainCode(t, err, "VALIDATION_FAILED")
	assert.Contains(t, domainErr.Details, "username")
	assert.Contains(t, domainErr.Details, "email")
	assert.Contains(t, domainErr.Details, "password")
	assert.Equal(t, 0, f.accounts.count(), "no account may exist after failed validation")
	assert.Equal(t, 0, f.mailer.sent())
}

func TestRegisterCreatesUnverifiedAccountAndSendsCode(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})

	result, err := f.service.Register(context.Background(), "ghostrider", "Rider@Example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "rider@example.com", result.Email)
	assert.NotEmpty(t, result.PreviewURL)
	require.Equal(t, 1, f.mailer.sent())
	assert.Len(t, f.mailer.lastCode(), 4)

	account, err := f.accounts.GetByEmail(context.Background(), "rider@example.com")
	require.NoError(t, err)
	assert.False(t, account.Verified)
	assert.Equal(t, domain.RoleUser, account.Role)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})

	_, err := f.service.Register(context.Background(), "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), "othername", "rider@example.com", "secret1")
	requireDomainCode(t, err, "CONFLICT")
	assert.Equal(t, 1, f.accounts.count())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})

	_, err := f.service.Login(context.Background(), "nobody@example.com", "whatever")
	requireDomainCode(t, err, "AUTH_FAILED")

	_, regErr := f.service.Register(context.Background(), "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, regErr)

	_, err = f.service.Login(context.Background(), "rider@example.com", "wrong-password")
	requireDomainCode(t, err, "AUTH_FAILED")
}

func TestLoginUnverifiedReissuesCodeWithoutSession(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})

	_, err := f.service.Register(context.Background(), "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)

	result, err := f.service.Login(context.Background(), "rider@example.com", "secret1")

	assert.Nil(t, result, "an unverified account must never receive a session")
	domainErr := requireDomainCode(t, err, "EMAIL_NOT_VERIFIED")
	assert.Equal(t, "rider@example.com", domainErr.Details["email"])
	assert.Equal(t, 2, f.mailer.sent(), "login on an unverified account reissues the code")
}

func TestLoginUnverifiedSkipsReissueWhenCapped(t *testing.T) {
	f := newAuthFixture(t, testConfig(), denyLimiter{retryAfter: time.Minute})

	_, err := f.service.Register(context.Background(), "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)

	_, err = f.service.Login(context.Background(), "rider@example.com", "secret1")

	requireDomainCode(t, err, "EMAIL_NOT_VERIFIED")
	assert.Equal(t, 1, f.mailer.sent(), "capped resends must not send another code")
}

func TestVerifyWrongThenRightCode(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})
	ctx := context.Background()

	_, err := f.service.Register(ctx, "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)
	code := f.mailer.lastCode()

	wrong := "0000"
	if wrong == code {
		wrong = "1111"
	}
	_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", wrong)
	requireDomainCode(t, err, "CODE_INVALID_OR_EXPIRED")

	result, err := f.service.VerifyEmailAndLogin(ctx, "rider@example.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.Account.Verified)

	account, err := f.accounts.GetByEmail(ctx, "rider@example.com")
	require.NoError(t, err)
	assert.True(t, account.Verified)
}

func TestVerifyConsumesCode(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})
	ctx := context.Background()

	_, err := f.service.Register(ctx, "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)
	code := f.mailer.lastCode()

	_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", code)
	require.NoError(t, err)

	_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", code)
	requireDomainCode(t, err, "CODE_INVALID_OR_EXPIRED")
}

func TestResendSupersedesPriorCode(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})
	ctx := context.Background()

	_, err := f.service.Register(ctx, "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)
	first := f.mailer.lastCode()

	_, err = f.service.ResendCode(ctx, "rider@example.com")
	require.NoError(t, err)
	second := f.mailer.lastCode()
	require.Equal(t, 2, f.mailer.sent())

	if first != second {
		_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", first)
		requireDomainCode(t, err, "CODE_INVALID_OR_EXPIRED")
	}

	result, err := f.service.VerifyEmailAndLogin(ctx, "rider@example.com", second)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestResendRateLimited(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})
	ctx := context.Background()

	_, err := f.service.Register(ctx, "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)

	// Swap in a denying limiter after registration has gone through.
	f.service.resendLimiter = denyLimiter{retryAfter: 30 * time.Second}

	_, err = f.service.ResendCode(ctx, "rider@example.com")
	domainErr := requireDomainCode(t, err, "RATE_LIMITED")
	assert.Equal(t, 30, domainErr.Details["retry_after_seconds"])
	assert.Equal(t, 1, f.mailer.sent())
}

func TestResendAlreadyVerified(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})
	ctx := context.Background()

	_, err := f.service.Register(ctx, "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)
	_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", f.mailer.lastCode())
	require.NoError(t, err)

	_, err = f.service.ResendCode(ctx, "rider@example.com")
	requireDomainCode(t, err, "CONFLICT")
}

func TestVerifyAttemptsExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.Verification.MaxAttempts = 2
	f := newAuthFixture(t, cfg, allowAllLimiter{})
	ctx := context.Background()

	_, err := f.service.Register(ctx, "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)
	code := f.mailer.lastCode()

	wrong := "0000"
	if wrong == code {
		wrong = "1111"
	}

	_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", wrong)
	requireDomainCode(t, err, "CODE_INVALID_OR_EXPIRED")

	_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", wrong)
	domainErr := requireDomainCode(t, err, "TOO_MANY_ATTEMPTS")
	assert.Contains(t, domainErr.Details, "retry_after_seconds")

	// The burned code stays burned even when entered correctly.
	_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", code)
	requireDomainCode(t, err, "TOO_MANY_ATTEMPTS")
}

func TestVerifyExpiredCode(t *testing.T) {
	cfg := testConfig()
	cfg.Verification.CodeTTLMinutes = -1
	f := newAuthFixture(t, cfg, allowAllLimiter{})
	ctx := context.Background()

	_, err := f.service.Register(ctx, "ghostrider", "rider@example.com", "secret1")
	require.NoError(t, err)

	_, err = f.service.VerifyEmailAndLogin(ctx, "rider@example.com", f.mailer.lastCode())
	requireDomainCode(t, err, "CODE_INVALID_OR_EXPIRED")
}

func TestLoginSuspendedStillIssuesSession(t *testing.T) {
	f := newAuthFixture(t, testConfig(), allowAllLimiter{})
	ctx := context.Background()

	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	f.accounts.seed(&domain.Account{
		Username:     "suspendedone",
		Email:        "suspended@example.com",
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Verified:     true,
		Status:       domain.AccountStatusSuspended,
		StatusReason: "conduct review",
	})

	// Status enforcement happens after login through the status endpoint;
	// the session itself is still issued.
	result, err := f.service.Login(ctx, "suspended@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, domain.AccountStatusSuspended, result.Account.Status)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "rider@example.com", NormalizeEmail("  Rider@Example.COM "))
}

package leagueclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authTestServer emulates the verification-gated auth surface with one
// in-memory account.
type authTestServer struct {
	mu       sync.Mutex
	verified bool
	code     string
	resends  int
}

func (s *authTestServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		s.code = "1234"
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, RegisterResponse{
			RequiresEmailVerification: true,
			Email:                     "rider@example.com",
		})
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		verified := s.verified
		s.mu.Unlock()
		if !verified {
			writeError(w, http.StatusForbidden, ErrorCodeEmailNotVerified, "email verification required", map[string]any{
				"email": "rider@example.com",
			})
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{
			Token: "token-1",
			User:  User{ID: "acc-1", Username: "ghostrider", Verified: true},
		})
	})
	mux.HandleFunc("/auth-verification/verify-and-login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = decodeBody(r, &body)
		s.mu.Lock()
		match := body["code"] == s.code && s.code != ""
		if match {
			s.verified = true
		}
		s.mu.Unlock()
		if !match {
			writeError(w, http.StatusBadRequest, ErrorCodeCodeInvalidOrExpired, "verification code is invalid or has expired", nil)
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{
			Token: "token-1",
			User:  User{ID: "acc-1", Username: "ghostrider", Verified: true},
		})
	})
	mux.HandleFunc("/auth-verification/resend-code", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		s.resends++
		s.code = "5678"
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, ResendCodeResponse{Sent: true})
	})
	return mux
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func newManagerFixture(t *testing.T) (*Manager, *authTestServer, *MemoryTokenStore) {
	t.Helper()
	backend := &authTestServer{}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	store := NewMemoryTokenStore()
	manager, err := NewManager(NewClient(server.URL), store)
	require.NoError(t, err)
	return manager, backend, store
}

func TestManagerRegisterVerifyFlow(t *testing.T) {
	manager, _, store := newManagerFixture(t)
	ctx := context.Background()

	require.NoError(t, manager.Register(ctx, "ghostrider", "rider@example.com", "secret1"))
	state := manager.State()
	assert.True(t, state.RequiresEmailVerification)
	assert.Equal(t, "rider@example.com", state.PendingEmail)
	assert.False(t, state.Authenticated())

	err := manager.VerifyEmail(ctx, "0000")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrorCodeCodeInvalidOrExpired, apiErr.Code)
	assert.Equal(t, apiErr, manager.State().Err)

	require.NoError(t, manager.VerifyEmail(ctx, "1234"))
	state = manager.State()
	assert.True(t, state.Authenticated())
	assert.Equal(t, "ghostrider", state.User.Username)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestManagerLoginUnverifiedSwitchesToVerification(t *testing.T) {
	manager, _, _ := newManagerFixture(t)

	err := manager.Login(context.Background(), "rider@example.com", "secret1")
	require.NoError(t, err, "the unverified branch is not a failure")

	state := manager.State()
	assert.True(t, state.RequiresEmailVerification)
	assert.Equal(t, "rider@example.com", state.PendingEmail)
	assert.Nil(t, state.Err)
}

func TestManagerLoginVerified(t *testing.T) {
	manager, backend, store := newManagerFixture(t)
	backend.verified = true

	require.NoError(t, manager.Login(context.Background(), "rider@example.com", "secret1"))
	assert.True(t, manager.State().Authenticated())

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestManagerLogoutClearsStore(t *testing.T) {
	manager, backend, store := newManagerFixture(t)
	backend.verified = true

	require.NoError(t, manager.Login(context.Background(), "rider@example.com", "secret1"))
	require.NoError(t, manager.Logout())

	assert.Equal(t, State{}, manager.State())
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestManagerRestoresPersistedToken(t *testing.T) {
	backend := &authTestServer{verified: true}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	store := NewMemoryTokenStore()
	require.NoError(t, store.Save("persisted-token"))

	manager, err := NewManager(NewClient(server.URL), store)
	require.NoError(t, err)
	assert.True(t, manager.State().Authenticated())
	assert.Equal(t, "persisted-token", manager.State().Token)
}

func TestManagerResendCooldown(t *testing.T) {
	manager, backend, _ := newManagerFixture(t)
	ctx := context.Background()

	require.NoError(t, manager.Register(ctx, "ghostrider", "rider@example.com", "secret1"))

	require.NoError(t, manager.ResendCode(ctx))
	assert.ErrorIs(t, manager.ResendCode(ctx), ErrResendCooldown)
	assert.Equal(t, 1, backend.resends)

	// The superseding code from the resend is the one that works.
	require.NoError(t, manager.VerifyEmail(ctx, "5678"))
	assert.True(t, manager.State().Authenticated())
}

func TestManagerRejectsReentrantCalls(t *testing.T) {
	manager, _, _ := newManagerFixture(t)

	// Force the loading state as if a request were in flight.
	manager.apply(EventStarted{})

	err := manager.Login(context.Background(), "rider@example.com", "secret1")
	assert.ErrorIs(t, err, ErrBusy)
}

func TestManagerVerifyWithoutPendingEmail(t *testing.T) {
	manager, _, _ := newManagerFixture(t)

	assert.Error(t, manager.VerifyEmail(context.Background(), "1234"))
}

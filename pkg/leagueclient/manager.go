package leagueclient

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	resendCooldown = 60 * time.Second
	appealCooldown = 5 * time.Hour
)

// Manager drives the auth state machine. It owns the token lifecycle end to
// end: restore on construction, persist on session issue, clear on logout.
// All methods are safe for concurrent use; a call made while another is in
// flight fails with ErrBusy.
type Manager struct {
	client *Client
	store  TokenStore

	mu           sync.Mutex
	state        State
	lastResendAt time.Time
	lastAppealAt time.Time
}

// NewManager builds a manager and restores any persisted session token.
func NewManager(client *Client, store TokenStore) (*Manager, error) {
	m := &Manager{client: client, store: store}

	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	if token != "" {
		m.state.Token = token
		client.SetBearer(token)
	}
	return m, nil
}

// State returns a snapshot of the current auth state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ClearError drops any surfaced error. Idempotent: clearing with no error
// set leaves the state unchanged.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.state = Reduce(m.state, EventErrorCleared{})
	m.mu.Unlock()
}

// Register starts a registration. On success the state moves to the
// pending-verification holding state for the submitted email.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}

	resp, err := m.client.Register(ctx, username, email, password)
	if err != nil {
		m.fail(err)
		return err
	}

	m.apply(EventRegistered{Email: resp.Email})
	return nil
}

// Login exchanges credentials for a session. The unverified branch is not
// an error: the state moves to pending verification and nil is returned.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		var requires *RequiresVerificationError
		if errors.As(err, &requires) {
			m.apply(EventVerificationRequired{Email: requires.Email})
			return nil
		}
		m.fail(err)
		return err
	}

	return m.establishSession(resp)
}

// VerifyEmail redeems the code for the pending email and establishes the
// session.
func (m *Manager) VerifyEmail(ctx context.Context, code string) error {
	m.mu.Lock()
	email := m.state.PendingEmail
	m.mu.Unlock()
	if email == "" {
		return errors.New("no pending verification")
	}

	if err := m.begin(); err != nil {
		return err
	}

	resp, err := m.client.VerifyAndLogin(ctx, email, code)
	if err != nil {
		m.fail(err)
		return err
	}

	return m.establishSession(resp)
}

// ResendCode requests a fresh verification code for the pending email,
// enforcing the local cooldown between requests.
func (m *Manager) ResendCode(ctx context.Context) error {
	m.mu.Lock()
	email := m.state.PendingEmail
	wait := resendCooldown - time.Since(m.lastResendAt)
	m.mu.Unlock()

	if email == "" {
		return errors.New("no pending verification")
	}
	if wait > 0 {
		return ErrResendCooldown
	}

	if err := m.begin(); err != nil {
		return err
	}

	if _, err := m.client.ResendCode(ctx, email); err != nil {
		m.fail(err)
		return err
	}

	m.mu.Lock()
	m.lastResendAt = time.Now()
	m.state = Reduce(m.state, EventRegistered{Email: email})
	m.mu.Unlock()
	return nil
}

// Logout clears the session locally. There is no server-side revocation;
// dropping the token is what ends the session.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.state = Reduce(m.state, EventLoggedOut{})
	m.mu.Unlock()

	m.client.SetBearer("")
	return m.store.Clear()
}

// CanSubmitAppeal reports whether the local appeal-resubmission cooldown
// has elapsed, and the remaining wait when it has not.
func (m *Manager) CanSubmitAppeal() (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastAppealAt.IsZero() {
		return true, 0
	}
	wait := appealCooldown - time.Since(m.lastAppealAt)
	if wait <= 0 {
		return true, 0
	}
	return false, wait
}

// SubmitAppeal sends an appeal submission and records the local
// resubmission timestamp.
func (m *Manager) SubmitAppeal(ctx context.Context, message string) (*Appeal, error) {
	if ok, _ := m.CanSubmitAppeal(); !ok {
		return nil, &APIError{Code: ErrorCodeRateLimited, Message: "appeal already submitted recently"}
	}

	appeal, err := m.client.SubmitAppeal(ctx, message)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.lastAppealAt = time.Now()
	m.mu.Unlock()
	return appeal, nil
}

// Client returns the underlying API client for non-auth calls.
func (m *Manager) Client() *Client { return m.client }

// begin starts a network action, rejecting re-entrant attempts.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Loading {
		return ErrBusy
	}
	m.state = Reduce(m.state, EventStarted{})
	return nil
}

func (m *Manager) apply(event AuthEvent) {
	m.mu.Lock()
	m.state = Reduce(m.state, event)
	m.mu.Unlock()
}

func (m *Manager) fail(err error) {
	m.apply(EventFailed{Err: err})
}

func (m *Manager) establishSession(resp *SessionResponse) error {
	m.apply(EventLoginSucceeded{Token: resp.Token, User: resp.User})
	m.client.SetBearer(resp.Token)
	if err := m.store.Save(resp.Token); err != nil {
		return err
	}
	return nil
}

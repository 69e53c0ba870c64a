package leagueclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// defaultTimeout is the fixed request budget; past it a call fails with a
// NetworkError rather than blocking the UI.
const defaultTimeout = 10 * time.Second

// Client is a typed client for the Ghost League platform API. Construct it
// once at startup; it owns its http.Client rather than relying on shared
// global transport state.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu     sync.RWMutex
	bearer string
}

// NewClient creates a client with the default request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetBearer installs or clears the bearer credential attached to subsequent
// requests. The Manager is the intended sole caller.
func (c *Client) SetBearer(token string) {
	c.mu.Lock()
	c.bearer = token
	c.mu.Unlock()
}

// Register starts a registration, leaving the account pending verification.
func (c *Client) Register(ctx context.Context, username, email, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session. An unverified account yields a
// *RequiresVerificationError instead of a session.
func (c *Client) Login(ctx context.Context, email, password string) (*SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyAndLogin redeems a verification code for a session.
func (c *Client) VerifyAndLogin(ctx context.Context, email, code string) (*SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/auth-verification/verify-and-login", map[string]string{
		"email": email,
		"code":  code,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendCode requests a fresh verification code, superseding any prior one.
func (c *Client) ResendCode(ctx context.Context, email string) (*ResendCodeResponse, error) {
	var out ResendCodeResponse
	err := c.do(ctx, http.MethodPost, "/auth-verification/resend-code", map[string]string{
		"email": email,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the authenticated account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Status fetches the account status used by the moderation gate.
func (c *Client) Status(ctx context.Context) (*AccountStatus, error) {
	var out AccountStatus
	if err := c.do(ctx, http.MethodGet, "/users/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAppeal fetches the caller's open appeal.
func (c *Client) GetAppeal(ctx context.Context) (*Appeal, error) {
	var out Appeal
	if err := c.do(ctx, http.MethodGet, "/users/support/appeal", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitAppeal opens or continues the caller's appeal.
func (c *Client) SubmitAppeal(ctx context.Context, message string) (*Appeal, error) {
	var out Appeal
	err := c.do(ctx, http.MethodPut, "/users/support/appeal", map[string]string{
		"message": message,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplyAppeal appends a message to the caller's appeal conversation.
func (c *Client) ReplyAppeal(ctx context.Context, appealID, message string) (*Appeal, error) {
	var out Appeal
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/support/appeal/%s/reply", appealID), map[string]string{
		"message": message,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Notifications lists the caller's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/users/notifications/%s/read", id), nil, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/users/notifications/mark-all-read", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	bearer := c.bearer
	c.mu.RUnlock()
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

package leagueclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes reported by the platform API.
const (
	ErrorCodeValidationFailed     = "VALIDATION_FAILED"
	ErrorCodeAuthFailed           = "AUTH_FAILED"
	ErrorCodeEmailNotVerified     = "EMAIL_NOT_VERIFIED"
	ErrorCodeCodeInvalidOrExpired = "CODE_INVALID_OR_EXPIRED"
	ErrorCodeTooManyAttempts      = "TOO_MANY_ATTEMPTS"
	ErrorCodeRateLimited          = "RATE_LIMITED"
)

// APIError is a server-reported failure. The message is surfaced to the
// user verbatim; rate-limit style errors carry a wait hint in Details.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RetryAfterSeconds returns the server's wait hint, or 0 when absent.
func (e *APIError) RetryAfterSeconds() int {
	if v, ok := e.Details["retry_after_seconds"].(float64); ok {
		return int(v)
	}
	return 0
}

// ServerFault reports whether the failure came from the server itself (5xx)
// rather than from the request. Callers should not re-enter data for these.
func (e *APIError) ServerFault() bool {
	return e.StatusCode >= 500
}

// RequiresVerificationError is the unverified-login branch: credentials were
// accepted but the account must verify its email first. It is a control-flow
// signal, not a failure.
type RequiresVerificationError struct {
	Email string
}

// Error implements the error interface.
func (e *RequiresVerificationError) Error() string {
	return fmt.Sprintf("email verification required for %s", e.Email)
}

// NetworkError wraps transport failures where no response was received, so
// callers can tell the user to check connectivity instead of re-entering
// data.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("no response from server: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ErrBusy is returned when an action is attempted while another request is
// already in flight. Attempts are rejected, never queued.
var ErrBusy = errors.New("another request is already in flight")

// ErrResendCooldown is returned when a code resend is attempted inside the
// local cooldown window.
var ErrResendCooldown = errors.New("resend cooldown has not elapsed")

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// parseErrorResponse maps a non-2xx response body to a typed error.
func parseErrorResponse(statusCode int, body []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		if envelope.Error.Code == ErrorCodeEmailNotVerified {
			email, _ := envelope.Error.Details["email"].(string)
			return &RequiresVerificationError{Email: email}
		}
		return &APIError{
			StatusCode: statusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			Details:    envelope.Error.Details,
		}
	}
	code := "REQUEST_FAILED"
	if statusCode >= 500 {
		code = "SERVER_ERROR"
	}
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)),
	}
}

package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse signals the pending-verification holding state.
type RegisterResponse struct {
	RequiresEmailVerification bool   `json:"requiresEmailVerification"`
	Email                     string `json:"email"`
	PreviewURL                string `json:"previewUrl,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest payload for code redemption.
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResendCodeRequest payload.
type ResendCodeRequest struct {
	Email string `json:"email"`
}

// ResendCodeResponse payload.
type ResendCodeResponse struct {
	Sent       bool   `json:"sent"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// SessionResponse carries an issued session and its subject.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

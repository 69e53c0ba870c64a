package dto

import (
	"time"

	"github.com/spec-kit/ghost-league/internal/domain"
)

// UserResponse is the public account view.
type UserResponse struct {
	ID       string             `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Role     domain.AccountRole `json:"role"`
	Verified bool               `json:"verified"`
}

// NewUserResponse maps a domain account.
func NewUserResponse(account *domain.Account) UserResponse {
	return UserResponse{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Role:     account.Role,
		Verified: account.Verified,
	}
}

// StatusResponse is the account-status view for the client gate.
type StatusResponse struct {
	Status                 domain.AccountStatus `json:"status"`
	Username               string               `json:"username"`
	Reason                 string               `json:"reason,omitempty"`
	SuspensionDate         *time.Time           `json:"suspensionDate,omitempty"`
	SuspensionDurationDays *int                 `json:"suspensionDurationDays,omitempty"`
}

// SetStatusRequest is the moderation payload for status changes.
type SetStatusRequest struct {
	Status         domain.AccountStatus `json:"status"`
	Reason         string               `json:"reason"`
	SuspensionDays *int                 `json:"suspensionDays"`
}

package events

import (
	"time"

	"github.com/spec-kit/ghost-league/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered    EventType = "account_registered"
	EventEmailVerified        EventType = "email_verified"
	EventAccountStatusChanged EventType = "account_status_changed"
	EventAppealSubmitted      EventType = "appeal_submitted"
	EventAppealReplied        EventType = "appeal_replied"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// EmailVerifiedPayload payload.
type EmailVerifiedPayload struct {
	Username string `json:"username"`
}

// AccountStatusChangedPayload payload.
type AccountStatusChangedPayload struct {
	OldStatus domain.AccountStatus `json:"old_status"`
	NewStatus domain.AccountStatus `json:"new_status"`
	Reason    string               `json:"reason,omitempty"`
	Days      *int                 `json:"days,omitempty"`
}

// AppealSubmittedPayload payload.
type AppealSubmittedPayload struct {
	AppealID    string `json:"appeal_id"`
	BodyPreview string `json:"body_preview"`
}

// AppealRepliedPayload payload.
type AppealRepliedPayload struct {
	AppealID   string                  `json:"appeal_id"`
	AuthorType domain.AppealAuthorType `json:"author_type"`
}

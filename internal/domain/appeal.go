package domain

import "time"

// AppealStatus enumerates lifecycle states for appeals.
type AppealStatus string

const (
	AppealStatusOpen     AppealStatus = "OPEN"
	AppealStatusResolved AppealStatus = "RESOLVED"
)

// AppealAuthorType indicates who authored an appeal message.
type AppealAuthorType string

const (
	AppealAuthorUser      AppealAuthorType = "USER"
	AppealAuthorModerator AppealAuthorType = "MODERATOR"
)

// Appeal is a suspended member's request for moderation review, threaded as
// a conversation. At most one open appeal exists per account.
type Appeal struct {
	ID        string
	AccountID string
	Status    AppealStatus
	Messages  []AppealMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppealMessage is one entry in an appeal conversation.
type AppealMessage struct {
	ID         string
	AppealID   string
	AuthorType AppealAuthorType
	AuthorID   *string
	Body       string
	CreatedAt  time.Time
}

// LastUserMessageAt returns the creation time of the most recent
// user-authored message, or the zero time when none exists.
func (a *Appeal) LastUserMessageAt() time.Time {
	var last time.Time
	for _, msg := range a.Messages {
		if msg.AuthorType == AppealAuthorUser && msg.CreatedAt.After(last) {
			last = msg.CreatedAt
		}
	}
	return last
}

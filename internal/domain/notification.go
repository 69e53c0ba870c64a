package domain

import "time"

// NotificationKind enumerates supported notification categories.
type NotificationKind string

const (
	NotificationAccountVerified NotificationKind = "ACCOUNT_VERIFIED"
	NotificationStatusChanged   NotificationKind = "STATUS_CHANGED"
	NotificationAppealReply     NotificationKind = "APPEAL_REPLY"
)

// Notification is an in-app message delivered to a single account.
type Notification struct {
	ID        string
	AccountID string
	Kind      NotificationKind
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}

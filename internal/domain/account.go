package domain

import "time"

// AccountRole enumerates platform roles.
type AccountRole string

const (
	RoleUser    AccountRole = "USER"
	RoleAdmin   AccountRole = "ADMIN"
	RoleOwner   AccountRole = "OWNER"
	RoleCreator AccountRole = "CREATOR"
)

// IsModerator reports whether the role may perform moderation actions.
func (r AccountRole) IsModerator() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleCreator:
		return true
	}
	return false
}

// AccountStatus represents lifecycle states for an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
	AccountStatusBanned    AccountStatus = "BANNED"
)

// Account is the domain model for platform members.
type Account struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Role           AccountRole
	Verified       bool
	Status         AccountStatus
	StatusReason   string
	SuspendedAt    *time.Time
	SuspensionDays *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SuspensionElapsed reports whether a suspension window has fully passed.
// Suspensions without a duration are indefinite.
func (a *Account) SuspensionElapsed(now time.Time) bool {
	if a.Status != AccountStatusSuspended || a.SuspendedAt == nil || a.SuspensionDays == nil {
		return false
	}
	end := a.SuspendedAt.Add(time.Duration(*a.SuspensionDays) * 24 * time.Hour)
	return now.After(end)
}

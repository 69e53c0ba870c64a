package domain

import "time"

// PendingVerification is the short-lived code record gating an unverified
// account from receiving a session. One outstanding record per email; a
// reissue replaces any prior record, invalidating its code.
type PendingVerification struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	Attempts  int
	CreatedAt time.Time
}

// Expired reports whether the code is past its window.
func (p *PendingVerification) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

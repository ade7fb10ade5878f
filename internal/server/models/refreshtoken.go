package models

import "time"

// RefreshToken is a single-use credential. It is deleted when it is
// exchanged for a new pair or revoked at sign-out.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

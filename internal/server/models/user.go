// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an authenticated identity. PasswordHash is an encoded argon2id hash.
type User struct {
	ID                string
	Email             string
	PasswordHash      string
	ConfirmationToken string
	RedirectTarget    string
	ConfirmedAt       *time.Time
	CreatedAt         time.Time
}

// Confirmed reports whether the user followed the confirmation link.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

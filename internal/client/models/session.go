package models

import "time"

// Session is the persisted sign-in state that lets the CLI resume without
// asking for the password again.
type Session struct {
	Email        string
	RefreshToken string
	UpdatedAt    time.Time
}

type Identity struct {
	UserID string
	Email  string
	School string
}

type CategoryInfo struct {
	ID    string
	Label string
}

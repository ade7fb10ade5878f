package models

import "time"

// Profile stores the school an identity belongs to. Its ID equals the user ID.
type Profile struct {
	ID         string
	SchoolName string
	CreatedAt  time.Time
}

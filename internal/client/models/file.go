// Package models defines client-side data models used by the StudyShare CLI.
package models

import (
	"time"

	"github.com/dmitrijs2005/studyshare/internal/category"
)

// File is one file card as listed by the server.
type File struct {
	ID         string
	Name       string
	Path       string
	ClassCode  string
	UserID     string
	SchoolName string
	PublicURL  string
	Category   category.Category
	Rating     *float64
	CreatedAt  time.Time
}

// Scope narrows a listing. The server always adds the caller's school.
// Empty fields are not applied.
type Scope struct {
	Category          category.Category
	NameContains      string
	ClassCodeContains string
}

// Upload is a file read from disk plus the metadata the user typed in.
type Upload struct {
	Content     []byte
	FileName    string
	ClassCode   string
	Category    category.Category
	DisplayName string
}

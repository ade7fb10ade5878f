package models

import (
	"time"

	"github.com/dmitrijs2005/studyshare/internal/category"
)

type UploadStatus string

const (
	// UploadPending marks a row that reserves a storage path while the
	// object write is in flight. Pending rows are never listed.
	UploadPending   UploadStatus = "pending"
	UploadCompleted UploadStatus = "completed"
)

// File is the metadata row of an uploaded study file. SchoolName is copied
// from the uploader's profile at upload time.
type File struct {
	ID           string
	Name         string
	Path         string
	ClassCode    string
	UserID       string
	SchoolName   string
	PublicURL    string
	Category     category.Category
	Rating       *float64
	UploadStatus UploadStatus
	CreatedAt    time.Time
}

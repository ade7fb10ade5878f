// Package files persists study-file metadata and builds the listing query.
package files

import (
	"context"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/server/models"
)

type Repository interface {
	// Reserve inserts a pending row claiming file.Path. A taken path yields
	// common.ErrPathConflict.
	Reserve(ctx context.Context, file *models.File) (*models.File, error)
	// Complete stores the public URL and flips a pending row to completed,
	// returning the full committed record.
	Complete(ctx context.Context, id, publicURL string) (*models.File, error)
	Delete(ctx context.Context, id string) error
	// Search returns completed files matching scope, newest first.
	Search(ctx context.Context, scope Scope) ([]*models.File, error)
	// ListStalePending returns pending rows created before cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]*models.File, error)
}

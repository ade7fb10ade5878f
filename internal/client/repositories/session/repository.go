// Package session persists the CLI sign-in state in the local SQLite
// database. There is at most one stored session.
package session

import (
	"context"

	"github.com/dmitrijs2005/studyshare/internal/client/models"
)

type Repository interface {
	// Load returns the stored session, or nil when there is none.
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}

// Package profiles persists the identity → school mapping.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/studyshare/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the identity has no profile.
	Get(ctx context.Context, id string) (*models.Profile, error)
	// CreateIfAbsent inserts a profile unless one already exists for id.
	CreateIfAbsent(ctx context.Context, id, school string) error
	// Upsert inserts a profile or replaces the school of an existing one.
	Upsert(ctx context.Context, id, school string) error
}

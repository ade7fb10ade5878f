// Package refreshtokens declares the repository contract for refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/server/models"
)

type Repository interface {
	// Create stores a new refresh token for userID expiring at now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	// Consume deletes the token and returns it, expired or not. Of two
	// concurrent calls for the same token only one gets it; the other sees
	// common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)
	// Revoke deletes the token only if userID owns it, and reports whether
	// a row was removed.
	Revoke(ctx context.Context, userID, token string) (bool, error)
}

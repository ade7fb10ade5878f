package users

import (
	"context"

	"github.com/dmitrijs2005/studyshare/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in ID and CreatedAt.
	// A duplicate email yields common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Confirm marks the owner of token as confirmed and clears the token.
	Confirm(ctx context.Context, token string) (*models.User, error)
}

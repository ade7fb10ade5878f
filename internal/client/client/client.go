package client

import (
	"context"

	"github.com/dmitrijs2005/studyshare/internal/client/models"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email, password, school string) (confirmationRequired bool, err error)
	SignIn(ctx context.Context, email, password string) error
	// Resume swaps a stored refresh token for a fresh token pair.
	Resume(ctx context.Context, refreshToken string) error
	SignOut(ctx context.Context) error
	RefreshToken() string
	WhoAmI(ctx context.Context) (*models.Identity, error)

	Categories(ctx context.Context) ([]models.CategoryInfo, error)
	ListFiles(ctx context.Context, scope models.Scope) ([]*models.File, error)
	UploadFile(ctx context.Context, u models.Upload) (*models.File, error)
}

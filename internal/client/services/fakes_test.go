package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/studyshare/internal/client/models"
	"github.com/dmitrijs2005/studyshare/internal/client/repositories/session"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupSessions(t *testing.T) (*sql.DB, session.Repository) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE session (
  id            INTEGER PRIMARY KEY CHECK (id = 1),
  email         TEXT NOT NULL,
  refresh_token TEXT NOT NULL,
  updated_at    INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db, session.NewSQLiteRepository(db)
}

// ---- fake client ----

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	CloseErr error
	PingErr  error

	SignUpPending bool
	SignUpErr     error

	SignInErr    error
	SignInToken  string
	ResumeErr    error
	ResumeToken  string
	SignOutErr   error
	CurrentToken string

	Identity    *models.Identity
	IdentityErr error
	// RotateOnWhoAmI simulates a refresh performed by the interceptor.
	RotateOnWhoAmI string

	CategoriesRet []models.CategoryInfo

	ListRet []*models.File
	ListErr error

	UploadRet *models.File
	UploadErr error

	// captured
	LastSignUp   [3]string
	LastSignIn   [2]string
	LastResume   string
	SignOutCalls int
	LastScope    models.Scope
	LastUpload   *models.Upload
	UploadCalls  int
}

func (f *fakeClient) Close() error                  { return f.CloseErr }
func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) SignUp(ctx context.Context, email, password, school string) (bool, error) {
	f.LastSignUp = [3]string{email, password, school}
	return f.SignUpPending, f.SignUpErr
}

func (f *fakeClient) SignIn(ctx context.Context, email, password string) error {
	f.LastSignIn = [2]string{email, password}
	if f.SignInErr == nil {
		f.CurrentToken = f.SignInToken
	}
	return f.SignInErr
}

func (f *fakeClient) Resume(ctx context.Context, refreshToken string) error {
	f.LastResume = refreshToken
	if f.ResumeErr == nil {
		f.CurrentToken = f.ResumeToken
	}
	return f.ResumeErr
}

func (f *fakeClient) SignOut(ctx context.Context) error {
	f.SignOutCalls++
	f.CurrentToken = ""
	return f.SignOutErr
}

func (f *fakeClient) RefreshToken() string { return f.CurrentToken }

func (f *fakeClient) WhoAmI(ctx context.Context) (*models.Identity, error) {
	if f.RotateOnWhoAmI != "" {
		f.CurrentToken = f.RotateOnWhoAmI
	}
	return f.Identity, f.IdentityErr
}

func (f *fakeClient) Categories(ctx context.Context) ([]models.CategoryInfo, error) {
	return f.CategoriesRet, nil
}

func (f *fakeClient) ListFiles(ctx context.Context, scope models.Scope) ([]*models.File, error) {
	f.LastScope = scope
	return f.ListRet, f.ListErr
}

func (f *fakeClient) UploadFile(ctx context.Context, u models.Upload) (*models.File, error) {
	f.UploadCalls++
	f.LastUpload = &u
	return f.UploadRet, f.UploadErr
}

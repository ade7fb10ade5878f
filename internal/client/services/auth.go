// Package services contains application services for the StudyShare client.
// This file defines the authentication service: register, sign in, resume a
// persisted session, sign out.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studyshare/internal/client/client"
	"github.com/dmitrijs2005/studyshare/internal/client/models"
	"github.com/dmitrijs2005/studyshare/internal/client/repositories/session"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create an account; reports whether the email must be confirmed.
//   - Login: authenticate and persist the session locally.
//   - Resume: restore the persisted session, if any.
//   - Logout: revoke the session on the server and forget it locally.
//   - WhoAmI: the signed-in identity with its school.
type AuthService interface {
	Register(ctx context.Context, email string, password []byte, school string) (bool, error)
	Login(ctx context.Context, email string, password []byte) error
	Resume(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*models.Identity, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client   client.Client
	sessions session.Repository
}

func NewAuthService(c client.Client, sessions session.Repository) AuthService {
	return &authService{client: c, sessions: sessions}
}

func (a *authService) Register(ctx context.Context, email string, password []byte, school string) (bool, error) {
	return a.client.SignUp(ctx, email, string(password), school)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	if err := a.client.SignIn(ctx, email, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if err := a.persist(ctx, email); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// Resume exchanges the stored refresh token for a new pair and returns the
// email of the restored session. A session the server no longer accepts is
// dropped and ErrNoSession returned.
func (a *authService) Resume(ctx context.Context) (string, error) {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		return "", err
	}
	if s == nil || s.RefreshToken == "" {
		return "", client.ErrNoSession
	}

	if err := a.client.Resume(ctx, s.RefreshToken); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.sessions.Clear(ctx)
			return "", client.ErrNoSession
		}
		return "", err
	}

	if err := a.persist(ctx, s.Email); err != nil {
		return "", fmt.Errorf("session saving error: %w", err)
	}
	return s.Email, nil
}

// Logout always clears the local session; a failed server call is still
// reported.
func (a *authService) Logout(ctx context.Context) error {
	remoteErr := a.client.SignOut(ctx)
	if err := a.sessions.Clear(ctx); err != nil {
		return errors.Join(remoteErr, err)
	}
	return remoteErr
}

func (a *authService) WhoAmI(ctx context.Context) (*models.Identity, error) {
	id, err := a.client.WhoAmI(ctx)
	if err != nil {
		return nil, err
	}
	// the refresh token may have rotated under the call
	_ = a.persistToken(ctx)
	return id, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

func (a *authService) persist(ctx context.Context, email string) error {
	return a.sessions.Save(ctx, &models.Session{Email: email, RefreshToken: a.client.RefreshToken()})
}

func (a *authService) persistToken(ctx context.Context) error {
	s, err := a.sessions.Load(ctx)
	if err != nil || s == nil {
		return err
	}
	token := a.client.RefreshToken()
	if token == "" || token == s.RefreshToken {
		return nil
	}
	return a.persist(ctx, s.Email)
}

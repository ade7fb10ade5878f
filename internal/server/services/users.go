package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/cryptox"
	"github.com/dmitrijs2005/studyshare/internal/dbx"
	"github.com/dmitrijs2005/studyshare/internal/logging"
	"github.com/dmitrijs2005/studyshare/internal/server/auth"
	"github.com/dmitrijs2005/studyshare/internal/server/config"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const minPasswordLen = 8

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SignUpRequest carries the registration form.
type SignUpRequest struct {
	Email          string
	Password       string
	School         string
	RedirectTarget string
}

// Identity is the caller as seen by the dashboard.
type Identity struct {
	UserID string
	Email  string
	School string
}

// UserService handles registration, confirmation, sign-in, token rotation
// and sign-out.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	schools                      SchoolResolver
	mailer                       Mailer
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	requireConfirmation          bool
	confirmationBaseURL          string
	defaultSchool                string
	hashParams                   cryptox.Params
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, schools SchoolResolver, mailer Mailer,
	cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		schools:                      schools,
		mailer:                       mailer,
		logger:                       logger.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		requireConfirmation:          cfg.RequireEmailConfirmation,
		confirmationBaseURL:          cfg.ConfirmationBaseURL,
		defaultSchool:                cfg.DefaultSchool,
		hashParams:                   cryptox.DefaultParams,
	}
}

// SignUp creates the user and its profile in one transaction. When e-mail
// confirmation is required a confirmation link is sent and the account
// stays unconfirmed until it is followed.
func (s *UserService) SignUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}

	school := strings.TrimSpace(req.School)
	if school == "" {
		school = s.defaultSchool
	}
	// the school is the first segment of every storage path
	if !isPathElement(school) {
		return nil, fmt.Errorf("%w: school name %q must be a single path element", common.ErrValidation, school)
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   cryptox.HashPassword([]byte(req.Password), s.hashParams),
		RedirectTarget: strings.TrimSpace(req.RedirectTarget),
	}
	if s.requireConfirmation {
		user.ConfirmationToken = uuid.NewString()
	} else {
		now := time.Now()
		user.ConfirmedAt = &now
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return s.repomanager.Profiles(tx).Upsert(ctx, user.ID, school)
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if s.requireConfirmation {
		link := s.confirmationLink(user.ConfirmationToken)
		if err := s.mailer.SendConfirmation(ctx, user.Email, link); err != nil {
			s.logger.Error(ctx, "confirmation mail not sent", "user_id", user.ID, "error", err)
		}
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "school", school)
	return user, nil
}

// Confirm marks the owner of token as confirmed and returns the stored
// redirect target. Unknown or used tokens yield common.ErrInvalidToken.
func (s *UserService) Confirm(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).Confirm(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("error confirming user: %w", err)
	}

	s.logger.Info(ctx, "email confirmed", "user_id", user.ID)
	return user.RedirectTarget, nil
}

// SignIn verifies credentials and returns a new TokenPair.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword([]byte(password), user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	if s.requireConfirmation && !user.Confirmed() {
		return nil, common.ErrEmailNotConfirmed
	}

	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken exchanges a refresh token for a fresh TokenPair. The old
// token is consumed in the same transaction that stores the new one, so a
// token can be exchanged once. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expired(time.Now()) {
			return common.ErrRefreshTokenExpired
		}

		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// SignOut revokes refreshToken. Revoking an unknown token succeeds; a
// token owned by somebody else is refused.
func (s *UserService) SignOut(ctx context.Context, userID, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)

	revoked, err := repo.Revoke(ctx, userID, refreshToken)
	if err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	if !revoked {
		_, err := repo.Find(ctx, refreshToken)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("error searching refresh token: %w", err)
		default:
			return common.ErrorUnauthorized
		}
	}

	s.logger.Info(ctx, "signed out", "user_id", userID)
	return nil
}

// Identity returns the caller's account and resolved school.
func (s *UserService) Identity(ctx context.Context, userID string) (*Identity, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	school, err := s.schools.ResolveSchool(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Identity{UserID: user.ID, Email: user.Email, School: school}, nil
}

// --- helpers below ---

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: %q is not an e-mail address", common.ErrValidation, email)
	}
	return email, nil
}

func (s *UserService) confirmationLink(token string) string {
	return strings.TrimRight(s.confirmationBaseURL, "/") + "/auth/confirm?token=" + url.QueryEscape(token)
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

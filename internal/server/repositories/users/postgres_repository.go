package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/dbx"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, password_hash, confirmation_token, redirect_target, confirmed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, nullString(user.ConfirmationToken), user.RedirectTarget, user.ConfirmedAt,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err, "users_email_key") {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, confirmation_token, redirect_target, confirmed_at, created_at
		 FROM users
		 WHERE email = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, confirmation_token, redirect_target, confirmed_at, created_at
		 FROM users
		 WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Confirm(ctx context.Context, token string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET confirmed_at = now(), confirmation_token = NULL
		 WHERE confirmation_token = $1
		 RETURNING id, email, password_hash, confirmation_token, redirect_target, confirmed_at, created_at`

	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	var (
		u           models.User
		token       sql.NullString
		confirmedAt sql.NullTime
	)

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &token, &u.RedirectTarget, &confirmedAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.ConfirmationToken = token.String
	if confirmedAt.Valid {
		t := confirmedAt.Time
		u.ConfirmedAt = &t
	}

	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

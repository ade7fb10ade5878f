package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, token, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`

	return scanToken(r.db.QueryRowContext(ctx, query, token), token)
}

func (r *PostgresRepository) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE token = $1
		RETURNING id, user_id, expires_at, created_at
	`

	return scanToken(r.db.QueryRowContext(ctx, query, token), token)
}

func (r *PostgresRepository) Revoke(ctx context.Context, userID, token string) (bool, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE token = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, token, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func scanToken(row *sql.Row, token string) (*models.RefreshToken, error) {
	rt := &models.RefreshToken{Token: token}
	if err := row.Scan(&rt.ID, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

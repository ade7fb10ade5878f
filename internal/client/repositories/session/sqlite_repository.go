package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/client/models"
	"github.com/dmitrijs2005/studyshare/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Session, error) {
	var (
		s       models.Session
		updated int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT email, refresh_token, updated_at FROM session WHERE id = 1`).
		Scan(&s.Email, &s.RefreshToken, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.UpdatedAt = time.Unix(updated, 0).UTC()
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *models.Session) error {
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, email, refresh_token, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at
	`, s.Email, s.RefreshToken, updated.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

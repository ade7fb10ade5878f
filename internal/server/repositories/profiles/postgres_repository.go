package profiles

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

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT id, school_name, created_at FROM profiles WHERE id = $1`

	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.SchoolName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, id, school string) error {
	query :=
		`INSERT INTO profiles (id, school_name)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, id, school); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, id, school string) error {
	query :=
		`INSERT INTO profiles (id, school_name)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET school_name = EXCLUDED.school_name`

	if _, err := r.db.ExecContext(ctx, query, id, school); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

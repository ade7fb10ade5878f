package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/category"
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) Reserve(ctx context.Context, file *models.File) (*models.File, error) {
	query :=
		`INSERT INTO files (name, path, class_code, user_id, school_name, course_type, upload_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		file.Name, file.Path, file.ClassCode, file.UserID, file.SchoolName, string(file.Category), string(models.UploadPending),
	).Scan(&file.ID, &file.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err, "files_path_key") {
			return nil, common.ErrPathConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	file.UploadStatus = models.UploadPending
	return file, nil
}

func (r *PostgresRepository) Complete(ctx context.Context, id, publicURL string) (*models.File, error) {
	query :=
		`UPDATE files
		 SET public_url = $2, upload_status = 'completed'
		 WHERE id = $1 AND upload_status = 'pending'
		 RETURNING ` + fileColumns

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id, publicURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Search(ctx context.Context, scope Scope) ([]*models.File, error) {
	query, args := BuildSearchQuery(scope)
	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE upload_status = 'pending' AND created_at < $1`
	return r.query(ctx, query, cutoff)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func scanFile(row rowScanner) (*models.File, error) {
	var (
		f            models.File
		courseType   string
		uploadStatus string
		rating       sql.NullFloat64
	)

	err := row.Scan(&f.ID, &f.Name, &f.Path, &f.ClassCode, &f.UserID, &f.SchoolName,
		&f.PublicURL, &courseType, &rating, &uploadStatus, &f.CreatedAt)
	if err != nil {
		return nil, err
	}

	f.Category = category.Category(courseType)
	f.UploadStatus = models.UploadStatus(uploadStatus)
	if rating.Valid {
		v := rating.Float64
		f.Rating = &v
	}

	return &f, nil
}

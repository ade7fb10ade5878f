package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "password_hash", "confirmation_token", "redirect_target", "confirmed_at", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*confirmation_token,\s*redirect_target,\s*confirmed_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(insertQ).
		WithArgs("alice@stateu.edu", "$argon2id$hash", sql.NullString{String: "tok", Valid: true}, "https://app/after", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", created))

	u := &models.User{Email: "alice@stateu.edu", PasswordHash: "$argon2id$hash", ConfirmationToken: "tok", RedirectTarget: "https://app/after"}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@stateu.edu"})
	require.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@stateu.edu"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*email,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	confirmed := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		wantErr error
		check   func(t *testing.T, u *models.User)
	}{
		{
			name: "confirmed user",
			rows: sqlmock.NewRows(userColumns).AddRow("u-1", "alice@stateu.edu", "h", nil, "", confirmed, confirmed),
			check: func(t *testing.T, u *models.User) {
				assert.True(t, u.Confirmed())
				assert.Empty(t, u.ConfirmationToken)
			},
		},
		{
			name: "pending user",
			rows: sqlmock.NewRows(userColumns).AddRow("u-1", "alice@stateu.edu", "h", "tok", "/dash", nil, confirmed),
			check: func(t *testing.T, u *models.User) {
				assert.False(t, u.Confirmed())
				assert.Equal(t, "tok", u.ConfirmationToken)
				assert.Equal(t, "/dash", u.RedirectTarget)
			},
		},
		{name: "not found", err: sql.ErrNoRows, wantErr: common.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectQuery(q).WithArgs("alice@stateu.edu")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			u, err := repo.GetByEmail(context.Background(), "alice@stateu.edu")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, u)
		})
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("u-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+confirmed_at\s*=\s*now\(\),\s*confirmation_token\s*=\s*NULL\s+WHERE\s+confirmation_token\s*=\s*\$1\s+RETURNING`

	t.Run("success", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		now := time.Now()
		mock.ExpectQuery(q).WithArgs("tok").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "alice@stateu.edu", "h", nil, "https://app", now, now))

		u, err := repo.Confirm(context.Background(), "tok")
		require.NoError(t, err)
		assert.True(t, u.Confirmed())
		assert.Equal(t, "https://app", u.RedirectTarget)
	})

	t.Run("unknown token", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("nope").WillReturnError(sql.ErrNoRows)

		_, err := repo.Confirm(context.Background(), "nope")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

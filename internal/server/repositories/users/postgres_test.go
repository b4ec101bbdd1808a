package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at$`
	selectQuery = `(?s)^SELECT\s+id,\s*username,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+`
	updateQuery = `(?s)^UPDATE\s+users\s+SET\s+username\s*=\s*\$2,\s*email\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+`
)

var userColumns = []string{"id", "username", "email", "password_hash", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "a@x.com", "$argon2id$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))

	got, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "a@x.com", PasswordHash: "$argon2id$hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{constraint: "users_username_key", field: "username"},
		{constraint: "users_email_key", field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(insertQuery).
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "a@x.com", PasswordHash: "h"})

			var ce *common.ConflictError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCreate_OtherPgErrorIsWrapped(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	pgErr := &pgconn.PgError{Code: pgerrcode.NotNullViolation, ConstraintName: "users_email_key"}
	mock.ExpectQuery(insertQuery).WillReturnError(pgErr)

	_, err := repo.Create(context.Background(), &models.User{})
	require.Error(t, err)

	var ce *common.ConflictError
	assert.False(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, pgErr)
	assert.Regexp(t, regexp.MustCompile(`^db error: `), err.Error())
}

func TestGetters(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	want := &models.User{ID: 7, UserName: "alice", Email: "a@x.com", PasswordHash: "h", CreatedAt: now}

	tests := []struct {
		name  string
		where string
		arg   any
		call  func(r *PostgresRepository) (*models.User, error)
	}{
		{
			name: "by id", where: `id\s*=\s*\$1$`, arg: int64(7),
			call: func(r *PostgresRepository) (*models.User, error) { return r.GetByID(context.Background(), 7) },
		},
		{
			name: "by email", where: `email\s*=\s*\$1$`, arg: "a@x.com",
			call: func(r *PostgresRepository) (*models.User, error) {
				return r.GetByEmail(context.Background(), "a@x.com")
			},
		},
		{
			name: "by username", where: `username\s*=\s*\$1$`, arg: "alice",
			call: func(r *PostgresRepository) (*models.User, error) {
				return r.GetByUserName(context.Background(), "alice")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" found", func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(selectQuery + tt.where).
				WithArgs(tt.arg).
				WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(7), "alice", "a@x.com", "h", now))

			got, err := tt.call(repo)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})

		t.Run(tt.name+" not found", func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(selectQuery + tt.where).WithArgs(tt.arg).WillReturnError(sql.ErrNoRows)

			_, err := tt.call(repo)
			assert.ErrorIs(t, err, common.ErrorNotFound)
		})

		t.Run(tt.name+" db error", func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(selectQuery + tt.where).WithArgs(tt.arg).WillReturnError(errors.New("db down"))

			_, err := tt.call(repo)
			require.Error(t, err)
			assert.Regexp(t, `db error: .*db down`, err.Error())
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(updateQuery).
			WithArgs(int64(7), "bob", "b@x.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(7), "bob", "b@x.com", "h", now))

		got, err := repo.UpdateProfile(context.Background(), 7, "bob", "b@x.com")
		require.NoError(t, err)
		assert.Equal(t, "bob", got.UserName)
		assert.Equal(t, "b@x.com", got.Email)
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(updateQuery).WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateProfile(context.Background(), 7, "bob", "b@x.com")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(updateQuery).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

		_, err := repo.UpdateProfile(context.Background(), 7, "bob", "b@x.com")
		var ce *common.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "email", ce.Field)
	})
}

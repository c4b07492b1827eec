package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	insertUserQ = `(?s)^INSERT\s+INTO\s+users\s*\(name,\s*email,\s*password,\s*photo,\s*role,\s*verified,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8\)\s*RETURNING\s+id$`
	byIDQ       = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password,\s*photo,\s*role,\s*verified,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	byEmailQ    = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	testUserID  = "6f1c1f4e-5d7b-4a38-9b8e-0a4b8f7f2d11"
)

var userColumns = []string{"id", "name", "email", "password", "photo", "role", "verified", "created_at", "updated_at"}

func sampleUser(now time.Time) *models.User {
	return &models.User{
		Name: "Alice", Email: "alice@example.com", Password: "hash", Photo: "p.png",
		Role: common.RoleUser, Verified: true, CreatedAt: now, UpdatedAt: now,
	}
}

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(insertUserQ).
		WithArgs("Alice", "alice@example.com", "hash", "p.png", common.RoleUser, true, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testUserID))

	got, err := repo.Create(context.Background(), sampleUser(now))
	require.NoError(t, err)
	assert.Equal(t, testUserID, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertUserQ).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.Create(context.Background(), sampleUser(now))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestPostgresCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertUserQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), sampleUser(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestPostgresGetByID(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(byIDQ).WithArgs(testUserID).WillReturnRows(
			sqlmock.NewRows(userColumns).AddRow(testUserID, "Alice", "alice@example.com", "hash", "", "user", true, now, now))

		got, err := repo.GetByID(context.Background(), testUserID)
		require.NoError(t, err)
		assert.Equal(t, testUserID, got.ID)
		assert.True(t, got.Verified)
		assert.Equal(t, now, got.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(byIDQ).WithArgs(testUserID).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), testUserID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("invalid id skips the query", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		_, err := repo.GetByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, common.ErrorInvalidID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error is not not-found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(byIDQ).WithArgs(testUserID).WillReturnError(errors.New("conn reset"))

		_, err := repo.GetByID(context.Background(), testUserID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestPostgresGetByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(byEmailQ).WithArgs("alice@example.com").WillReturnRows(
		sqlmock.NewRows(userColumns).AddRow(testUserID, "Alice", "alice@example.com", "hash", "", "user", false, now, now))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.Password)
	assert.False(t, got.Verified)

	mock.ExpectQuery(byEmailQ).WithArgs("bob@example.com").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByEmail(context.Background(), "bob@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

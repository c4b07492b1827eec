package posts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

const (
	authorID = "6f1c1f4e-5d7b-4a38-9b8e-0a4b8f7f2d11"
	postID   = "0b6c8a52-1c0d-4f3e-a1b2-7c9d0e1f2a3b"
)

var (
	postCols   = []string{"id", "title", "content", "category", "image", "user_id", "created_at", "updated_at"}
	joinedCols = append(append([]string{}, postCols...),
		"u_id", "name", "email", "photo", "role", "verified", "u_created_at", "u_updated_at")
	ts = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresListByAuthor(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*title,.*FROM\s+posts\s+WHERE\s+\(position\(lower\(\$1\)\s+in\s+lower\(title\)\)\s*>\s*0\s+OR\s+position\(lower\(\$1\)\s+in\s+lower\(content\)\)\s*>\s*0\)\s+AND\s+user_id\s*=\s*\$2\s+ORDER\s+BY\s+updated_at\s+DESC\s+LIMIT\s+\$3\s+OFFSET\s+\$4$`

	mock.ExpectQuery(q).
		WithArgs("go", authorID, 5, 10).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow(postID, "Go tips", "body", "dev", "", authorID, ts, ts).
			AddRow("0b6c8a52-1c0d-4f3e-a1b2-7c9d0e1f2a3c", "More go", "x", "dev", "img", authorID, ts, ts))

	got, err := repo.ListByAuthor(context.Background(), authorID, models.PostQuery{Limit: 5, Page: 3, Search: "go"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Go tips", got[0].Title)
	assert.Equal(t, authorID, got[1].UserID)
	assert.Equal(t, "img", got[1].Image)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByAuthor_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	_, err := repo.ListByAuthor(context.Background(), "nope", models.PostQuery{Limit: 1, Page: 1})
	assert.ErrorIs(t, err, common.ErrorInvalidID)

	mock.ExpectQuery(`FROM\s+posts`).WillReturnError(errors.New("db down"))
	_, err = repo.ListByAuthor(context.Background(), authorID, models.PostQuery{Limit: 1, Page: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestPostgresGetByAuthor(t *testing.T) {
	q := `(?s)^SELECT\s+id,.*FROM\s+posts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(postID, authorID).WillReturnRows(
			sqlmock.NewRows(postCols).AddRow(postID, "t", "c", "cat", "", authorID, ts, ts))

		got, err := repo.GetByAuthor(context.Background(), authorID, postID)
		require.NoError(t, err)
		assert.Equal(t, postID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(postID, authorID).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByAuthor(context.Background(), authorID, postID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("invalid post id", func(t *testing.T) {
		repo, _ := newRepoWithMock(t)
		_, err := repo.GetByAuthor(context.Background(), authorID, "123")
		assert.ErrorIs(t, err, common.ErrorInvalidID)
	})
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+posts\s*\(title,\s*content,\s*category,\s*image,\s*user_id,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id$`
	mock.ExpectQuery(q).
		WithArgs("t", "c", "cat", "", authorID, ts, ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(postID))

	got, err := repo.Create(context.Background(), &models.Post{
		Title: "t", Content: "c", Category: "cat", UserID: authorID, CreatedAt: ts, UpdatedAt: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, postID, got.ID)
}

func TestPostgresUpdate(t *testing.T) {
	q := `(?s)^UPDATE\s+posts\s+SET\s+title\s*=\s*COALESCE\(\$3,\s*title\),\s*content\s*=\s*COALESCE\(\$4,\s*content\),\s*category\s*=\s*COALESCE\(\$5,\s*category\),\s*image\s*=\s*COALESCE\(\$6,\s*image\),\s*updated_at\s*=\s*\$7\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\s+id,`
	later := ts.Add(time.Hour)
	title := "new"

	t.Run("updated", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs(postID, authorID, "new", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), later).
			WillReturnRows(sqlmock.NewRows(postCols).AddRow(postID, "new", "c", "cat", "", authorID, ts, later))

		got, err := repo.Update(context.Background(), authorID, postID, models.PostPatch{Title: &title}, later)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Title)
		assert.Equal(t, later, got.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(context.Background(), authorID, postID, models.PostPatch{Title: &title}, later)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestPostgresDelete(t *testing.T) {
	q := `(?s)^DELETE\s+FROM\s+posts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`

	t.Run("deleted", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs(postID, authorID).WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Delete(context.Background(), authorID, postID))
	})

	t.Run("nothing deleted", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs(postID, authorID).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(context.Background(), authorID, postID), common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(errors.New("boom"))
		err := repo.Delete(context.Background(), authorID, postID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestPostgresListAndGet_JoinAuthor(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	listQ := `(?s)^SELECT\s+p\.id,.*u\.name,.*FROM\s+posts\s+p\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*p\.user_id\s+WHERE.*ORDER\s+BY\s+p\.updated_at\s+DESC\s+LIMIT\s+\$2\s+OFFSET\s+\$3$`
	mock.ExpectQuery(listQ).
		WithArgs("", 10, 0).
		WillReturnRows(sqlmock.NewRows(joinedCols).
			AddRow(postID, "t", "c", "cat", "", authorID, ts, ts, authorID, "Alice", "alice@example.com", "", "user", true, ts, ts))

	list, err := repo.List(context.Background(), models.PostQuery{Limit: 10, Page: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Author.Name)
	assert.Equal(t, authorID, list[0].Author.ID)

	getQ := `(?s)^SELECT\s+p\.id,.*FROM\s+posts\s+p\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*p\.user_id\s+WHERE\s+p\.id\s*=\s*\$1$`
	mock.ExpectQuery(getQ).WithArgs(postID).WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), postID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Get(context.Background(), "zzz")
	assert.ErrorIs(t, err, common.ErrorInvalidID)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/users"
)

func TestNew_Memory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageMemory}

	m, err := New(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)

	assert.IsType(t, &users.InMemoryRepository{}, m.Users())
	assert.IsType(t, &posts.InMemoryRepository{}, m.Posts())
	assert.NoError(t, m.Ping(context.Background()))
	assert.NoError(t, m.Close(context.Background()))
}

func TestNew_UnknownStorage(t *testing.T) {
	_, err := New(context.Background(), &config.Config{Storage: "sqlite"}, logging.Nop())
	require.Error(t, err)
}

func stubSQLOpen(t *testing.T, db *sql.DB, openErr error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		if openErr != nil {
			return nil, openErr
		}
		assert.Equal(t, "pgx", driver)
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = orig })
}

func stubGoose(t *testing.T, err error) *int {
	t.Helper()
	calls := 0
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		calls++
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return err
	}
	t.Cleanup(func() { gooseUpContext = orig })
	return &calls
}

func TestNewPostgresRepositoryManager_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectPing()
	mock.ExpectClose()

	stubSQLOpen(t, db, nil)
	calls := stubGoose(t, nil)

	m, err := New(context.Background(), &config.Config{Storage: config.StoragePostgres, DatabaseDSN: "postgres://x"}, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)

	assert.IsType(t, &users.PostgresRepository{}, m.Users())
	assert.IsType(t, &posts.PostgresRepository{}, m.Posts())
	assert.NoError(t, m.Ping(context.Background()))
	assert.NoError(t, m.Close(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresRepositoryManager_Errors(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		stubSQLOpen(t, nil, errors.New("bad dsn"))
		_, err := NewPostgresRepositoryManager(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open postgres")
	})

	t.Run("ping", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		mock.ExpectPing().WillReturnError(errors.New("refused"))
		mock.ExpectClose()
		stubSQLOpen(t, db, nil)

		_, err = NewPostgresRepositoryManager(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping postgres")
	})

	t.Run("migrate", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		mock.ExpectPing()
		mock.ExpectClose()
		stubSQLOpen(t, db, nil)
		stubGoose(t, errors.New("boom"))

		_, err = NewPostgresRepositoryManager(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migrate postgres: boom")
	})
}

func TestNewMongoRepositoryManager(t *testing.T) {
	origIdx := ensureMongoIndexes
	t.Cleanup(func() { ensureMongoIndexes = origIdx })

	var gotDB string
	ensureMongoIndexes = func(ctx context.Context, db *mongo.Database) error {
		gotDB = db.Name()
		return nil
	}

	m, err := New(context.Background(), &config.Config{
		Storage: config.StorageMongo, MongoURI: "mongodb://127.0.0.1:1", MongoDatabase: "blogtest",
	}, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, "blogtest", gotDB)
	assert.IsType(t, &users.MongoRepository{}, m.Users())
	assert.IsType(t, &posts.MongoRepository{}, m.Posts())
	assert.NoError(t, m.Close(context.Background()))

	ensureMongoIndexes = func(context.Context, *mongo.Database) error { return errors.New("no server") }
	_, err = NewMongoRepositoryManager(context.Background(), "mongodb://127.0.0.1:1", "blogtest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo indexes")
}

// Package repomanager opens the configured storage backend and vends its
// repositories.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Posts() posts.Repository
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// New opens the backend named by cfg.Storage and prepares its schema.
func New(ctx context.Context, cfg *config.Config, l logging.Logger) (RepositoryManager, error) {
	switch cfg.Storage {
	case config.StorageMongo:
		l.Info(ctx, "opening storage", "storage", cfg.Storage, "database", cfg.MongoDatabase)
		m, err := NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StoragePostgres:
		l.Info(ctx, "opening storage", "storage", cfg.Storage)
		m, err := NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StorageMemory:
		l.Warn(ctx, "using in-memory storage, data is lost on restart")
		return NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

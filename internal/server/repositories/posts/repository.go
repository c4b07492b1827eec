// Package posts contains the post store: the Repository contract and its
// PostgreSQL, MongoDB and in-memory implementations.
package posts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

// Repository persists posts. Author-scoped methods match on both post id
// and author id, so a post owned by someone else is reported as
// common.ErrorNotFound. Ids the backend cannot parse yield
// common.ErrorInvalidID.
//
// List and Get join the author. Posts whose author no longer exists are
// not returned.
type Repository interface {
	ListByAuthor(ctx context.Context, userID string, q models.PostQuery) ([]models.Post, error)
	GetByAuthor(ctx context.Context, userID, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Update(ctx context.Context, userID, id string, patch models.PostPatch, updatedAt time.Time) (*models.Post, error)
	Delete(ctx context.Context, userID, id string) error

	List(ctx context.Context, q models.PostQuery) ([]models.PostWithAuthor, error)
	Get(ctx context.Context, id string) (*models.PostWithAuthor, error)
}

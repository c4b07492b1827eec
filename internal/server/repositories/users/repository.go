// Package users contains the user store: the Repository contract and its
// PostgreSQL, MongoDB and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

// Repository persists users. Lookups return common.ErrorNotFound when no
// user matches and common.ErrorInvalidID when id is not a valid key for the
// backend. Create returns common.ErrorAlreadyExists on a duplicate email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

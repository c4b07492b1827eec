// Package services contains server-side business logic. This file implements
// UserService, which handles registration and profile lookups.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/users"
	"github.com/dmitrijs2005/gopherblog/internal/server/session"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
	Photo           string
}

type UserService struct {
	repo   users.Repository
	hasher PasswordHasher
	now    func() time.Time
}

func NewUserService(repo users.Repository, hasher PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher, now: time.Now}
}

// Register creates a verified account with the standard user role.
// The password check runs before the store is touched.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Password != in.PasswordConfirm {
		return nil, session.ErrPasswordMismatch
	}

	email := strings.ToLower(in.Email)

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, session.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.repo.Create(ctx, &models.User{
		Name:      in.Name,
		Email:     email,
		Password:  hash,
		Photo:     in.Photo,
		Role:      common.RoleUser,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, session.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Get returns the user with id. Unknown and malformed ids both map to
// session.ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorInvalidID) {
			return nil, session.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by id: %w", err)
	}
	return user, nil
}

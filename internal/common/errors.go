package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorInvalidID     = errors.New("invalid id")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Token errors (invalid or malformed token, wrong kind).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Storage for uploads is not configured.
	ErrorStorageDisabled = errors.New("object storage disabled")
)

// Package common defines shared constants and sentinel errors used across
// client and server layers of mangasync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Wrapped with the user-facing message.
	ErrorValidation = errors.New("validation error")

	// Auth errors.
	ErrInvalidToken         = errors.New("invalid token")
	ErrWrongPassword        = errors.New("wrong password")
	ErrRegistrationDisabled = errors.New("registration of new users is disabled")
)

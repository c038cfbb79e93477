// Package common defines shared constants and sentinel errors used across
// the layers of SecureApp. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Validation errors (user-correctable input).
	ErrValidation = errors.New("validation error")

	// Auth-flow errors. ErrAuth is intentionally generic: user absent, user
	// not enrolled and password mismatch all collapse into it so the response
	// never leaks which check failed.
	ErrAuth         = errors.New("invalid credentials")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCode is a wrong or expired one-time code; retryable.
	ErrInvalidCode = errors.New("invalid code")

	// Token errors (malformed or tampered session cookie token).
	ErrInvalidToken = errors.New("invalid token")

	// Service-level errors (persistence or other internal failure).
	ErrInternal = errors.New("internal error")
)

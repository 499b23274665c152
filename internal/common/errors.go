// Package common defines shared constants and sentinel errors used across
// the client and server layers of meetsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic flow control).
	ErrorInternal    = errors.New("internal error")
	ErrorUnavailable = errors.New("store unavailable")

	// Request taxonomy: authentication, authorization, validation.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Token lifecycle errors. Both map to the same caller-visible 401,
	// but are kept distinct for logging.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// IsRetriable reports whether err is transient and worth retrying.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrorUnavailable)
}

// Package common defines shared constants and sentinel errors used across
// the client and server layers of authgate. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrUpstream           = errors.New("user directory unavailable")
	ErrHashing            = errors.New("password hashing failed")

	// Access token errors. Expired and tampered tokens both map to
	// ErrInvalidToken.
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

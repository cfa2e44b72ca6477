package client

import "errors"

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrMissingFields = errors.New("email and password are required")
	ErrConflict      = errors.New("user already exists")
)

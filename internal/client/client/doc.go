// Package client talks to the authgate REST API.
//
// HTTPClient wraps the /login and /getContacts endpoints. Non-success
// statuses are mapped to sentinel errors that callers can match with
// errors.Is: ErrMissingFields, ErrUnauthorized, ErrForbidden, ErrConflict
// and ErrUnavailable.
package client

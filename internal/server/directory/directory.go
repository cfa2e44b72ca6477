// Package directory is the gateway's view of the external user directory:
// the store that owns user records and the contacts payload. The gateway
// only lists users and asks for new ones to be created; it never mutates
// a record itself.
//
// Backends make no latency or consistency promises. In particular a user
// that was just created may be missing from the next ListUsers snapshot.
package directory

import (
	"context"
	"encoding/json"
)

// UserRecord is a user as stored by the directory. PasswordHash is a bcrypt
// hash; plaintext passwords never reach this package.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
}

// NewUser is a creation request.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// Directory lists and creates user records.
type Directory interface {
	// ListUsers returns a full snapshot of the directory, unfiltered.
	ListUsers(ctx context.Context) ([]UserRecord, error)
	// CreateUser returns once the store has acknowledged the record.
	// Backends that enforce unique emails return common.ErrAlreadyExists.
	CreateUser(ctx context.Context, u NewUser) (*UserRecord, error)
}

// ContactsSource returns the contacts payload served to authenticated
// callers. The payload is opaque JSON.
type ContactsSource interface {
	Contacts(ctx context.Context) (json.RawMessage, error)
}

package directory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/google/uuid"
)

// MemoryDirectory keeps users in process memory. It is meant for local runs
// and tests; records are lost on restart.
type MemoryDirectory struct {
	mu       sync.RWMutex
	users    []UserRecord
	contacts json.RawMessage
}

// NewMemoryDirectory returns a directory seeded with users, serving contacts
// as its contacts payload. A nil payload is served as an empty list.
func NewMemoryDirectory(contacts json.RawMessage, users ...UserRecord) *MemoryDirectory {
	if contacts == nil {
		contacts = json.RawMessage(`{"contacts":[]}`)
	}
	return &MemoryDirectory{users: append([]UserRecord(nil), users...), contacts: contacts}
}

func (d *MemoryDirectory) ListUsers(ctx context.Context) ([]UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]UserRecord(nil), d.users...), nil
}

// CreateUser refuses a second record with the same normalized email.
func (d *MemoryDirectory) CreateUser(ctx context.Context, u NewUser) (*UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	email := common.NormalizeEmail(u.Email)
	for _, existing := range d.users {
		if common.NormalizeEmail(existing.Email) == email {
			return nil, common.ErrAlreadyExists
		}
	}

	rec := UserRecord{
		ID:           uuid.NewString(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
	d.users = append(d.users, rec)
	return &rec, nil
}

func (d *MemoryDirectory) Contacts(ctx context.Context) (json.RawMessage, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append(json.RawMessage(nil), d.contacts...), nil
}

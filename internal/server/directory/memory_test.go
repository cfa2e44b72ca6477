package directory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory(nil, UserRecord{ID: "1", Email: "seed@b.com", PasswordHash: "h"})

	users, err := d.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	rec, err := d.CreateUser(ctx, NewUser{Name: "Ann", Email: "a@b.com", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "a@b.com", rec.Email)

	users, err = d.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = d.CreateUser(ctx, NewUser{Email: " A@B.com"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestMemoryDirectory_SnapshotIsCopy(t *testing.T) {
	d := NewMemoryDirectory(nil, UserRecord{ID: "1", Email: "a@b.com"})

	users, err := d.ListUsers(context.Background())
	require.NoError(t, err)
	users[0].Email = "changed"

	again, err := d.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", again[0].Email)
}

func TestMemoryDirectory_Contacts(t *testing.T) {
	raw, err := NewMemoryDirectory(nil).Contacts(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"contacts":[]}`, string(raw))

	raw, err = NewMemoryDirectory(json.RawMessage(`[1,2]`)).Contacts(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(raw))
}

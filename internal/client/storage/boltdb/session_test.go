package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/Greg-Swiftomatic/promptomatik/internal/client/storage"
	"github.com/Greg-Swiftomatic/promptomatik/pkg/api"
)

func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "client_test.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

// putRawSession writes an arbitrary value into the session slot, bypassing
// SaveSession, to simulate what older deployments could leave behind.
func putRawSession(t *testing.T, store *Storage, value []byte) {
	t.Helper()

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Put(sessionKey, value)
	})
	require.NoError(t, err)
}

func TestStorage_SaveGetDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	rec := &storage.SessionRecord{
		Token: "signed.jwt.token",
		User: api.UserInfo{
			ID:        "user-id-123",
			FirstName: "Dana",
			Email:     "dana@example.com",
		},
	}
	require.NoError(t, store.SaveSession(ctx, rec))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.Token, got.Token)
	assert.Equal(t, rec.User, got.User)

	require.NoError(t, store.DeleteSession(ctx))

	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestStorage_GetSession_Corrupted(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  []byte
	}{
		{"literal null", []byte("null")},
		{"literal undefined", []byte("undefined")},
		{"broken json", []byte("{not json")},
		{"empty token", []byte(`{"token":"","user":{}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStorage(t)
			putRawSession(t, store, tt.raw)

			_, err := store.GetSession(ctx)
			assert.ErrorIs(t, err, storage.ErrSessionCorrupted)
		})
	}
}

func TestStorage_SaveSession_Overwrites(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	first := &storage.SessionRecord{Token: "token-1", User: api.UserInfo{ID: "u1"}}
	second := &storage.SessionRecord{Token: "token-2", User: api.UserInfo{ID: "u1"}}

	require.NoError(t, store.SaveSession(ctx, first))
	require.NoError(t, store.SaveSession(ctx, second))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", got.Token)
}

func TestStorage_DeleteSession_Missing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Deleting an absent session is not an error.
	assert.NoError(t, store.DeleteSession(ctx))
}

package quotedesksdk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.SetToken("abc"))
	assert.True(t, store.IsAuthenticated())

	token, err := store.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	assert.False(t, store.IsAuthenticated())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileStore(path)

	// Missing file reads as empty, not an error.
	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.SetToken("abc"))
	assert.True(t, store.IsAuthenticated())

	// A fresh store at the same path sees the persisted token.
	reopened := NewFileStore(path)
	token, err = reopened.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear()) // idempotent
	assert.False(t, store.IsAuthenticated())
}

func TestNewLoadsStoredToken(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.SetToken("persisted"))

	client := New("http://localhost", store)
	assert.Equal(t, "persisted", client.BearerToken)
}

package configstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func TestMemoryStore_GetSet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Get(ctx, KeyAPIKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, KeyAPIKey, "secret-token"))
	value, found, err := store.Get(ctx, KeyAPIKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "secret-token", value)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.db")

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)

	store, err := NewBoltStore(db)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyPaused, "true"))
	require.NoError(t, db.Close())

	db2, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	defer db2.Close()

	store2, err := NewBoltStore(db2)
	require.NoError(t, err)
	value, found, err := store2.Get(ctx, KeyPaused)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", value)
}

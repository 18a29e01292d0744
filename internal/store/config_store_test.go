package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStoreEnsureAdmin(t *testing.T) {
	store := NewConfigStore(newTestDB(t))
	ctx := context.Background()

	cfg, err := store.GetAdmin(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	created, err := store.EnsureAdmin(ctx, "hash-1")
	require.NoError(t, err)
	assert.True(t, created)

	// An existing record is left untouched.
	created, err = store.EnsureAdmin(ctx, "hash-2")
	require.NoError(t, err)
	assert.False(t, created)

	cfg, err = store.GetAdmin(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "hash-1", cfg.PasswordHash)
}

func TestConfigStoreSaveAdmin(t *testing.T) {
	store := NewConfigStore(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.SaveAdmin(ctx, "first"))
	require.NoError(t, store.SaveAdmin(ctx, "second"))

	cfg, err := store.GetAdmin(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "second", cfg.PasswordHash)
	assert.False(t, cfg.UpdatedAt.IsZero())
}

package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/konsinyasi/internal/domain"
)

func TestLocalPhotoStoreSaveAndGet(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	imageData := []byte("fake jpeg data")

	key, err := store.Save(ctx, "att-1", "image/jpeg", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "att-1_"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	reader, mimeType, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "image/jpeg", mimeType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestLocalPhotoStoreKeysAreUnique(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := store.Save(ctx, "att-1", "image/png", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	second, err := store.Save(ctx, "att-1", "image/png", bytes.NewReader([]byte("b")))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	_, mimeType, err := store.Get(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
}

func TestLocalPhotoStoreDelete(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	key, err := store.Save(ctx, "att-1", "image/jpeg", bytes.NewReader([]byte("test data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))

	_, _, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, key), domain.ErrNotFound)
}

func TestLocalPhotoStoreNotFound(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "nonexistent.jpg")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalPhotoStorePathTraversal(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	_, _, err = store.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Save(ctx, "../escape", "image/jpeg", bytes.NewReader([]byte("x")))
	assert.Error(t, err)
}

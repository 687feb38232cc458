package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreOpen(t *testing.T) {
	dir := t.TempDir()
	data := []byte("hello blob world")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.bin"), data, 0o644))

	store := NewLocalStore(dir)
	blob, err := store.Open(context.Background(), "blob.bin")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(len(data)), blob.Size())

	got, err := io.ReadAll(NewReader(blob))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Mappable access returns the same bytes without copying.
	m, ok := blob.(Mappable)
	require.True(t, ok)
	raw, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, []byte(raw))
}

func TestLocalStoreOpenAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abs.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	store := NewLocalStore("/nonexistent-root")
	blob, err := store.Open(context.Background(), path)
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(1), blob.Size())
}

func TestLocalStoreOpenMissing(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(context.Background(), "nope.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.bin"), nil, 0o644))

	store := NewLocalStore(dir)
	blob, err := store.Open(context.Background(), "empty.bin")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(0), blob.Size())
}

func TestLocalBlobReadAt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bin"), []byte("0123456789"), 0o644))

	store := NewLocalStore(dir)
	blob, err := store.Open(context.Background(), "b.bin")
	require.NoError(t, err)
	defer blob.Close()

	p := make([]byte, 4)
	n, err := blob.ReadAt(p, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "3456", string(p))

	// Reading past the end yields a short read with io.EOF.
	n, err = blob.ReadAt(p, 8)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = blob.ReadAt(p, 100)
	assert.ErrorIs(t, err, io.EOF)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	store.Put("a", []byte("payload"))

	blob, err := store.Open(context.Background(), "a")
	require.NoError(t, err)
	defer blob.Close()

	got, err := io.ReadAll(NewReader(blob))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	_, err = store.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

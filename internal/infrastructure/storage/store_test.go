package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filehub/internal/domain/service"
)

func blobStores(t *testing.T) map[string]service.BlobStore {
	t.Helper()

	local, err := NewLocalStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)

	return map[string]service.BlobStore{
		"memory": NewMemoryStore(),
		"local":  local,
	}
}

func readAll(t *testing.T, rc io.ReadCloser) []byte {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestBlobStore_PutOpenDelete(t *testing.T) {
	ctx := context.Background()

	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			content := []byte("hello, 世界")

			size, err := store.Put(ctx, "1700000000000-abcd1234-hello.txt", bytes.NewReader(content), "text/plain")
			require.NoError(t, err)
			assert.Equal(t, int64(len(content)), size)

			rc, err := store.Open(ctx, "1700000000000-abcd1234-hello.txt")
			require.NoError(t, err)
			assert.Equal(t, content, readAll(t, rc))

			require.NoError(t, store.Delete(ctx, "1700000000000-abcd1234-hello.txt"))

			_, err = store.Open(ctx, "1700000000000-abcd1234-hello.txt")
			assert.ErrorIs(t, err, service.ErrBlobNotFound)
		})
	}
}

func TestBlobStore_DeleteMissingIsNoop(t *testing.T) {
	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.Delete(context.Background(), "missing.bin"))
		})
	}
}

func TestBlobStore_List(t *testing.T) {
	ctx := context.Background()

	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Put(ctx, "b.txt", strings.NewReader("bb"), "text/plain")
			require.NoError(t, err)
			_, err = store.Put(ctx, "a.txt", strings.NewReader("a"), "text/plain")
			require.NoError(t, err)

			infos, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, "a.txt", infos[0].Key)
			assert.Equal(t, int64(1), infos[0].Size)
			assert.Equal(t, "b.txt", infos[1].Key)
			assert.Equal(t, int64(2), infos[1].Size)
			assert.False(t, infos[0].ModifiedAt.IsZero())
		})
	}
}

func TestLocalStore_RejectsPathKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape.txt", "dir/file.txt", "partial.tmp"} {
		_, err := store.Put(context.Background(), key, strings.NewReader("x"), "")
		assert.Error(t, err, "key %q", key)
	}
}

func TestLocalStore_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "file.txt", strings.NewReader("data"), "text/plain")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file.txt", entries[0].Name())
}

func TestLocalStore_ListSkipsTempFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "half.bin.tmp"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.bin"), []byte("x"), 0o600))

	infos, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "kept.bin", infos[0].Key)
}

func TestLocalStore_PutHonorsCancelledContext(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Put(ctx, "late.txt", strings.NewReader("data"), "text/plain")
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

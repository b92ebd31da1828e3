package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Put(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewLocalBlobStore(slog.Default(), root, "http://localhost:9090/files/")

	obj, err := store.Put(t.Context(), "client-1", "ob-1", "Contract Final.PDF", strings.NewReader("hello"))
	require.NoError(t, err)

	assert.Equal(t, int64(5), obj.SizeBytes)
	assert.True(t, strings.HasPrefix(obj.Key, "client-files/client-1/ob-1/"))
	assert.True(t, strings.HasSuffix(obj.Key, ".pdf"), "extension should be normalized: %s", obj.Key)
	assert.Equal(t, "http://localhost:9090/files/"+obj.Key, obj.URL)

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(obj.Key)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestLocalBlobStore_PutGeneratesUniqueKeys(t *testing.T) {
	t.Parallel()

	store := NewLocalBlobStore(slog.Default(), t.TempDir(), "http://localhost:9090/files")

	first, err := store.Put(t.Context(), "c", "o", "a.txt", strings.NewReader("1"))
	require.NoError(t, err)

	second, err := store.Put(t.Context(), "c", "o", "a.txt", strings.NewReader("2"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
}

func TestLocalBlobStore_Delete(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewLocalBlobStore(slog.Default(), root, "http://localhost:9090/files")

	obj, err := store.Put(t.Context(), "c", "o", "a.txt", strings.NewReader("1"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(t.Context(), obj.Key))

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(obj.Key)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(t.Context(), obj.Key))
}

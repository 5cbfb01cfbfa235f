package blobstore

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutThenOpen(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("graph", []byte("hello cross-edges")))

	blob, err := store.Open("graph")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(len("hello cross-edges")), blob.Size())

	buf := make([]byte, blob.Size())
	n, err := blob.ReadAt(buf, 0)
	require.True(t, err == nil || err == io.EOF)
	assert.Equal(t, "hello cross-edges", string(buf[:n]))
}

func TestLocalStorePutLeavesNoTempFileOnSuccess(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put("meta", []byte("v1")))

	_, err = os.Stat(filepath.Join(dir, "meta.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorePutOverwrites(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("labels", []byte("first")))
	require.NoError(t, store.Put("labels", []byte("second-longer")))

	blob, err := store.Open("labels")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(len("second-longer")), blob.Size())
}

func TestLocalStoreOpenMissingReturnsError(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("does-not-exist")
	assert.Error(t, err)
}

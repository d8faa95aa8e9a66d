package feedstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/feedstore"
	"github.com/poiesic/feedstore/repository"
)

func TestOpenFileStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "feeds")

	store, err := feedstore.Open("file://" + root)
	require.NoError(t, err)
	defer store.Close()

	repo := store.Repository()
	require.NoError(t, repo.Write(repository.Key{"key"}, repository.Bytes([]byte("hello"))))

	chunks, err := repo.Read(repository.Key{"key"})
	require.NoError(t, err)
	content, err := repository.Collect(chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)

	assert.False(t, repo.Exists(repository.Key{"nope"}))

	names, err := repo.List(repository.Key{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"key"}, names)
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := feedstore.Open("unregistered-scheme://somewhere")
	assert.ErrorIs(t, err, repository.ErrUnknownScheme)
}

func TestOpenBadgerStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	store, err := feedstore.Open("badger://" + dir)
	require.NoError(t, err)
	defer store.Close()

	repo := store.Repository()
	require.NoError(t, repo.Write(repository.Key{"feeds", "a"}, repository.Bytes([]byte("contents"))))
	assert.True(t, repo.Exists(repository.Key{"feeds", "a"}))
}

func TestBufferedStoreFlushesOnClose(t *testing.T) {
	root := t.TempDir()

	store, err := feedstore.Open("file://"+root, feedstore.WithBuffer())
	require.NoError(t, err)

	repo := store.Repository()
	require.NoError(t, repo.Write(repository.Key{"key"}, repository.Bytes([]byte("buffered"))))

	// Unflushed writes are invisible to a second store over the same root.
	direct, err := feedstore.Open("file://" + root)
	require.NoError(t, err)
	defer direct.Close()
	assert.False(t, direct.Repository().Exists(repository.Key{"key"}))

	require.NoError(t, store.Close())

	chunks, err := direct.Repository().Read(repository.Key{"key"})
	require.NoError(t, err)
	content, err := repository.Collect(chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte("buffered"), content)
}

func TestCompressedBufferedStore(t *testing.T) {
	root := t.TempDir()

	store, err := feedstore.Open("file://"+root,
		feedstore.WithBuffer(), feedstore.WithCompression())
	require.NoError(t, err)
	defer store.Close()

	repo := store.Repository()
	key := repository.Key{"feeds", "example.xml"}
	require.NoError(t, repo.Write(key, repository.Bytes([]byte("feed body"))))

	// Buffered reads see the logical content before and after Flush.
	chunks, err := repo.Read(key)
	require.NoError(t, err)
	content, err := repository.Collect(chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte("feed body"), content)

	require.NoError(t, store.Flush())

	chunks, err = repo.Read(key)
	require.NoError(t, err)
	content, err = repository.Collect(chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte("feed body"), content)
}

func TestFlushWithoutBufferIsNoop(t *testing.T) {
	store, err := feedstore.Open("file://" + t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Flush())
}

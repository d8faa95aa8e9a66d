package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/feedstore/repository"
	"github.com/poiesic/feedstore/repository/repotest"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestConformance(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repository {
		return newTestRepository(t)
	})
}

func TestConformanceOnDisk(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repository {
		repo, err := New(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestWriteIntoDirectoryNodeFails(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Write(repository.Key{"dir", "key"}, repository.Bytes([]byte("contents"))))

	// "dir" is a directory-like node now; it cannot hold content too.
	err := repo.Write(repository.Key{"dir"}, repository.Bytes([]byte("nope")))
	assert.ErrorIs(t, err, repository.ErrPathConflict)
}

func TestDirectoryNodesAreImplicit(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Write(repository.Key{"a", "b", "c"}, repository.Bytes([]byte("contents"))))

	assert.True(t, repo.Exists(repository.Key{"a"}))
	assert.True(t, repo.Exists(repository.Key{"a", "b"}))

	names, err := repo.List(repository.Key{"a"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, names)

	// Directory-like nodes have no readable content.
	_, err = repo.Read(repository.Key{"a"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSegmentBoundaries(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Write(repository.Key{"ab"}, repository.Bytes([]byte("flat"))))
	require.NoError(t, repo.Write(repository.Key{"a", "b"}, repository.Bytes([]byte("nested"))))

	chunks, err := repo.Read(repository.Key{"ab"})
	require.NoError(t, err)
	content, err := repository.Collect(chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte("flat"), content)

	names, err := repo.List(repository.Key{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ab", "a"}, names)
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()

	repo, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Write(repository.Key{"key"}, repository.Bytes([]byte("contents"))))
	require.NoError(t, repo.Close())

	repo, err = New(dir)
	require.NoError(t, err)
	defer repo.Close()

	chunks, err := repo.Read(repository.Key{"key"})
	require.NoError(t, err)
	content, err := repository.Collect(chunks)
	require.NoError(t, err)
	assert.Equal(t, []byte("contents"), content)
}

func TestURL(t *testing.T) {
	dir := t.TempDir()
	repo, err := New(dir)
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, "badger://"+dir, repo.URL("badger"))
}

func TestNewRootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-dir.txt")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := New(path)
	assert.ErrorIs(t, err, repository.ErrNotADirectory)
}

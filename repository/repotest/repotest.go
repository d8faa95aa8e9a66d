// Package repotest provides the acceptance suite every repository backend
// must pass. Backend test files call Run with a factory producing a fresh,
// empty repository per subtest.
package repotest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/feedstore/repository"
)

// Factory produces a fresh, empty repository. Cleanup is the caller's
// business; register it on t.
type Factory func(t *testing.T) repository.Repository

// Run exercises the shared Repository contract against the backend under
// test: key validation, read/write round-trips, existence, listing, and
// prefix conflicts.
func Run(t *testing.T, factory Factory) {
	t.Run("EmptyKey", func(t *testing.T) {
		repo := factory(t)

		_, err := repo.Read(repository.Key{})
		assert.ErrorIs(t, err, repository.ErrEmptyKey)

		err = repo.Write(repository.Key{}, repository.Bytes([]byte("key "), []byte("cannot "), []byte("be "), []byte("empty")))
		assert.ErrorIs(t, err, repository.ErrEmptyKey)

		assert.False(t, repo.Exists(repository.Key{}))

		names, err := repo.List(repository.Key{})
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("InvalidSegment", func(t *testing.T) {
		repo := factory(t)

		for _, key := range []repository.Key{
			{""},
			{"a", ""},
			{"a/b"},
			{`a\b`},
			{"a\x00b"},
			{".."},
			{"dir", "."},
		} {
			_, err := repo.Read(key)
			assert.ErrorIs(t, err, repository.ErrInvalidKey, "read %q", key)

			err = repo.Write(key, repository.Bytes([]byte("content")))
			assert.ErrorIs(t, err, repository.ErrInvalidKey, "write %q", key)

			assert.False(t, repo.Exists(key), "exists %q", key)

			_, err = repo.List(key)
			assert.ErrorIs(t, err, repository.ErrInvalidKey, "list %q", key)
		}
	})

	t.Run("MissingEntry", func(t *testing.T) {
		repo := factory(t)

		assert.False(t, repo.Exists(repository.Key{"key"}))

		_, err := repo.Read(repository.Key{"key"})
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = repo.List(repository.Key{"not-exist"})
		assert.Error(t, err)
	})

	t.Run("WriteReadList", func(t *testing.T) {
		repo := factory(t)

		err := repo.Write(repository.Key{"key"}, repository.Bytes([]byte("cont"), []byte("ents")))
		require.NoError(t, err)

		names, err := repo.List(repository.Key{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"key"}, names)

		assert.True(t, repo.Exists(repository.Key{"key"}))

		chunks, err := repo.Read(repository.Key{"key"})
		require.NoError(t, err)
		content, err := repository.Collect(chunks)
		require.NoError(t, err)
		assert.Equal(t, []byte("contents"), content)
	})

	t.Run("Replace", func(t *testing.T) {
		repo := factory(t)

		require.NoError(t, repo.Write(repository.Key{"key"}, repository.Bytes([]byte("first"))))
		require.NoError(t, repo.Write(repository.Key{"key"}, repository.Bytes([]byte("second"))))

		chunks, err := repo.Read(repository.Key{"key"})
		require.NoError(t, err)
		content, err := repository.Collect(chunks)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), content)
	})

	t.Run("Nested", func(t *testing.T) {
		repo := factory(t)

		require.NoError(t, repo.Write(repository.Key{"key"}, repository.Bytes([]byte("contents"))))

		assert.False(t, repo.Exists(repository.Key{"dir", "key"}))
		_, err := repo.Read(repository.Key{"dir", "key"})
		assert.ErrorIs(t, err, repository.ErrNotFound)

		require.NoError(t, repo.Write(repository.Key{"dir", "key"}, repository.Bytes([]byte("cont"), []byte("ents"))))

		names, err := repo.List(repository.Key{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"dir", "key"}, names)

		names, err = repo.List(repository.Key{"dir"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"key"}, names)

		assert.True(t, repo.Exists(repository.Key{"dir"}))
		assert.True(t, repo.Exists(repository.Key{"dir", "key"}))
		assert.False(t, repo.Exists(repository.Key{"dir", "key2"}))

		chunks, err := repo.Read(repository.Key{"dir", "key"})
		require.NoError(t, err)
		content, err := repository.Collect(chunks)
		require.NoError(t, err)
		assert.Equal(t, []byte("contents"), content)
	})

	t.Run("DeepNesting", func(t *testing.T) {
		repo := factory(t)

		key := repository.Key{"a", "b", "c", "d"}
		require.NoError(t, repo.Write(key, repository.Bytes([]byte("deep "), []byte("contents"))))

		chunks, err := repo.Read(key)
		require.NoError(t, err)
		content, err := repository.Collect(chunks)
		require.NoError(t, err)
		assert.Equal(t, []byte("deep contents"), content)
	})

	t.Run("PathConflict", func(t *testing.T) {
		repo := factory(t)

		require.NoError(t, repo.Write(repository.Key{"key"}, repository.Bytes([]byte("contents"))))

		err := repo.Write(repository.Key{"key", "key"}, repository.Bytes([]byte("directory test")))
		assert.ErrorIs(t, err, repository.ErrPathConflict)

		// The original entry is untouched.
		chunks, err := repo.Read(repository.Key{"key"})
		require.NoError(t, err)
		content, err := repository.Collect(chunks)
		require.NoError(t, err)
		assert.Equal(t, []byte("contents"), content)
	})

	t.Run("WriteDirectoryNode", func(t *testing.T) {
		repo := factory(t)

		require.NoError(t, repo.Write(repository.Key{"dir", "key"}, repository.Bytes([]byte("contents"))))

		// "dir" is a directory-like node now; it cannot hold content too.
		err := repo.Write(repository.Key{"dir"}, repository.Bytes([]byte("nope")))
		assert.ErrorIs(t, err, repository.ErrPathConflict)

		chunks, err := repo.Read(repository.Key{"dir", "key"})
		require.NoError(t, err)
		content, err := repository.Collect(chunks)
		require.NoError(t, err)
		assert.Equal(t, []byte("contents"), content)
	})

	t.Run("ListPlainEntry", func(t *testing.T) {
		repo := factory(t)

		require.NoError(t, repo.Write(repository.Key{"key"}, repository.Bytes([]byte("contents"))))

		_, err := repo.List(repository.Key{"key"})
		assert.ErrorIs(t, err, repository.ErrNotADirectory)
	})

	t.Run("ReadDirectory", func(t *testing.T) {
		repo := factory(t)

		require.NoError(t, repo.Write(repository.Key{"dir", "key"}, repository.Bytes([]byte("contents"))))

		chunks, err := repo.Read(repository.Key{"dir"})
		if err == nil {
			_, err = repository.Collect(chunks)
		}
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

// Package badger implements a BadgerDB-backed repository. It gives the
// key-addressed contract to deployments that want a single database
// directory instead of one file per entry; directory-like nodes are implicit
// in the key space rather than materialized.
package badger

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/feedstore/repository"
)

// Repository stores entries in a single BadgerDB key space. Each entry key
// is its segment sequence joined with NUL behind a one-byte namespace
// prefix, so child enumeration is a prefix scan.
type Repository struct {
	db     *badger.DB
	dir    string
	logger *slog.Logger
}

var _ repository.Repository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// loggerAdapter adapts slog.Logger to badger.Logger.
type loggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*loggerAdapter)(nil)

func (l *loggerAdapter) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf(msg, items...))
}

func (l *loggerAdapter) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf(msg, items...))
}

func (l *loggerAdapter) Infof(msg string, items ...any) {
	l.logger.Info(fmt.Sprintf(msg, items...))
}

func (l *loggerAdapter) Debugf(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

// New opens a repository backed by a BadgerDB database at dir, creating the
// directory if needed.
func New(dir string, opts ...Option) (*Repository, error) {
	r := &Repository{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("inspecting database directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s", repository.ErrNotADirectory, dir)
	}

	options := badger.DefaultOptions(dir).
		WithLogger(&loggerAdapter{logger: r.logger.With("component", "badger")})
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	r.db = db
	return r, nil
}

// NewInMemory opens a repository with no on-disk state, for tests.
func NewInMemory(opts ...Option) (*Repository, error) {
	r := &Repository{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	options := badger.DefaultOptions("").WithInMemory(true).
		WithLogger(&loggerAdapter{logger: r.logger.With("component", "badger")})
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory badger database: %w", err)
	}
	r.db = db
	return r, nil
}

// Close closes the underlying database. The repository must not be used
// afterwards.
func (r *Repository) Close() error {
	return r.db.Close()
}

// URL re-expresses the repository as a locator string under the given
// scheme. Meaningless for in-memory repositories.
func (r *Repository) URL(scheme string) string {
	return scheme + "://" + r.dir
}

func (r *Repository) Read(key repository.Key) (repository.Chunks, error) {
	if err := repository.ValidateKey(key, true); err != nil {
		return nil, err
	}
	var content []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(key))
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		// Also the directory-like case: a node with children but no
		// entry of its own has no content to read.
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return repository.Bytes(content), nil
}

func (r *Repository) Write(key repository.Key, chunks repository.Chunks) error {
	if err := repository.ValidateKey(key, true); err != nil {
		return err
	}
	content, err := repository.Collect(chunks)
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		for i := 1; i < len(key); i++ {
			if _, err := txn.Get(entryKey(key[:i])); err == nil {
				return fmt.Errorf("%w: %s is not a directory", repository.ErrPathConflict, key[:i])
			}
		}
		if hasChildren(txn, key) {
			return fmt.Errorf("%w: %s is a directory", repository.ErrPathConflict, key)
		}
		return txn.Set(entryKey(key), content)
	})
	if err != nil && !errors.Is(err, repository.ErrPathConflict) {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return err
}

func (r *Repository) Exists(key repository.Key) bool {
	if err := repository.ValidateKey(key, false); err != nil || len(key) == 0 {
		return false
	}
	exists := false
	r.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(entryKey(key)); err == nil {
			exists = true
			return nil
		}
		exists = hasChildren(txn, key)
		return nil
	})
	return exists
}

func (r *Repository) List(key repository.Key) ([]string, error) {
	if err := repository.ValidateKey(key, false); err != nil {
		return nil, err
	}
	var names []string
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := childPrefix(key)
		seen := make(map[string]struct{})
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			rest := it.Item().Key()[len(prefix):]
			segment := rest
			if i := bytes.IndexByte(rest, 0); i >= 0 {
				segment = rest[:i]
			}
			seen[string(segment)] = struct{}{}
		}
		if len(seen) == 0 && len(key) > 0 {
			if _, err := txn.Get(entryKey(key)); err == nil {
				return fmt.Errorf("%w: %s", repository.ErrNotADirectory, key)
			}
			return fmt.Errorf("%w: %s", repository.ErrNotFound, key)
		}
		names = make([]string, 0, len(seen))
		for segment := range seen {
			names = append(names, segment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func init() {
	repository.RegisterScheme("badger", func(u *url.URL) (repository.Repository, error) {
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return New(path)
	})
}

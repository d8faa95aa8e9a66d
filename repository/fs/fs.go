// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package fs implements the filesystem-backed repository. Keys map to
// nested path components under a root directory; directories are implicit,
// created on demand by writes.
package fs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/poiesic/feedstore/repository"
)

// Repository stores each entry as a plain file under the root directory.
//
// Non-atomic writes stream straight into the target file, so concurrent
// readers of the same key can observe a partial write. Atomic mode streams
// into a co-located temporary file and publishes it with a single rename,
// which closes that gap.
type Repository struct {
	root      string
	mkdir     bool
	atomic    bool
	chunkSize int
	logger    *slog.Logger
}

var _ repository.Repository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

// WithAtomic enables atomic writes: content is staged in a temporary file
// next to the target and published with one rename after the source
// sequence is exhausted without error.
func WithAtomic() Option {
	return func(r *Repository) {
		r.atomic = true
	}
}

// WithoutMkdir disables auto-creation of the root directory. New then fails
// with ErrNotFound when the root does not exist.
func WithoutMkdir() Option {
	return func(r *Repository) {
		r.mkdir = false
	}
}

// WithChunkSize sets the read chunk size. Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(r *Repository) {
		if size > 0 {
			r.chunkSize = size
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a filesystem repository rooted at the given directory. The
// root is created, intermediate directories included, unless WithoutMkdir
// is given, in which case a missing root is ErrNotFound. A root that exists
// but is a plain file is ErrNotADirectory.
func New(root string, opts ...Option) (*Repository, error) {
	r := &Repository{
		root:      root,
		mkdir:     true,
		chunkSize: DefaultChunkSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	info, err := os.Stat(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if !r.mkdir {
			return nil, fmt.Errorf("%w: repository root %s", repository.ErrNotFound, root)
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("creating repository root: %w", err)
		}
		r.logger.Debug("created repository root", "root", root)
	case err != nil:
		return nil, fmt.Errorf("inspecting repository root: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: repository root %s", repository.ErrNotADirectory, root)
	}
	return r, nil
}

// Root returns the repository's root directory.
func (r *Repository) Root() string {
	return r.root
}

// URL re-expresses the repository as a locator string under the given
// scheme, such that repository.Open on the result reconstructs an
// equivalent repository.
func (r *Repository) URL(scheme string) string {
	return scheme + "://" + r.root
}

func (r *Repository) path(key repository.Key) string {
	parts := append([]string{r.root}, key...)
	return filepath.Join(parts...)
}

// checkPrefixes fails with ErrPathConflict when any strict prefix of key
// resolves to a plain file: the write would have to pass through it.
func (r *Repository) checkPrefixes(key repository.Key) error {
	for i := 1; i < len(key); i++ {
		prefix := key[:i]
		info, err := os.Stat(r.path(prefix))
		if err != nil {
			break // nothing below this point exists yet
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", repository.ErrPathConflict, prefix)
		}
	}
	return nil
}

func (r *Repository) Read(key repository.Key) (repository.Chunks, error) {
	if err := repository.ValidateKey(key, true); err != nil {
		return nil, err
	}
	path := r.path(key)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, key)
	}
	return readChunks(path, r.chunkSize), nil
}

func (r *Repository) Write(key repository.Key, chunks repository.Chunks) error {
	if err := repository.ValidateKey(key, true); err != nil {
		return err
	}
	if err := r.checkPrefixes(key); err != nil {
		return err
	}
	path := r.path(key)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		// Entries nest under this key already; it cannot hold content too.
		return fmt.Errorf("%w: %s is a directory", repository.ErrPathConflict, key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}
	if r.atomic {
		return r.writeAtomic(path, chunks)
	}
	return writeDirect(path, chunks)
}

func writeDirect(path string, chunks repository.Chunks) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for writing: %w", path, err)
	}
	if err := copyChunks(f, chunks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeAtomic streams the sequence into a temporary file in the target's
// directory and publishes it with a single rename. A reader that opens the
// target before the rename sees the prior content in full; a failure at any
// point leaves the target untouched and removes the temporary file.
func (r *Repository) writeAtomic(path string, chunks repository.Chunks) error {
	dir, base := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	published := false
	defer func() {
		if !published {
			tmp.Close()
			if err := os.Remove(tmp.Name()); err != nil {
				r.logger.Warn("leaving stale temporary file", "path", tmp.Name(), "err", err)
			}
		}
	}()

	if err := copyChunks(tmp, chunks); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publishing %s: %w", path, err)
	}
	published = true
	return nil
}

func copyChunks(f *os.File, chunks repository.Chunks) error {
	for chunk, err := range chunks {
		if err != nil {
			return err
		}
		if _, err := f.Write(chunk); err != nil {
			return fmt.Errorf("writing to %s: %w", f.Name(), err)
		}
	}
	return nil
}

func (r *Repository) Exists(key repository.Key) bool {
	if err := repository.ValidateKey(key, false); err != nil || len(key) == 0 {
		return false
	}
	_, err := os.Stat(r.path(key))
	return err == nil
}

func (r *Repository) List(key repository.Key) ([]string, error) {
	if err := repository.ValidateKey(key, false); err != nil {
		return nil, err
	}
	path := r.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, key)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotADirectory, key)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", key, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func init() {
	repository.RegisterScheme("file", openURL)
}

// openURL constructs a Repository from a file:// locator. Query parameters
// carry the mode flags: atomic=true, mkdir=false, chunk=<bytes>.
func openURL(u *url.URL) (repository.Repository, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	var opts []Option
	query := u.Query()
	if ok, _ := strconv.ParseBool(query.Get("atomic")); ok {
		opts = append(opts, WithAtomic())
	}
	if query.Has("mkdir") {
		if ok, _ := strconv.ParseBool(query.Get("mkdir")); !ok {
			opts = append(opts, WithoutMkdir())
		}
	}
	if query.Has("chunk") {
		size, err := strconv.Atoi(query.Get("chunk"))
		if err != nil {
			return nil, fmt.Errorf("parsing chunk size: %w", err)
		}
		opts = append(opts, WithChunkSize(size))
	}
	return New(path, opts...)
}

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


// Package feedstore persists feed documents and indices behind a pluggable
// key-addressed repository. Open resolves a locator URL to a backend and
// assembles the decorator stack around it.
package feedstore

import (
	"io"
	"log/slog"

	"github.com/poiesic/feedstore/repository"

	// Registered backends.
	_ "github.com/poiesic/feedstore/repository/badger"
	_ "github.com/poiesic/feedstore/repository/fs"

	"github.com/poiesic/feedstore/repository/compress"
)

// Store owns a resolved repository backend and its optional decorators.
type Store struct {
	repo   repository.Repository
	base   repository.Repository
	buffer *repository.Buffer
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	buffered   bool
	compressed bool
	logger     *slog.Logger
}

// WithBuffer coalesces writes in memory until Flush.
func WithBuffer() Option {
	return func(o *storeOptions) {
		o.buffered = true
	}
}

// WithCompression stores entries zstd-compressed.
func WithCompression() Option {
	return func(o *storeOptions) {
		o.compressed = true
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open resolves the locator URL through the scheme registry and wraps the
// backend with the requested decorators: compression first, then the write
// buffer, so buffered reads see uncompressed content.
func Open(rawurl string, opts ...Option) (*Store, error) {
	options := &storeOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	base, err := repository.Open(rawurl)
	if err != nil {
		return nil, err
	}

	s := &Store{repo: base, base: base, logger: options.logger}
	if options.compressed {
		compressed, err := compress.New(s.repo)
		if err != nil {
			s.closeBase()
			return nil, err
		}
		s.repo = compressed
	}
	if options.buffered {
		s.buffer = repository.NewBuffer(s.repo)
		s.repo = s.buffer
	}
	s.logger.Debug("opened store", "url", rawurl,
		"buffered", options.buffered, "compressed", options.compressed)
	return s, nil
}

// Repository returns the store's repository with all decorators applied.
func (s *Store) Repository() repository.Repository {
	return s.repo
}

// Flush persists buffered writes. It is a no-op for unbuffered stores.
func (s *Store) Flush() error {
	if s.buffer == nil {
		return nil
	}
	pending := s.buffer.Pending()
	if err := s.buffer.Flush(); err != nil {
		s.logger.Error("error flushing write buffer", "err", err)
		return err
	}
	s.logger.Debug("flushed write buffer", "entries", pending)
	return nil
}

// Close flushes buffered writes and releases the backend if it holds
// resources.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.closeBase()
}

func (s *Store) closeBase() error {
	if closer, ok := s.base.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

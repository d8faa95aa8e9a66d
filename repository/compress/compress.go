// Package compress decorates any repository with transparent zstd
// compression. Content is compressed on Write and decompressed on Read; key
// addressing, existence, and listing pass through unchanged, so a
// compressed repository can wrap any backend or sit under the write buffer.
package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/poiesic/feedstore/repository"
)

// Repository wraps an inner repository, storing every entry zstd-framed.
// Write materializes the source sequence to compress it as one frame; this
// trades the contract's streaming allowance for the simple EncodeAll path,
// which is fine for feed documents but makes the decorator a poor fit for
// multi-gigabyte entries.
type Repository struct {
	inner   repository.Repository
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ repository.Repository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*options)

type options struct {
	level zstd.EncoderLevel
}

// WithLevel sets the zstd compression level. Default is
// zstd.SpeedDefault.
func WithLevel(level zstd.EncoderLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// New wraps inner with zstd compression. Entries already stored
// uncompressed in inner are not readable through the decorator.
func New(inner repository.Repository, opts ...Option) (*Repository, error) {
	o := &options{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(o)
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(o.level))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Repository{inner: inner, encoder: encoder, decoder: decoder}, nil
}

func (r *Repository) Read(key repository.Key) (repository.Chunks, error) {
	if err := repository.ValidateKey(key, true); err != nil {
		return nil, err
	}
	chunks, err := r.inner.Read(key)
	if err != nil {
		return nil, err
	}
	return func(yield func([]byte, error) bool) {
		compressed, err := repository.Collect(chunks)
		if err != nil {
			yield(nil, err)
			return
		}
		content, err := r.decoder.DecodeAll(compressed, nil)
		if err != nil {
			yield(nil, fmt.Errorf("decompressing %s: %w", key, err))
			return
		}
		yield(content, nil)
	}, nil
}

func (r *Repository) Write(key repository.Key, chunks repository.Chunks) error {
	if err := repository.ValidateKey(key, true); err != nil {
		return err
	}
	content, err := repository.Collect(chunks)
	if err != nil {
		return err
	}
	compressed := r.encoder.EncodeAll(content, nil)
	return r.inner.Write(key, repository.Bytes(compressed))
}

func (r *Repository) Exists(key repository.Key) bool {
	return r.inner.Exists(key)
}

func (r *Repository) List(key repository.Key) ([]string, error) {
	return r.inner.List(key)
}

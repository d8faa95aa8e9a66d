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


package repository

import (
	"fmt"
	"iter"
)

// Chunks is a lazy, finite, forward-only sequence of byte slices with
// in-band errors. A sequence is consumed at most once; producers that can
// restart hand out a fresh sequence per call. Yielded slices are owned by
// the consumer.
type Chunks = iter.Seq2[[]byte, error]

// Repository is the capability set of a key-addressed store. Implementations
// run ValidateKey at the top of every operation before backend-specific
// logic.
type Repository interface {
	// Read returns the content at key as a lazy chunk sequence. It fails
	// with ErrNotFound when nothing is stored at key or when key addresses
	// a directory-like node.
	Read(key Key) (Chunks, error)

	// Write creates or replaces the entry at key with the concatenation of
	// the chunk sequence. It fails with ErrPathConflict when a strict
	// prefix of key already holds a plain entry.
	Write(key Key, chunks Chunks) error

	// Exists reports whether an entry or directory-like node is present at
	// key. It is false for the empty key and for keys that fail validation.
	Exists(key Key) bool

	// List enumerates the immediate child segment names under key, in no
	// particular order. The empty key lists the top level; an empty
	// repository yields an empty result, not an error. It fails with
	// ErrNotFound when key does not resolve and ErrNotADirectory when it
	// resolves to a plain entry.
	List(key Key) ([]string, error)
}

// Bytes adapts in-memory chunks to a Chunks sequence.
func Bytes(chunks ...[]byte) Chunks {
	return func(yield func([]byte, error) bool) {
		for _, chunk := range chunks {
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Collect drains a chunk sequence into a single byte slice. It stops at the
// first in-band error and returns it.
func Collect(chunks Chunks) ([]byte, error) {
	var content []byte
	for chunk, err := range chunks {
		if err != nil {
			return nil, err
		}
		content = append(content, chunk...)
	}
	return content, nil
}

// Unimplemented carries the contract's shared key validation with every
// operation otherwise failing. Embed it to stub a Repository during
// development; a backend is complete only when nothing reaches it.
type Unimplemented struct{}

var _ Repository = Unimplemented{}

func (Unimplemented) Read(key Key) (Chunks, error) {
	if err := ValidateKey(key, true); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: Read", ErrNotImplemented)
}

func (Unimplemented) Write(key Key, chunks Chunks) error {
	if err := ValidateKey(key, true); err != nil {
		return err
	}
	return fmt.Errorf("%w: Write", ErrNotImplemented)
}

func (Unimplemented) Exists(key Key) bool {
	return false
}

func (Unimplemented) List(key Key) ([]string, error) {
	if err := ValidateKey(key, false); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: List", ErrNotImplemented)
}

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
	"strings"
)

// Key addresses a stored entry as an ordered sequence of path segments.
// A key with N segments nests N levels deep; every strict prefix of a key
// is a directory-like node once the key has been written.
type Key []string

// String renders the key with slash separators for messages and logs.
// It is not the storage encoding.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// encode produces the canonical map key used by the Buffer and the badger
// backend. Segments cannot contain NUL, so the join is unambiguous.
func (k Key) encode() string {
	return strings.Join(k, "\x00")
}

// ValidateKey is the shared pre-check every Repository operation runs before
// any backend-specific logic. With requireSegments, a zero-segment key fails
// with ErrEmptyKey; Exists and List accept the empty key (it addresses the
// top level) and pass false.
//
// Segments must be non-empty and contain no path separator or NUL, and may
// not be "." or "..", so that the key-to-path mapping stays bijective.
func ValidateKey(key Key, requireSegments bool) error {
	if len(key) == 0 {
		if requireSegments {
			return ErrEmptyKey
		}
		return nil
	}
	for i, segment := range key {
		switch {
		case segment == "":
			return fmt.Errorf("%w: segment %d is empty", ErrInvalidKey, i)
		case segment == "." || segment == "..":
			return fmt.Errorf("%w: segment %d is a relative path element", ErrInvalidKey, i)
		case strings.ContainsAny(segment, "/\\\x00"):
			return fmt.Errorf("%w: segment %q contains a path separator", ErrInvalidKey, segment)
		}
	}
	return nil
}

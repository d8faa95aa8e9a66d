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

import "errors"

var (
	// ErrEmptyKey indicates a zero-segment key was passed to an operation
	// that must address a concrete entry.
	ErrEmptyKey = errors.New("empty key")

	// ErrInvalidKey indicates a key segment that cannot address an entry
	// (empty string, path separator, NUL, or a relative path element).
	ErrInvalidKey = errors.New("invalid key segment")

	// ErrNotFound indicates no entry exists at the addressed location.
	ErrNotFound = errors.New("entry not found")

	// ErrNotADirectory indicates a plain entry where a directory-like node
	// was required.
	ErrNotADirectory = errors.New("not a directory")

	// ErrPathConflict indicates a write through a key prefix that already
	// holds a plain entry.
	ErrPathConflict = errors.New("path conflict")

	// ErrNotImplemented indicates a contract method that the backend does
	// not override. It signals an incomplete implementation, not bad input.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnknownScheme indicates a locator URL whose scheme has no
	// registered backend.
	ErrUnknownScheme = errors.New("unknown repository scheme")
)

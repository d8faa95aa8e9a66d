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


// Package repository defines the key-addressed storage abstraction used by
// feedstore to persist feed documents and indices.
//
// Entries are opaque byte streams addressed by a Key: an ordered sequence of
// path segments, analogous to a file path. The Repository interface is the
// complete capability set — Read, Write, Exists, List — and every backend
// implements it independently.
//
// # Constructor Return Type Pattern
//
// Concrete backends live in subpackages (fs, badger) and their constructors
// return concrete types; callers that want abstraction hold the values as
// Repository. The compress subpackage and the Buffer decorator in this
// package wrap any Repository without changing its interface.
//
// # Backend Selection
//
// Backends register a URL scheme with RegisterScheme, usually from an init
// function, so a repository can be constructed from a locator string:
//
//	repo, err := repository.Open("file:///var/lib/feedstore")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Streaming
//
// Read returns a Chunks sequence (iter.Seq2[[]byte, error]) that yields the
// content progressively; Write consumes one. Content is never required to
// fit in memory by the contract, though individual backends and decorators
// may materialize it and say so in their documentation.
//
// # Thread Safety
//
// Backends are as safe as their underlying medium. Filesystem writes are not
// safe against concurrent readers of the same key unless atomic mode is
// enabled. The Buffer decorator serializes all of its operations behind a
// single mutex.
package repository

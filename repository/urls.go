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
	"net/url"
	"sort"
	"sync"
)

// Opener constructs a Repository from a parsed locator URL.
type Opener func(*url.URL) (Repository, error)

var (
	schemesMu sync.RWMutex
	schemes   = make(map[string]Opener)
)

// RegisterScheme makes a backend available to Open under the given URL
// scheme. Backends call it from an init function. It panics when the opener
// is nil or the scheme is already taken, mirroring database/sql.Register.
func RegisterScheme(scheme string, opener Opener) {
	schemesMu.Lock()
	defer schemesMu.Unlock()
	if opener == nil {
		panic("repository: RegisterScheme opener is nil")
	}
	if _, dup := schemes[scheme]; dup {
		panic("repository: RegisterScheme called twice for scheme " + scheme)
	}
	schemes[scheme] = opener
}

// Schemes returns the sorted list of registered scheme names.
func Schemes() []string {
	schemesMu.RLock()
	defer schemesMu.RUnlock()
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open resolves a locator URL to a constructed Repository through the scheme
// registry. A URL re-expressed by a backend's URL method resolves back to an
// equivalent repository.
func Open(rawurl string) (Repository, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("parsing repository locator: %w", err)
	}
	schemesMu.RLock()
	opener, ok := schemes[u.Scheme]
	schemesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, u.Scheme)
	}
	return opener(u)
}

package repository

import (
	"slices"
	"sync"
)

// Buffer is a write-behind decorator around a Repository. Writes are
// materialized into memory and only reach the backend on Flush; reads and
// existence checks are served from the buffer when it holds the key. The
// buffer keeps one value per key ever written through it, unbounded.
//
// List always delegates to the backend: the buffer does not model directory
// structure, so unflushed entries do not appear as child nodes. Flush before
// listing when that matters.
type Buffer struct {
	mu      sync.Mutex
	backend Repository
	entries map[string]bufferEntry
}

type bufferEntry struct {
	key     Key
	content []byte
}

var _ Repository = (*Buffer)(nil)

// NewBuffer wraps backend in a write-behind buffer. The buffer owns its
// mutex; a single Buffer instance must be shared by everything that needs
// its writes coalesced.
func NewBuffer(backend Repository) *Buffer {
	return &Buffer{
		backend: backend,
		entries: make(map[string]bufferEntry),
	}
}

// Read serves the buffered content as a single chunk when key is buffered,
// and delegates to the backend otherwise. The chunk is a copy: yielded
// slices belong to the consumer, so handing out the buffer's own backing
// array would let a reader corrupt the value a later Flush persists.
func (b *Buffer) Read(key Key) (Chunks, error) {
	if err := ValidateKey(key, true); err != nil {
		return nil, err
	}
	b.mu.Lock()
	entry, ok := b.entries[key.encode()]
	var content []byte
	if ok {
		content = slices.Clone(entry.content)
	}
	b.mu.Unlock()
	if ok {
		return Bytes(content), nil
	}
	return b.backend.Read(key)
}

// Write materializes the chunk sequence into the buffer. The backend is not
// touched; an in-band error from the sequence leaves the buffer unchanged.
func (b *Buffer) Write(key Key, chunks Chunks) error {
	if err := ValidateKey(key, true); err != nil {
		return err
	}
	content, err := Collect(chunks)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.entries[key.encode()] = bufferEntry{key: key, content: content}
	b.mu.Unlock()
	return nil
}

func (b *Buffer) Exists(key Key) bool {
	if err := ValidateKey(key, false); err != nil || len(key) == 0 {
		return false
	}
	b.mu.Lock()
	_, ok := b.entries[key.encode()]
	b.mu.Unlock()
	if ok {
		return true
	}
	return b.backend.Exists(key)
}

// List delegates to the backend; buffered entries are invisible until Flush.
func (b *Buffer) List(key Key) ([]string, error) {
	if err := ValidateKey(key, false); err != nil {
		return nil, err
	}
	return b.backend.List(key)
}

// Flush writes every buffered entry through to the backend and drops it from
// the buffer. The mutex is held for the whole flush, so concurrent reads of
// buffered keys block while the backend persists them; that keeps the
// buffered-then-flushed transition invisible to readers at the cost of
// concurrency during a slow flush. Entries that fail to persist stay
// buffered and the first error is returned.
func (b *Buffer) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for encoded, entry := range b.entries {
		// The backend owns what it is yielded; keep it off our backing array
		// in case the write fails and the entry has to stay buffered.
		if err := b.backend.Write(entry.key, Bytes(slices.Clone(entry.content))); err != nil {
			return err
		}
		delete(b.entries, encoded)
	}
	return nil
}

// Pending reports the number of buffered, unflushed entries.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

package badger

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/feedstore/repository"
)

// Entry namespace prefix. Keys are "e" followed by NUL-prefixed segments,
// so the encoding of a key is a byte prefix of the encoding of all keys
// nested under it and of nothing else.
const entryNamespace = 'e'

// entryKey encodes a key's segment sequence into a database key.
// Format: 'e' (NUL segment)...
func entryKey(key repository.Key) []byte {
	size := 1
	for _, segment := range key {
		size += 1 + len(segment)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, entryNamespace)
	for _, segment := range key {
		buf = append(buf, 0)
		buf = append(buf, segment...)
	}
	return buf
}

// childPrefix returns the database key prefix shared by everything nested
// strictly under key. For the empty key that is the whole entry namespace.
func childPrefix(key repository.Key) []byte {
	return append(entryKey(key), 0)
}

// hasChildren reports whether any entry is nested strictly under key,
// making it a directory-like node.
func hasChildren(txn *badger.Txn, key repository.Key) bool {
	prefix := childPrefix(key)
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	options.Prefix = prefix
	it := txn.NewIterator(options)
	defer it.Close()
	it.Rewind()
	return it.ValidForPrefix(prefix)
}

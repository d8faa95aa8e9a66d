package fs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/feedstore/repository"
)

// DefaultChunkSize is the read chunk size used when WithChunkSize is not
// given.
const DefaultChunkSize = 4096

// ReadChunks returns a lazy sequence of fixed-size chunks read from f,
// taking ownership of the handle. Every chunk except the last has exactly
// size bytes. The handle is closed exactly once on every exit path:
// exhaustion, a read error, or the consumer abandoning the sequence early.
// The sequence is forward-only and not restartable; open the file again for
// a fresh read.
func ReadChunks(f *os.File, size int) repository.Chunks {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		defer f.Close()
		if info, err := f.Stat(); err != nil {
			yield(nil, fmt.Errorf("inspecting %s: %w", f.Name(), err))
			return
		} else if info.IsDir() {
			yield(nil, fmt.Errorf("%w: %s is a directory", repository.ErrNotFound, f.Name()))
			return
		}
		buf := make([]byte, size)
		for {
			n, err := f.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				if !yield(chunk, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("reading %s: %w", f.Name(), err))
				return
			}
		}
	}
}

// readChunks opens path lazily: the file is opened on first access of the
// returned sequence, so a Read that is never consumed never holds a handle.
func readChunks(path string, size int) repository.Chunks {
	return func(yield func([]byte, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = fmt.Errorf("%w: %s", repository.ErrNotFound, path)
			}
			yield(nil, err)
			return
		}
		ReadChunks(f, size)(yield)
	}
}

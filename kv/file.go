package kv

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/jpalmerr/dashgrid/board"
)

var _ board.KV = (*FileStore)(nil)

// fileExt is appended to every key to form its file name.
const fileExt = ".json"

// validKey restricts keys to names that are safe as file names.
var validKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ErrInvalidKey is returned for keys that cannot be used as file names.
var ErrInvalidKey = errors.New("invalid key")

// FileStore keeps each key in its own file under a directory.
//
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so readers never observe a partial document. Files are
// created with mode 0600 and the directory with 0700.
type FileStore struct {
	dir string

	mu sync.Mutex
	// written holds the digest of the last value this store wrote per key,
	// so Watch can tell its own writes from another process's.
	written map[string][sha256.Size]byte
}

// NewFileStore creates a [FileStore] rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{
		dir:     dir,
		written: make(map[string][sha256.Size]byte),
	}, nil
}

// Dir returns the store directory.
func (f *FileStore) Dir() string {
	return f.dir
}

// Path returns the file backing key.
func (f *FileStore) Path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key+fileExt), nil
}

// Get reads the file for key. A missing file reports ok=false.
func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := f.Path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, true, nil
}

// Put atomically replaces the file for key with value.
func (f *FileStore) Put(_ context.Context, key string, value []byte) error {
	path, err := f.Path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	// remove the temp file on any failure path
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	ok = true
	f.written[key] = sha256.Sum256(value)
	return nil
}

// ownWrite reports whether data is exactly what this store last wrote.
func (f *FileStore) ownWrite(key string, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum, ok := f.written[key]
	return ok && sum == sha256.Sum256(data)
}

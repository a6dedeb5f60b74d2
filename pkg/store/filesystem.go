package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// FilesystemStore persists one file per key under a root directory.
// Filenames are derived from keys by replacing ':' and '/' with '_'
// (spec §4.1, §6). The encoding is not injective: keys that differ only
// in which of ':', '/' or '_' stands at a position (for example "a:b",
// "a/b" and "a_b") are persisted under the same filename.
type FilesystemStore struct {
	mu   sync.Mutex
	root string
}

// NewFilesystemStore creates (if necessary) and opens a filesystem
// store rooted at dir.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemStore{root: dir}, nil
}

// EncodeKey maps a store key to the filename it is persisted under.
func EncodeKey(key string) string {
	r := strings.NewReplacer(":", "_", "/", "_")
	return r.Replace(key)
}

func (s *FilesystemStore) path(key string) string {
	return filepath.Join(s.root, EncodeKey(key))
}

func (s *FilesystemStore) Add(ctx context.Context, key string, value []byte, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return &werrors.KeyExistsError{Key: key}
		}
	}
	return os.WriteFile(path, value, 0o644)
}

func (s *FilesystemStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ListKeys returns the names of the files under the root directory,
// which are the encoded keys (EncodeKey), not the original keys; the
// encoding is not reversed.
func (s *FilesystemStore) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		keys = append(keys, e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

// Package store implements the Result Store (spec §4.1): a keyed,
// asynchronous persistence layer for run results, statuses, run
// history, and versioned state, with three interchangeable backends.
package store

import (
	"context"
	"sort"
	"sync"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// Store is the asynchronous keyed store of opaque values. All
// operations on a single instance are serialized, as if under one
// mutex, regardless of backend (spec §4.1).
type Store interface {
	// Add writes value under key. If overwrite is false and key already
	// exists, it returns a *errors.KeyExistsError and leaves the store
	// unchanged.
	Add(ctx context.Context, key string, value []byte, overwrite bool) error

	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// ListKeys returns every key currently present, in no particular order.
	ListKeys(ctx context.Context) ([]string, error)
}

// MemoryStore is an in-memory Store backend, safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Add(ctx context.Context, key string, value []byte, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !overwrite {
		if _, exists := s.values[key]; exists {
			return &werrors.KeyExistsError{Key: key}
		}
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

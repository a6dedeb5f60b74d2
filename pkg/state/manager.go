// Package state implements the versioned per-component State Manager
// (spec §4.2): staged state buffered in memory between
// PrepareNewVersion and CommitVersion, committed atomically via a
// pointer flip so readers always see either the old or the new
// version, never a partial one.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
	"github.com/wrenchdag/wrench/pkg/store"
)

const (
	currentVersionKey  = "pipeline:state:current_version"
	previousVersionKey = "pipeline:state:previous_version"
)

// Manager is the versioned State Manager bound to one Result Store.
type Manager struct {
	store store.Store

	mu      sync.Mutex
	pending string // run id of the version being staged, "" if none
	staged  map[string]map[string]any
}

// NewManager creates a State Manager over s.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

func stateKey(version, component string) string {
	return fmt.Sprintf("state:v%s:%s", version, component)
}

// GetComponentState returns the component's state under the current
// version, or nil if no version has been committed yet or the
// component never staged state.
func (m *Manager) GetComponentState(ctx context.Context, name string) (map[string]any, error) {
	version, err := m.readPointer(ctx, currentVersionKey)
	if err != nil {
		return nil, err
	}
	if version == "" {
		return nil, nil
	}
	return m.readState(ctx, version, name)
}

func (m *Manager) readState(ctx context.Context, version, name string) (map[string]any, error) {
	data, ok, err := m.store.Get(ctx, stateKey(version, name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) readPointer(ctx context.Context, key string) (string, error) {
	data, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return string(data), nil
}

// PrepareNewVersion starts a pending version keyed by runID. Between
// this call and Commit/Discard, the currently visible (committed)
// state is unchanged (spec §4.2 invariant).
func (m *Manager) PrepareNewVersion(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = runID
	m.staged = make(map[string]map[string]any)
}

// StageComponentState buffers a component's state in memory for the
// pending version.
func (m *Manager) StageComponentState(name string, componentState map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == "" {
		return &werrors.ValidationError{Message: "no pending state version; call PrepareNewVersion first"}
	}
	m.staged[name] = componentState
	return nil
}

// CommitVersion writes every staged entry under state:v<run_id>:<name>,
// then flips the previous/current version pointers. A crash or error
// before every staged entry is written never flips the pointers, so
// current_version only ever names a fully-populated version (spec §4.2
// failure policy, spec §8 invariant 4).
func (m *Manager) CommitVersion(ctx context.Context) error {
	m.mu.Lock()
	pending := m.pending
	staged := m.staged
	m.mu.Unlock()

	if pending == "" {
		return &werrors.ValidationError{Message: "no pending state version to commit"}
	}

	for name, componentState := range staged {
		data, err := json.Marshal(componentState)
		if err != nil {
			return err
		}
		if err := m.store.Add(ctx, stateKey(pending, name), data, true); err != nil {
			return err
		}
	}

	current, err := m.readPointer(ctx, currentVersionKey)
	if err != nil {
		return err
	}
	if err := m.store.Add(ctx, previousVersionKey, []byte(current), true); err != nil {
		return err
	}
	if err := m.store.Add(ctx, currentVersionKey, []byte(pending), true); err != nil {
		return err
	}

	m.mu.Lock()
	m.pending = ""
	m.staged = nil
	m.mu.Unlock()
	return nil
}

// DiscardPending drops the staging buffer without writing anything.
// The previous version, and hence all already-committed state, is left
// intact (spec §4.2, §7: a failed run discards and the next run reads
// the same state as before).
func (m *Manager) DiscardPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = ""
	m.staged = nil
}

// Rollback swaps current_version and previous_version, making the
// previously-active version active again. The engine never calls this
// itself; it exists as the operator-invoked escape hatch spec §9's open
// question anticipates.
func (m *Manager) Rollback(ctx context.Context) error {
	current, err := m.readPointer(ctx, currentVersionKey)
	if err != nil {
		return err
	}
	previous, err := m.readPointer(ctx, previousVersionKey)
	if err != nil {
		return err
	}
	if err := m.store.Add(ctx, currentVersionKey, []byte(previous), true); err != nil {
		return err
	}
	return m.store.Add(ctx, previousVersionKey, []byte(current), true)
}

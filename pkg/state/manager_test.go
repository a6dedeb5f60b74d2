package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenchdag/wrench/pkg/store"
)

func TestManager_CommitMakesStateVisible(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore())

	got, err := m.GetComponentState(ctx, "harvester")
	require.NoError(t, err)
	assert.Nil(t, got)

	m.PrepareNewVersion("run-1")
	require.NoError(t, m.StageComponentState("harvester", map[string]any{"previous_items": []any{"1"}}))
	require.NoError(t, m.CommitVersion(ctx))

	got, err = m.GetComponentState(ctx, "harvester")
	require.NoError(t, err)
	assert.Equal(t, []any{"1"}, got["previous_items"])
}

func TestManager_DiscardLeavesPriorVersionIntact(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore())

	m.PrepareNewVersion("run-1")
	require.NoError(t, m.StageComponentState("harvester", map[string]any{"n": 1}))
	require.NoError(t, m.CommitVersion(ctx))

	m.PrepareNewVersion("run-2")
	require.NoError(t, m.StageComponentState("harvester", map[string]any{"n": 2}))
	m.DiscardPending()

	got, err := m.GetComponentState(ctx, "harvester")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got["n"])
}

func TestManager_CommitWithoutPendingFails(t *testing.T) {
	m := NewManager(store.NewMemoryStore())
	err := m.CommitVersion(context.Background())
	assert.Error(t, err)
}

func TestManager_StageWithoutPendingFails(t *testing.T) {
	m := NewManager(store.NewMemoryStore())
	err := m.StageComponentState("harvester", map[string]any{})
	assert.Error(t, err)
}

func TestManager_Rollback(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore())

	m.PrepareNewVersion("run-1")
	require.NoError(t, m.StageComponentState("harvester", map[string]any{"n": 1}))
	require.NoError(t, m.CommitVersion(ctx))

	m.PrepareNewVersion("run-2")
	require.NoError(t, m.StageComponentState("harvester", map[string]any{"n": 2}))
	require.NoError(t, m.CommitVersion(ctx))

	got, err := m.GetComponentState(ctx, "harvester")
	require.NoError(t, err)
	assert.Equal(t, float64(2), got["n"])

	require.NoError(t, m.Rollback(ctx))
	got, err = m.GetComponentState(ctx, "harvester")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got["n"])
}

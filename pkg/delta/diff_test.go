package delta

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenchdag/wrench/pkg/pipeline"
)

func itemsByType(ops []pipeline.Operation) map[pipeline.OpType][]string {
	out := map[pipeline.OpType][]string{}
	for _, op := range ops {
		out[op.Type] = append(out[op.Type], op.ItemID)
	}
	for k := range out {
		sort.Strings(out[k])
	}
	return out
}

func TestDiff_NoPrior_AllAdds(t *testing.T) {
	current := []pipeline.Item{
		{ID: "1", Content: map[string]any{"n": "D1"}},
		{ID: "2", Content: map[string]any{"n": "D2"}},
	}
	ops, err := Diff(nil, current, false)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	for _, op := range ops {
		assert.Equal(t, pipeline.OpAdd, op.Type)
	}
}

func TestDiff_UpdateAddDelete(t *testing.T) {
	prior := []pipeline.Item{
		{ID: "1", Content: map[string]any{"n": "D1"}},
		{ID: "2", Content: map[string]any{"n": "D2"}},
	}
	current := []pipeline.Item{
		{ID: "1", Content: map[string]any{"n": "D1-updated"}},
		{ID: "3", Content: map[string]any{"n": "D3"}},
	}
	ops, err := Diff(prior, current, true)
	require.NoError(t, err)

	byType := itemsByType(ops)
	assert.Equal(t, []string{"3"}, byType[pipeline.OpAdd])
	assert.Equal(t, []string{"1"}, byType[pipeline.OpUpdate])
	assert.Equal(t, []string{"2"}, byType[pipeline.OpDelete])
}

func TestDiff_Idempotent_EmptyOnNoChange(t *testing.T) {
	items := []pipeline.Item{
		{ID: "1", Content: map[string]any{"n": "D1-updated"}},
		{ID: "3", Content: map[string]any{"n": "D3"}},
	}
	ops, err := Diff(items, items, true)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestDiff_EmptyItems(t *testing.T) {
	ops, err := Diff(nil, nil, false)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestValidateLog_RejectsDuplicateItemID(t *testing.T) {
	ops := []pipeline.Operation{
		{Type: pipeline.OpAdd, ItemID: "1"},
		{Type: pipeline.OpUpdate, ItemID: "1"},
	}
	assert.Error(t, ValidateLog(ops))
}

func TestHash_StableAcrossKeyOrder(t *testing.T) {
	a := map[string]any{"x": 1, "y": 2}
	b := map[string]any{"y": 2, "x": 1}
	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestHash_DifferentContentDiffers(t *testing.T) {
	ha := MustHash(map[string]any{"n": "D1"})
	hb := MustHash(map[string]any{"n": "D2"})
	assert.NotEqual(t, ha, hb)
}

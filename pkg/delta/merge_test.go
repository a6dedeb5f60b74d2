package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenchdag/wrench/pkg/pipeline"
)

func TestMergeGroups_DeleteAndAdd(t *testing.T) {
	item1 := pipeline.Item{ID: "item1"}
	item2 := pipeline.Item{ID: "item2"}
	item3 := pipeline.Item{ID: "item3"}

	prior := map[string]pipeline.Group{
		"G1": {Name: "G1", Items: []pipeline.Item{item1}, ParentClasses: map[string]struct{}{}},
		"G2": {Name: "G2", Items: []pipeline.Item{item2}, ParentClasses: map[string]struct{}{}},
	}
	newGroups := map[string]pipeline.Group{
		"G3": {Name: "G3", Items: []pipeline.Item{item3}, ParentClasses: map[string]struct{}{}},
	}

	merged, changed := MergeGroups(prior, newGroups, []pipeline.Item{item2})

	require.Contains(t, merged, "G1")
	require.Contains(t, merged, "G2")
	require.Contains(t, merged, "G3")
	assert.Equal(t, []pipeline.Item{item1}, merged["G1"].Items)
	assert.Empty(t, merged["G2"].Items)
	assert.Equal(t, []pipeline.Item{item3}, merged["G3"].Items)

	// Only the groups that actually changed are emitted.
	assert.Len(t, changed, 2)
	assert.Contains(t, changed, "G2")
	assert.Contains(t, changed, "G3")
	assert.NotContains(t, changed, "G1")
}

func TestMergeGroups_UpdateReplacesExistingItem(t *testing.T) {
	original := pipeline.Item{ID: "item1", Content: "v1"}
	updated := pipeline.Item{ID: "item1", Content: "v2"}

	prior := map[string]pipeline.Group{
		"G1": {Name: "G1", Items: []pipeline.Item{original}, ParentClasses: map[string]struct{}{}},
	}
	newGroups := map[string]pipeline.Group{
		"G1": {Name: "G1", Items: []pipeline.Item{updated}, ParentClasses: map[string]struct{}{"tag": {}}},
	}

	merged, changed := MergeGroups(prior, newGroups, nil)

	require.Len(t, merged["G1"].Items, 1)
	assert.Equal(t, updated, merged["G1"].Items[0])
	assert.Contains(t, merged["G1"].ParentClasses, "tag")
	assert.Contains(t, changed, "G1")
}

func TestMergeGroups_NoChangesWhenNothingAffected(t *testing.T) {
	prior := map[string]pipeline.Group{
		"G1": {Name: "G1", Items: []pipeline.Item{{ID: "item1"}}, ParentClasses: map[string]struct{}{}},
	}
	merged, changed := MergeGroups(prior, nil, nil)
	assert.Equal(t, prior, merged)
	assert.Empty(t, changed)
}

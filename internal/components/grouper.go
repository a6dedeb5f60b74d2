package components

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/wrenchdag/wrench/pkg/delta"
	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// GroupFunc clusters a set of items into named groups. The clustering
// algorithm itself (spatial/temporal aggregation, topic modeling, ...)
// is out of this module's scope (spec §1); GrouperComponent only
// applies it to the added/updated subset on incremental runs and merges
// the result into prior state per spec §4.8.2.
type GroupFunc func(ctx context.Context, items []pipeline.Item) (map[string]pipeline.Group, error)

// GrouperComponent wraps a GroupFunc as a pipeline.Component,
// maintaining previous_groups state and applying the incremental merge
// rules of spec §4.8.2.
type GrouperComponent struct {
	group GroupFunc
}

// NewGrouperComponent wraps g for use as a pipeline node.
func NewGrouperComponent(g GroupFunc) *GrouperComponent {
	return &GrouperComponent{group: g}
}

func (c *GrouperComponent) Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		Name: "grouper",
		Inputs: []pipeline.InputSpec{
			{Name: "items", Type: pipeline.TypeItems},
			{Name: "operations", Type: pipeline.TypeOperations},
			{Name: "state", Type: pipeline.TypeAny, HasDefault: true},
		},
		Outputs: []pipeline.OutputField{
			{Name: "groups", Type: pipeline.TypeGroups},
		},
	}
}

func (c *GrouperComponent) Run(ctx context.Context, inputs map[string]any, state map[string]any) (pipeline.Output, error) {
	items, err := decodeItems(inputs["items"])
	if err != nil {
		return pipeline.Output{}, err
	}
	ops, err := decodeOperations(inputs["operations"])
	if err != nil {
		return pipeline.Output{}, err
	}

	var prior map[string]pipeline.Group
	hadPrior := false
	if raw, ok := state["previous_groups"]; ok {
		prior, err = decodeGroupMap(raw)
		if err != nil {
			return pipeline.Output{}, err
		}
		hadPrior = true
	}

	// First run: no prior groups, run the full grouping over everything
	// and stage it as the new prior (spec §4.8.2 first-run rule).
	if !hadPrior {
		fresh, err := c.group(ctx, items)
		if err != nil {
			return pipeline.Output{}, err
		}
		return pipeline.Output{
			Data:  map[string]any{"groups": groupSlice(fresh)},
			State: map[string]any{"previous_groups": fresh},
		}, nil
	}

	// Subsequent run with an empty operation list: no downstream work,
	// prior state preserved unchanged (spec §4.8.2).
	if len(ops) == 0 {
		return pipeline.Output{
			Data:  map[string]any{"groups": []pipeline.Group{}},
			State: map[string]any{"previous_groups": prior},
		}, nil
	}

	added, updated, deleted := delta.Partition(ops)

	var regroupItems []pipeline.Item
	for _, op := range added {
		regroupItems = append(regroupItems, op.Item)
	}
	for _, op := range updated {
		regroupItems = append(regroupItems, op.Item)
	}
	var deletedItems []pipeline.Item
	for _, op := range deleted {
		deletedItems = append(deletedItems, op.Item)
	}

	var newGroups map[string]pipeline.Group
	if len(regroupItems) > 0 {
		newGroups, err = c.group(ctx, regroupItems)
		if err != nil {
			return pipeline.Output{}, err
		}
	}

	merged, changed := delta.MergeGroups(prior, newGroups, deletedItems)

	return pipeline.Output{
		Data:  map[string]any{"groups": groupSlice(changed)},
		State: map[string]any{"previous_groups": merged},
	}, nil
}

func decodeGroupMap(v any) (map[string]pipeline.Group, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]pipeline.Group
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// groupSlice returns the groups of m in a deterministic, name-sorted
// order so the component's output is stable run to run.
func groupSlice(m map[string]pipeline.Group) []pipeline.Group {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]pipeline.Group, 0, len(names))
	for _, name := range names {
		out = append(out, m[name])
	}
	return out
}

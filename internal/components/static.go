package components

import (
	"context"
	"fmt"

	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// StaticHarvester returns a fixed, caller-supplied item set on every
// call. It is a stand-in BaseHarvester for tests and for configs that
// have no concrete sensor/API adapter wired in yet; a real deployment
// registers its own BaseHarvester (an HTTP client against a sensor API,
// spec §1) under its own class_path instead.
type StaticHarvester struct {
	Items []pipeline.Item
}

func (h StaticHarvester) FetchItems(ctx context.Context) ([]pipeline.Item, error) {
	return h.Items, nil
}

// FieldGrouper clusters items into groups keyed by the string value of
// a named top-level content field (falling back to "ungrouped" when
// the field is absent or the content isn't a map). It stands in for a
// real spatial/temporal/topic clustering algorithm, which is out of
// this module's scope (spec §1).
type FieldGrouper struct {
	Field string
}

func (g FieldGrouper) Group(ctx context.Context, items []pipeline.Item) (map[string]pipeline.Group, error) {
	out := make(map[string]pipeline.Group)
	for _, it := range items {
		name := "ungrouped"
		if content, ok := it.Content.(map[string]any); ok {
			if v, ok := content[g.Field]; ok {
				name = fmt.Sprintf("%v", v)
			}
		}
		grp, ok := out[name]
		if !ok {
			grp = pipeline.NewGroup(name)
		}
		grp.Items = append(grp.Items, it)
		out[name] = grp
	}
	return out, nil
}

// AsGroupFunc adapts g to the GroupFunc signature GrouperComponent expects.
func (g FieldGrouper) AsGroupFunc() GroupFunc {
	return g.Group
}

package components

import (
	"context"
	"encoding/json"

	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// EnrichFunc produces service- and group-level metadata records from a
// pipeline's items and groups. The generation itself (LLM-based content
// generation, text clustering / topic modeling) is out of this module's
// scope (spec §1); EnricherComponent only carries its result through
// the engine's typed output contract.
type EnrichFunc func(ctx context.Context, items []pipeline.Item, groups []pipeline.Group) (serviceMetadata any, groupMetadata []any, err error)

// EnricherComponent wraps an EnrichFunc as a pipeline.Component (the
// "Enricher" row of spec §6's external-interfaces table).
type EnricherComponent struct {
	enrich EnrichFunc
}

// NewEnricherComponent wraps f for use as a pipeline node.
func NewEnricherComponent(f EnrichFunc) *EnricherComponent {
	return &EnricherComponent{enrich: f}
}

func (c *EnricherComponent) Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		Name: "enricher",
		Inputs: []pipeline.InputSpec{
			{Name: "items", Type: pipeline.TypeItems},
			{Name: "groups", Type: pipeline.TypeGroups},
			{Name: "operations", Type: pipeline.TypeOperations, HasDefault: true},
			{Name: "state", Type: pipeline.TypeAny, HasDefault: true},
		},
		Outputs: []pipeline.OutputField{
			{Name: "service_metadata", Type: pipeline.TypeMetadata},
			{Name: "group_metadata", Type: pipeline.TypeMetadata},
		},
	}
}

func (c *EnricherComponent) Run(ctx context.Context, inputs map[string]any, state map[string]any) (pipeline.Output, error) {
	items, err := decodeItems(inputs["items"])
	if err != nil {
		return pipeline.Output{}, err
	}
	groups, err := decodeGroupSlice(inputs["groups"])
	if err != nil {
		return pipeline.Output{}, err
	}

	serviceMetadata, groupMetadata, err := c.enrich(ctx, items, groups)
	if err != nil {
		return pipeline.Output{}, err
	}

	return pipeline.Output{
		Data: map[string]any{
			"service_metadata": serviceMetadata,
			"group_metadata":   groupMetadata,
		},
	}, nil
}

func decodeGroupSlice(v any) ([]pipeline.Group, error) {
	if v == nil {
		return nil, nil
	}
	// a whole-output binding surfaces groups as a one-field map
	// ({"groups": [...]}) while a field-qualified binding surfaces the
	// slice directly; accept either.
	if m, ok := v.(map[string]any); ok {
		v = m["groups"]
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var groups []pipeline.Group
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

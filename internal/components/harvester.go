// Package components provides the thin pipeline.Component wrappers
// named in spec §6's external-interfaces table: Harvester, Grouper,
// Enricher, Cataloger. Each wrapper owns the engine-facing contract
// (descriptor, state staging, delta application); the domain-specific
// work behind it (fetching from a sensor API, clustering text, scoring
// candidate groups, talking to a catalog REST endpoint) is an external
// collaborator interface the wrapper depends on but does not implement
// (spec §1 and §6).
package components

import (
	"context"
	"encoding/json"

	"github.com/wrenchdag/wrench/pkg/delta"
	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// BaseHarvester fetches the current set of items from a concrete
// source (a sensor API, a file feed, ...). Implementations are external
// collaborators and out of this module's scope (spec §1).
type BaseHarvester interface {
	FetchItems(ctx context.Context) ([]pipeline.Item, error)
}

// HarvesterComponent wraps a BaseHarvester as a pipeline.Component,
// synthesizing the ADD/UPDATE/DELETE operation log against the
// component's prior observation and short-circuiting the run when
// nothing changed (spec §4.8.1).
type HarvesterComponent struct {
	harvester BaseHarvester
}

// NewHarvesterComponent wraps h for use as a pipeline node.
func NewHarvesterComponent(h BaseHarvester) *HarvesterComponent {
	return &HarvesterComponent{harvester: h}
}

func (c *HarvesterComponent) Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		Name: "harvester",
		Inputs: []pipeline.InputSpec{
			{Name: "state", Type: pipeline.TypeAny, HasDefault: true},
		},
		Outputs: []pipeline.OutputField{
			{Name: "items", Type: pipeline.TypeItems},
			{Name: "operations", Type: pipeline.TypeOperations},
		},
	}
}

func (c *HarvesterComponent) Run(ctx context.Context, inputs map[string]any, state map[string]any) (pipeline.Output, error) {
	current, err := c.harvester.FetchItems(ctx)
	if err != nil {
		return pipeline.Output{}, err
	}

	var prior []pipeline.Item
	hadPrior := false
	if raw, ok := state["previous_items"]; ok {
		prior, err = decodeItems(raw)
		if err != nil {
			return pipeline.Output{}, err
		}
		hadPrior = true
	}

	ops, err := delta.Diff(prior, current, hadPrior)
	if err != nil {
		return pipeline.Output{}, err
	}
	if err := delta.ValidateLog(ops); err != nil {
		return pipeline.Output{}, err
	}

	out := pipeline.Output{
		Data: map[string]any{
			"items":      current,
			"operations": ops,
		},
		State: map[string]any{"previous_items": current},
	}

	// spec §4.8.1: an empty diff against an existing prior observation
	// stops the pipeline early; the new previous_items is still staged
	// (it is identical to the prior one, so committing it is a no-op).
	if hadPrior && len(ops) == 0 {
		out.StopPipeline = true
	}

	return out, nil
}

// decodeItems round-trips an arbitrary JSON-shaped value (what a
// component's prior state looks like once it has passed through the
// Result Store) back into []pipeline.Item.
func decodeItems(v any) ([]pipeline.Item, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var items []pipeline.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeOperations(v any) ([]pipeline.Operation, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var ops []pipeline.Operation
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

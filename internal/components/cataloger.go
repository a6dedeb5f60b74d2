package components

import (
	"context"

	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// BaseCataloger registers a service and its groups' metadata against a
// concrete catalog (a REST API, a database, ...). Implementations are
// external collaborators and out of this module's scope (spec §1, §6).
type BaseCataloger interface {
	Register(ctx context.Context, service any, groups []any, managedEntries []string) ([]string, error)
}

// CatalogerComponent wraps a BaseCataloger as a pipeline.Component (the
// "Sink (Cataloger)" row of spec §6's external-interfaces table).
type CatalogerComponent struct {
	cataloger BaseCataloger
}

// NewCatalogerComponent wraps c for use as a pipeline node.
func NewCatalogerComponent(c BaseCataloger) *CatalogerComponent {
	return &CatalogerComponent{cataloger: c}
}

func (c *CatalogerComponent) Descriptor() pipeline.Descriptor {
	return pipeline.Descriptor{
		Name: "cataloger",
		Inputs: []pipeline.InputSpec{
			{Name: "service_metadata", Type: pipeline.TypeMetadata},
			{Name: "group_metadata", Type: pipeline.TypeMetadata},
		},
		Outputs: []pipeline.OutputField{
			{Name: "success", Type: pipeline.TypeBool},
			{Name: "groups", Type: pipeline.TypeAny},
		},
	}
}

func (c *CatalogerComponent) Run(ctx context.Context, inputs map[string]any, state map[string]any) (pipeline.Output, error) {
	groupMetadata, _ := inputs["group_metadata"].([]any)

	ids, err := c.cataloger.Register(ctx, inputs["service_metadata"], groupMetadata, nil)
	if err != nil {
		return pipeline.Output{}, err
	}

	return pipeline.Output{
		Data: map[string]any{
			"success": true,
			"groups":  ids,
		},
	}, nil
}

// NoopCataloger discards every registration, returning no identifiers.
// Grounded in the original implementation's NoopCataloger
// (wrench/cataloger/noop/cataloger.py), used for testing and as the
// CLI's built-in default sink.
type NoopCataloger struct{}

func (NoopCataloger) Register(ctx context.Context, service any, groups []any, managedEntries []string) ([]string, error) {
	return nil, nil
}

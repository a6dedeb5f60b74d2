package config

import (
	"encoding/json"
	"fmt"

	"github.com/wrenchdag/wrench/internal/components"
	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// RegisterBuiltins wires the demo/default adapters in
// internal/components under fixed class paths, so a config file can
// exercise a full harvester→grouper→enricher→cataloger pipeline with no
// external system wired up. A real deployment registers its own
// factories under its own class paths on the same Registry.
func RegisterBuiltins(r *Registry) {
	r.Register("wrench.builtin.StaticHarvester", func(params map[string]any) (pipeline.Component, error) {
		var h components.StaticHarvester
		if err := decodeParams(params, &h); err != nil {
			return nil, err
		}
		return components.NewHarvesterComponent(&h), nil
	})

	r.Register("wrench.builtin.FieldGrouper", func(params map[string]any) (pipeline.Component, error) {
		field, _ := params["field"].(string)
		if field == "" {
			field = "category"
		}
		g := components.FieldGrouper{Field: field}
		return components.NewGrouperComponent(g.AsGroupFunc()), nil
	})

	r.Register("wrench.builtin.PassthroughEnricher", func(params map[string]any) (pipeline.Component, error) {
		serviceID, _ := params["service_id"].(string)
		return components.NewEnricherComponent(components.PassthroughEnrich(serviceID)), nil
	})

	r.Register("wrench.builtin.NoopCataloger", func(params map[string]any) (pipeline.Component, error) {
		return components.NewCatalogerComponent(components.NoopCataloger{}), nil
	})
}

// decodeParams round-trips params through JSON into dst, the same
// pattern the engine uses to move values between the generic
// map[string]any config surface and a typed struct.
func decodeParams(params map[string]any, dst any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding params: %w", err)
	}
	return nil
}

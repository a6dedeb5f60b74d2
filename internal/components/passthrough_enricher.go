package components

import (
	"context"

	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// ServiceRecord and GroupRecord are minimal metadata records a
// PassthroughEnrich produces. Real enrichers typically call an LLM or a
// classifier to produce a richer record; that generation step is out of
// this module's scope (spec §1) and any EnrichFunc may return whatever
// shape it likes — the engine treats metadata as an opaque payload.
type ServiceRecord struct {
	Identifier string `json:"identifier"`
	ItemCount  int    `json:"item_count"`
}

type GroupRecord struct {
	Identifier string `json:"identifier"`
	ItemCount  int    `json:"item_count"`
}

// PassthroughEnrich builds the minimal service/group metadata records
// above without any domain-specific enrichment, useful as a default for
// configs that have not wired a real enricher yet.
func PassthroughEnrich(serviceID string) EnrichFunc {
	return func(ctx context.Context, items []pipeline.Item, groups []pipeline.Group) (any, []any, error) {
		service := ServiceRecord{Identifier: serviceID, ItemCount: len(items)}

		groupMetadata := make([]any, 0, len(groups))
		for _, g := range groups {
			groupMetadata = append(groupMetadata, GroupRecord{
				Identifier: g.Name,
				ItemCount:  len(g.Items),
			})
		}
		return service, groupMetadata, nil
	}
}

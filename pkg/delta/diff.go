package delta

import "github.com/wrenchdag/wrench/pkg/pipeline"

// Diff computes the source-side operation log between a prior
// observation and the current set of items (spec §4.8.1). hadPrior
// distinguishes "no prior observation" (prior is nil/empty because this
// is the component's first run) from "prior observation was the empty
// set" — the former always emits ADD for everything; the latter is
// handled by the normal id-diff logic, which already emits the same
// result in that case.
func Diff(prior, current []pipeline.Item, hadPrior bool) ([]pipeline.Operation, error) {
	if !hadPrior {
		ops := make([]pipeline.Operation, 0, len(current))
		for _, it := range current {
			ops = append(ops, pipeline.Operation{Type: pipeline.OpAdd, ItemID: it.ID, Item: it})
		}
		return ops, nil
	}

	prevByID := make(map[string]pipeline.Item, len(prior))
	for _, it := range prior {
		prevByID[it.ID] = it
	}
	currByID := make(map[string]pipeline.Item, len(current))
	for _, it := range current {
		currByID[it.ID] = it
	}

	var ops []pipeline.Operation

	// Preserve current's order for ADD/UPDATE so emission order is
	// deterministic and matches the source's own iteration.
	for _, it := range current {
		prev, existed := prevByID[it.ID]
		if !existed {
			ops = append(ops, pipeline.Operation{Type: pipeline.OpAdd, ItemID: it.ID, Item: it})
			continue
		}
		prevHash, err := Hash(prev.Content)
		if err != nil {
			return nil, err
		}
		currHash, err := Hash(it.Content)
		if err != nil {
			return nil, err
		}
		if prevHash != currHash {
			ops = append(ops, pipeline.Operation{Type: pipeline.OpUpdate, ItemID: it.ID, Item: it})
		}
	}

	for _, it := range prior {
		if _, stillPresent := currByID[it.ID]; !stillPresent {
			ops = append(ops, pipeline.Operation{Type: pipeline.OpDelete, ItemID: it.ID, Item: it})
		}
	}

	return ops, nil
}

// Partition splits an operation list by type (spec §4.8.2 step a).
func Partition(ops []pipeline.Operation) (added, updated, deleted []pipeline.Operation) {
	for _, op := range ops {
		switch op.Type {
		case pipeline.OpAdd:
			added = append(added, op)
		case pipeline.OpUpdate:
			updated = append(updated, op)
		case pipeline.OpDelete:
			deleted = append(deleted, op)
		}
	}
	return added, updated, deleted
}

// ValidateLog checks the per-emission invariant that no two operations
// share an item id (spec §4.8.3).
func ValidateLog(ops []pipeline.Operation) error {
	seen := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		if _, dup := seen[op.ItemID]; dup {
			return &duplicateItemIDError{ItemID: op.ItemID}
		}
		seen[op.ItemID] = struct{}{}
	}
	return nil
}

type duplicateItemIDError struct {
	ItemID string
}

func (e *duplicateItemIDError) Error() string {
	return "operation log contains duplicate item id: " + e.ItemID
}

package delta

import (
	"sort"

	"github.com/wrenchdag/wrench/pkg/pipeline"
)

// MergeGroups implements spec §4.8.2 steps (c)-(e): merging a freshly
// regrouped set (newGroups, produced by the concrete grouper's own
// clustering logic over added ∪ updated items — that algorithm is
// explicitly out of the engine's scope, spec §1) into the prior group
// set, and removing deletedItems from whatever prior group held them.
//
// It returns the full merged set (the new prior to stage) and the
// subset of groups whose contents actually changed as a consequence —
// exactly what a component should emit for this run.
func MergeGroups(prior map[string]pipeline.Group, newGroups map[string]pipeline.Group, deletedItems []pipeline.Item) (merged, changed map[string]pipeline.Group) {
	merged = make(map[string]pipeline.Group, len(prior))
	for name, g := range prior {
		merged[name] = g.Clone()
	}

	changedNames := make(map[string]struct{})

	for _, item := range deletedItems {
		for name, g := range merged {
			idx := g.IndexOf(item.ID)
			if idx < 0 {
				continue
			}
			g.Items = append(g.Items[:idx], g.Items[idx+1:]...)
			merged[name] = g
			changedNames[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(newGroups))
	for name := range newGroups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fresh := newGroups[name]
		existing, ok := merged[name]
		if !ok {
			merged[name] = fresh.Clone()
			changedNames[name] = struct{}{}
			continue
		}
		for _, item := range fresh.Items {
			if idx := existing.IndexOf(item.ID); idx >= 0 {
				existing.Items[idx] = item
			} else {
				existing.Items = append(existing.Items, item)
			}
		}
		if existing.ParentClasses == nil {
			existing.ParentClasses = map[string]struct{}{}
		}
		for pc := range fresh.ParentClasses {
			existing.ParentClasses[pc] = struct{}{}
		}
		merged[name] = existing
		changedNames[name] = struct{}{}
	}

	changed = make(map[string]pipeline.Group, len(changedNames))
	for name := range changedNames {
		changed[name] = merged[name]
	}
	return merged, changed
}

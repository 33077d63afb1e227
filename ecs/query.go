package ecs

import "github.com/milk9111/combatcore/ecs/component"

// Query returns the live entities carrying every kind, in the dense order of
// the smallest store.
func Query(w *World, kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		s := w.store(k.ID())
		if s.Len() == 0 {
			return nil
		}
		sets = append(sets, s)
	}
	// iterate smaller set
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	var out []Entity
	for _, e := range smallest.Entities() {
		if !w.entities.isAlive(e) {
			continue
		}
		all := true
		for _, s := range sets {
			if s != smallest && !s.Has(e) {
				all = false
				break
			}
		}
		if all {
			out = append(out, e)
		}
	}
	return out
}

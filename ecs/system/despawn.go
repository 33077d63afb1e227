package system

import (
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/pool"
)

// DespawnSystem counts down defeated entities and removes them once their
// delay runs out. Pooled entities go back to their pool.
type DespawnSystem struct {
	pool pool.Pool
}

func NewDespawnSystem(p pool.Pool) *DespawnSystem {
	return &DespawnSystem{pool: p}
}

func (s *DespawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()
	ecs.ForEach(w, component.DespawnComponent.Kind(), func(e ecs.Entity, d *component.Despawn) {
		d.Remaining -= dt
		if d.Remaining > 1e-9 {
			return
		}
		ecs.Remove(w, e, component.DespawnComponent.Kind())
		if pooled, ok := ecs.Get(w, e, component.PooledComponent.Kind()); ok && s.pool != nil {
			s.pool.Release(e, pooled.Kind)
			return
		}
		ecs.DestroyEntity(w, e)
	})
}

package ecs

import "github.com/milk9111/combatcore/ecs/component"

// World owns entities, their component stores, the tick clock and the event
// bus. It is not safe for concurrent use.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	bus      Bus

	dt      float64
	elapsed float64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// Advance sets the delta time for the coming tick and moves the clock.
func (w *World) Advance(dt float64) {
	if w == nil {
		return
	}
	if dt < 0 {
		dt = 0
	}
	w.dt = dt
	w.elapsed += dt
}

// DeltaTime is the simulated seconds of the current tick.
func (w *World) DeltaTime() float64 {
	if w == nil {
		return 0
	}
	return w.dt
}

// Elapsed is the total simulated seconds since the world was created.
func (w *World) Elapsed() float64 {
	if w == nil {
		return 0
	}
	return w.elapsed
}

// Bus returns the world event bus.
func (w *World) Bus() *Bus {
	if w == nil {
		return nil
	}
	return &w.bus
}

func (w *World) store(id component.ComponentID) *SparseSet {
	if w == nil {
		return nil
	}
	return w.stores[id]
}

func (w *World) ensureStore(id component.ComponentID) *SparseSet {
	s := w.stores[id]
	if s == nil {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

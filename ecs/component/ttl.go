package component

// Despawn counts down simulated seconds after death before the entity is
// released to its pool or destroyed.
type Despawn struct {
	Remaining float64
}

var DespawnComponent = NewComponent[Despawn]()

// Pooled marks an entity owned by the pool manager.
type Pooled struct {
	Kind     int
	Overflow bool
	Active   bool
}

var PooledComponent = NewComponent[Pooled]()

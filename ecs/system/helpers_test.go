package system

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

type fixedRoll float64

func (f fixedRoll) Float64() float64 { return float64(f) }

type fighter struct {
	faction component.Faction
	pos     common.Vec3
	stats   component.Stats
	weapon  *component.Weapon
	player  bool
}

// spawnFighter builds a combatant the way the arena does, minus physics.
func spawnFighter(t *testing.T, w *ecs.World, f fighter) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	st := f.stats
	if st == (component.Stats{}) {
		st = component.DefaultStats()
	}
	require.NoError(t, ecs.Add(w, e, component.CombatantComponent.Kind(), &component.Combatant{Faction: f.faction}))
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: f.pos}))
	require.NoError(t, ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{}))
	require.NoError(t, ecs.Add(w, e, component.StatsComponent.Kind(), &st))
	require.NoError(t, ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{Current: st.MaxHealth, Max: st.MaxHealth}))
	require.NoError(t, ecs.Add(w, e, component.AttackClockComponent.Kind(), component.NewAttackClock()))
	if f.weapon != nil {
		wp := *f.weapon
		require.NoError(t, ecs.Add(w, e, component.WeaponComponent.Kind(), &wp))
	}
	if f.player {
		require.NoError(t, ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}))
	} else if f.faction == component.FactionEnemy {
		require.NoError(t, ecs.Add(w, e, component.EnemyTagComponent.Kind(), &component.EnemyTag{}))
	}
	return e
}

func setTarget(t *testing.T, w *ecs.World, e, target ecs.Entity) {
	t.Helper()
	from, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	to, _ := ecs.Get(w, target, component.TransformComponent.Kind())
	tg := &component.Target{Entity: uint64(target), Distance: from.Position.Flat().Dist(to.Position.Flat())}
	require.NoError(t, ecs.Add(w, e, component.TargetComponent.Kind(), tg))
}

// recorder collects bus events by kind.
type recorder struct {
	events []ecs.Event
}

func record(w *ecs.World, kinds ...ecs.EventKind) *recorder {
	r := &recorder{}
	for _, k := range kinds {
		w.Bus().Subscribe(k, func(ev ecs.Event) { r.events = append(r.events, ev) })
	}
	return r
}

func (r *recorder) count(kind ecs.EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// countingObserver tallies Observer callbacks.
type countingObserver struct {
	damage     map[component.Faction]int
	defeated   map[component.Faction]int
	spawned    int
	terminated map[component.TerminateReason]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		damage:     make(map[component.Faction]int),
		defeated:   make(map[component.Faction]int),
		terminated: make(map[component.TerminateReason]int),
	}
}

func (o *countingObserver) DamageDealt(f component.Faction, amount int) { o.damage[f] += amount }
func (o *countingObserver) Defeated(f component.Faction)                { o.defeated[f]++ }
func (o *countingObserver) ProjectileSpawned(component.Faction)         { o.spawned++ }
func (o *countingObserver) ProjectileTerminated(r component.TerminateReason) {
	o.terminated[r]++
}

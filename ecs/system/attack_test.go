package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/pool"
)

func club() *component.Weapon {
	return &component.Weapon{Kind: component.WeaponMelee, Delay: 1.0, Power: 1, Range: 2}
}

func bow(perShot int, step float64) *component.Weapon {
	return &component.Weapon{
		Kind:            component.WeaponRanged,
		Delay:           0.5,
		Power:           1.5,
		Range:           20,
		ProjectileSpeed: 10,
		Duration:        2,
		Size:            0.1,
		PerShot:         perShot,
		AngleStep:       step,
		Abilities:       component.AbilityNormal,
	}
}

func newProjectilePool(t *testing.T, w *ecs.World) *pool.Manager {
	t.Helper()
	m := pool.NewManager(w, nil)
	require.NoError(t, m.Register(0, pool.Config{Initial: 4, Max: 16}, ResetProjectile))
	return m
}

func TestAttackCooldown(t *testing.T) {
	w := ecs.NewWorld()
	attacker := spawnFighter(t, w, fighter{faction: component.FactionEnemy, weapon: club()})
	victim := spawnFighter(t, w, fighter{faction: component.FactionPlayer, player: true, pos: common.V(1, 0, 0)})
	setTarget(t, w, attacker, victim)
	c, _ := ecs.Get(w, attacker, component.CombatantComponent.Kind())
	c.State = component.StateAttack

	rec := record(w, ecs.EventAttackSignal)
	sched := ecs.NewScheduler(NewStateMachineSystem(nil), NewAttackSystem(nil, fixedRoll(0.99), nil))

	// t=0: the clock starts ready.
	sched.Tick(w, 0)
	assert.Equal(t, 1, rec.count(ecs.EventAttackSignal))

	// t=0.5: 0.5 < 1.0, nothing fires.
	sched.Tick(w, 0.5)
	assert.Equal(t, 1, rec.count(ecs.EventAttackSignal))

	// t=1.0: delay elapsed.
	sched.Tick(w, 0.5)
	assert.Equal(t, 2, rec.count(ecs.EventAttackSignal))

	sig := rec.events[0].Data.(ecs.AttackSignal)
	assert.Equal(t, victim, sig.Target)
	assert.Equal(t, 10, sig.Power)
	assert.False(t, sig.Critical)
}

func TestAttackNeverExceedsRate(t *testing.T) {
	w := ecs.NewWorld()
	attacker := spawnFighter(t, w, fighter{faction: component.FactionEnemy, weapon: club()})
	victim := spawnFighter(t, w, fighter{faction: component.FactionPlayer, player: true, pos: common.V(1, 0, 0)})
	setTarget(t, w, attacker, victim)
	c, _ := ecs.Get(w, attacker, component.CombatantComponent.Kind())
	c.State = component.StateAttack

	rec := record(w, ecs.EventAttackSignal)
	sched := ecs.NewScheduler(NewStateMachineSystem(nil), NewAttackSystem(nil, fixedRoll(0.99), nil))
	for i := 0; i < 600; i++ {
		sched.Tick(w, 1.0/60)
	}
	// First shot on tick 1, then one every 60 ticks.
	assert.Equal(t, 10, rec.count(ecs.EventAttackSignal))
}

func TestAttackPreconditions(t *testing.T) {
	cases := []struct {
		name   string
		weapon *component.Weapon
		target bool
		state  component.State
	}{
		{name: "no_weapon", weapon: nil, target: true, state: component.StateAttack},
		{name: "no_target", weapon: club(), target: false, state: component.StateAttack},
		{name: "not_attacking", weapon: club(), target: true, state: component.StateIdle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			attacker := spawnFighter(t, w, fighter{faction: component.FactionEnemy, weapon: tc.weapon})
			victim := spawnFighter(t, w, fighter{faction: component.FactionPlayer, player: true, pos: common.V(1, 0, 0)})
			if tc.target {
				setTarget(t, w, attacker, victim)
			}
			c, _ := ecs.Get(w, attacker, component.CombatantComponent.Kind())
			c.State = tc.state

			rec := record(w, ecs.EventAttackSignal)
			NewAttackSystem(nil, fixedRoll(0), nil).Update(w)
			w.Bus().Flush()
			assert.Empty(t, rec.events)
		})
	}
}

func TestRangedSpread(t *testing.T) {
	w := ecs.NewWorld()
	pm := newProjectilePool(t, w)
	obs := newCountingObserver()
	projectiles := NewProjectiles(pm, NewHealthPipeline(0, obs), obs)

	shooter := spawnFighter(t, w, fighter{faction: component.FactionPlayer, player: true, weapon: bow(3, 10)})
	enemy := spawnFighter(t, w, fighter{faction: component.FactionEnemy, pos: common.V(0, 0, 10)})
	setTarget(t, w, shooter, enemy)
	c, _ := ecs.Get(w, shooter, component.CombatantComponent.Kind())
	c.State = component.StateAttack

	rec := record(w, ecs.EventProjectileSpawned)
	NewAttackSystem(projectiles, fixedRoll(0.99), nil).Update(w)
	w.Bus().Flush()

	require.Equal(t, 3, rec.count(ecs.EventProjectileSpawned))
	var yaws []float64
	for _, ev := range rec.events {
		spawned := ev.Data.(ecs.ProjectileSpawned)
		assert.Equal(t, shooter, spawned.Owner)
		assert.Equal(t, 15, spawned.Power)
		yaws = append(yaws, spawned.Direction.Yaw())
	}
	assert.InDeltaSlice(t, []float64{-10, 0, 10}, yaws, 1e-6)
	assert.Equal(t, 3, obs.spawned)

	for _, ev := range rec.events {
		p, ok := ecs.Get(w, ev.Entity, component.ProjectileComponent.Kind())
		require.True(t, ok)
		assert.Equal(t, component.FactionPlayer, p.OwnerFaction)
		assert.Equal(t, component.LayerEnemy, p.HostileMask)
		assert.Equal(t, 0, p.Bounces)
		col, ok := ecs.Get(w, ev.Entity, component.ColliderComponent.Kind())
		require.True(t, ok)
		assert.True(t, col.Sensor)
		assert.Equal(t, component.LayerGeometry|component.LayerEnemy, col.Mask)
	}
}

func TestAttackAimsAtTarget(t *testing.T) {
	w := ecs.NewWorld()
	attacker := spawnFighter(t, w, fighter{faction: component.FactionEnemy, weapon: club()})
	victim := spawnFighter(t, w, fighter{faction: component.FactionPlayer, player: true, pos: common.V(1, 0, 0)})
	setTarget(t, w, attacker, victim)
	c, _ := ecs.Get(w, attacker, component.CombatantComponent.Kind())
	c.State = component.StateAttack
	c.LookDir = common.V(0, 0, 1)

	NewAttackSystem(nil, fixedRoll(0.99), nil).Update(w)

	assert.True(t, c.LookDir.ApproxEqual(common.V(1, 0, 0), 1e-9))
	tr, _ := ecs.Get(w, attacker, component.TransformComponent.Kind())
	assert.InDelta(t, 90, tr.Yaw, 1e-9)
	clock, _ := ecs.Get(w, attacker, component.AttackClockComponent.Kind())
	assert.Zero(t, clock.SinceLast)
}

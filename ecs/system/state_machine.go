package system

import (
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

type stateSet uint8

func states(ss ...component.State) stateSet {
	var set stateSet
	for _, s := range ss {
		set |= 1 << s
	}
	return set
}

func (s stateSet) has(st component.State) bool {
	return s&(1<<st) != 0
}

// fsmInput is the per-tick view the transition guards read.
type fsmInput struct {
	health    *component.Health
	isPlayer  bool
	wantsMove bool
	// attackReady is a live target in weapon range with no movement input
	// overriding it.
	attackReady bool
	clockReady  bool
}

type transition struct {
	from  stateSet
	to    component.State
	guard func(in fsmInput) bool
}

// Rows are evaluated in order and the first match wins. Dead has no
// outgoing rows.
var transitions = []transition{
	{
		from:  states(component.StateIdle, component.StateMove, component.StateAttack),
		to:    component.StateDead,
		guard: func(in fsmInput) bool { return in.health != nil && in.health.Current <= 0 },
	},
	{
		from:  states(component.StateIdle),
		to:    component.StateMove,
		guard: func(in fsmInput) bool { return in.wantsMove && !in.attackReady },
	},
	{
		from:  states(component.StateIdle, component.StateMove),
		to:    component.StateAttack,
		guard: func(in fsmInput) bool { return in.attackReady && in.clockReady },
	},
	{
		from:  states(component.StateAttack),
		to:    component.StateMove,
		guard: func(in fsmInput) bool { return !in.attackReady && in.wantsMove },
	},
	{
		from:  states(component.StateAttack),
		to:    component.StateIdle,
		guard: func(in fsmInput) bool { return !in.attackReady },
	},
	{
		from:  states(component.StateMove),
		to:    component.StateIdle,
		guard: func(in fsmInput) bool { return !in.wantsMove },
	},
}

// nextState returns the target of the first matching row, if any.
func nextState(cur component.State, in fsmInput) (component.State, bool) {
	for _, t := range transitions {
		if t.from.has(cur) && t.guard(in) {
			return t.to, true
		}
	}
	return cur, false
}

// StateMachineSystem advances attack clocks and evaluates the Idle/Move/
// Attack/Dead transition table for every combatant.
type StateMachineSystem struct {
	health *HealthPipeline
}

func NewStateMachineSystem(health *HealthPipeline) *StateMachineSystem {
	return &StateMachineSystem{health: health}
}

func (s *StateMachineSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach(w, component.AttackClockComponent.Kind(), func(_ ecs.Entity, clock *component.AttackClock) {
		clock.SinceLast += dt
	})

	ecs.ForEach(w, component.CombatantComponent.Kind(), func(e ecs.Entity, c *component.Combatant) {
		if c.State == component.StateDead {
			return
		}
		in := s.input(w, e, c)
		next, ok := nextState(c.State, in)
		if ok && next != c.State {
			s.enter(w, e, c, next)
		}
		if c.State == component.StateMove {
			c.MoveDir = c.Intent
		}
	})
}

func (s *StateMachineSystem) input(w *ecs.World, e ecs.Entity, c *component.Combatant) fsmInput {
	in := fsmInput{wantsMove: !c.Intent.IsZero()}
	in.health, _ = ecs.Get(w, e, component.HealthComponent.Kind())
	in.isPlayer = ecs.Has(w, e, component.PlayerTagComponent.Kind())

	weapon, hasWeapon := ecs.Get(w, e, component.WeaponComponent.Kind())
	target, hasTarget := ecs.Get(w, e, component.TargetComponent.Kind())
	inRange := hasWeapon && hasTarget && target.Valid() && target.Distance <= weapon.Range
	in.attackReady = inRange && !(in.isPlayer && in.wantsMove)

	if clock, ok := ecs.Get(w, e, component.AttackClockComponent.Kind()); ok && hasWeapon {
		in.clockReady = clock.Ready(weapon.Delay)
	}
	return in
}

func (s *StateMachineSystem) enter(w *ecs.World, e ecs.Entity, c *component.Combatant, next component.State) {
	switch next {
	case component.StateDead:
		if s.health != nil {
			s.health.Kill(w, e, ecs.Entity(c.Killer))
			return
		}
		c.State = component.StateDead
		c.Defeated = true
		c.Attacking = false
		c.MoveDir = common.Vec3{}
		return
	case component.StateAttack:
		c.MoveDir = common.Vec3{}
		c.Attacking = true
	case component.StateIdle:
		c.MoveDir = common.Vec3{}
		c.Attacking = false
	case component.StateMove:
		c.Attacking = false
	}
	c.State = next
}

package arena

import (
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// Movable is anything that can be steered.
type Movable interface {
	Position() common.Vec3
	SetMoveInput(dir common.Vec3)
}

// Attacker carries a weapon and aims at a target.
type Attacker interface {
	Weapon() (component.Weapon, bool)
	Target() (Targetable, bool)
	SetTarget(t Targetable)
}

// Targetable can be hit.
type Targetable interface {
	Entity() ecs.Entity
	Alive() bool
	Health() (component.Health, bool)
}

// Handle is the capability view of one combatant.
type Handle struct {
	arena *Arena
	e     ecs.Entity
}

var (
	_ Movable    = (*Handle)(nil)
	_ Attacker   = (*Handle)(nil)
	_ Targetable = (*Handle)(nil)
)

func (h *Handle) Entity() ecs.Entity {
	return h.e
}

// Alive reports whether the entity exists and is not defeated.
func (h *Handle) Alive() bool {
	if !ecs.IsAlive(h.arena.world, h.e) {
		return false
	}
	c, ok := ecs.Get(h.arena.world, h.e, component.CombatantComponent.Kind())
	return ok && !c.Defeated
}

func (h *Handle) State() component.State {
	c, ok := ecs.Get(h.arena.world, h.e, component.CombatantComponent.Kind())
	if !ok {
		return component.StateDead
	}
	return c.State
}

func (h *Handle) Faction() component.Faction {
	c, ok := ecs.Get(h.arena.world, h.e, component.CombatantComponent.Kind())
	if !ok {
		return 0
	}
	return c.Faction
}

func (h *Handle) Health() (component.Health, bool) {
	hp, ok := ecs.Get(h.arena.world, h.e, component.HealthComponent.Kind())
	if !ok {
		return component.Health{}, false
	}
	return *hp, true
}

func (h *Handle) Stats() (component.Stats, bool) {
	st, ok := ecs.Get(h.arena.world, h.e, component.StatsComponent.Kind())
	if !ok {
		return component.Stats{}, false
	}
	return *st, true
}

func (h *Handle) Position() common.Vec3 {
	tr, ok := ecs.Get(h.arena.world, h.e, component.TransformComponent.Kind())
	if !ok {
		return common.Vec3{}
	}
	return tr.Position
}

// SetPosition teleports the entity; the physics body follows on the next
// tick.
func (h *Handle) SetPosition(p common.Vec3) {
	if tr, ok := ecs.Get(h.arena.world, h.e, component.TransformComponent.Kind()); ok {
		tr.Position = p
	}
}

func (h *Handle) SetMoveInput(dir common.Vec3) {
	in, ok := ecs.Get(h.arena.world, h.e, component.MoveInputComponent.Kind())
	if !ok {
		in = &component.MoveInput{}
		if err := ecs.Add(h.arena.world, h.e, component.MoveInputComponent.Kind(), in); err != nil {
			return
		}
	}
	in.Dir = dir
}

func (h *Handle) Weapon() (component.Weapon, bool) {
	w, ok := ecs.Get(h.arena.world, h.e, component.WeaponComponent.Kind())
	if !ok {
		return component.Weapon{}, false
	}
	return *w, true
}

func (h *Handle) Target() (Targetable, bool) {
	t, ok := ecs.Get(h.arena.world, h.e, component.TargetComponent.Kind())
	if !ok || !t.Valid() {
		return nil, false
	}
	return h.arena.Handle(ecs.Entity(t.Entity)), true
}

// SetTarget assigns a target directly. Entities with an aggro query replace
// it on the next tick; remove their Targeting to keep a manual target.
func (h *Handle) SetTarget(t Targetable) {
	w := h.arena.world
	target := &component.Target{}
	if t != nil {
		target.Entity = uint64(t.Entity())
		if to, ok := ecs.Get(w, t.Entity(), component.TransformComponent.Kind()); ok {
			target.Distance = h.Position().Flat().Dist(to.Position.Flat())
		}
	}
	if cur, ok := ecs.Get(w, h.e, component.TargetComponent.Kind()); ok {
		*cur = *target
		return
	}
	_ = ecs.Add(w, h.e, component.TargetComponent.Kind(), target)
}

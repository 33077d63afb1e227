package system

import (
	"log/slog"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// IntentSystem refreshes targets, asks each entity's brain where it wants to
// go and keeps the look direction tracking outside of Attack.
type IntentSystem struct {
	collision CollisionWorld
	brains    Brains
	logger    *slog.Logger
	warned    map[ecs.Entity]bool
}

func NewIntentSystem(collision CollisionWorld, brains Brains, logger *slog.Logger) *IntentSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentSystem{
		collision: collision,
		brains:    brains,
		logger:    logger,
		warned:    make(map[ecs.Entity]bool),
	}
}

func (s *IntentSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for e := range s.warned {
		if !ecs.IsAlive(w, e) {
			delete(s.warned, e)
		}
	}

	ecs.ForEach2(w, component.CombatantComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, c *component.Combatant, tr *component.Transform) {
		if c.State == component.StateDead {
			return
		}

		ctx := &BrainContext{
			World:    w,
			Entity:   e,
			Self:     c,
			Position: tr.Position,
			Dt:       w.DeltaTime(),
		}
		ctx.Weapon, _ = ecs.Get(w, e, component.WeaponComponent.Kind())
		s.refreshTarget(w, e, c, tr, ctx)

		c.Intent = s.intent(e, ctx).Flat().Normalize()

		if c.State == component.StateAttack {
			return
		}
		_, isPlayer := ecs.Get(w, e, component.PlayerTagComponent.Kind())
		switch {
		case isPlayer && !c.Intent.IsZero():
			c.LookDir = c.Intent
		case ctx.HasTarget:
			if dir := tr.Position.FlatDir(ctx.TargetPos); !dir.IsZero() {
				c.LookDir = dir
			}
		case !c.Intent.IsZero():
			c.LookDir = c.Intent
		}
	})
}

// refreshTarget re-runs the aggro query for entities with Targeting. Other
// entities keep an externally assigned target while it stays alive.
func (s *IntentSystem) refreshTarget(w *ecs.World, e ecs.Entity, c *component.Combatant, tr *component.Transform, ctx *BrainContext) {
	target, have := ecs.Get(w, e, component.TargetComponent.Kind())
	if !have {
		target = &component.Target{}
		if err := ecs.Add(w, e, component.TargetComponent.Kind(), target); err != nil {
			return
		}
	}

	if tc, ok := ecs.Get(w, e, component.TargetingComponent.Kind()); ok {
		found, ok := FindTarget(s.collision, e, tr.Position, tc.HalfExtent, HostileMask(c.Faction), func(cand ecs.Entity) bool {
			return !isDead(w, cand)
		})
		if !ok {
			found = component.Target{}
		}
		*target = found
	} else if target.Valid() {
		if isDead(w, ecs.Entity(target.Entity)) {
			*target = component.Target{}
		} else if pos, ok := ecs.Get(w, ecs.Entity(target.Entity), component.TransformComponent.Kind()); ok {
			target.Distance = tr.Position.Flat().Dist(pos.Position.Flat())
		}
	}

	if !target.Valid() {
		return
	}
	pos, ok := ecs.Get(w, ecs.Entity(target.Entity), component.TransformComponent.Kind())
	if !ok {
		*target = component.Target{}
		return
	}
	ctx.Target = *target
	ctx.TargetPos = pos.Position
	ctx.HasTarget = true
}

func (s *IntentSystem) intent(e ecs.Entity, ctx *BrainContext) common.Vec3 {
	ctrl, ok := ecs.Get(ctx.World, e, component.ControllerComponent.Kind())
	if !ok {
		return common.Vec3{}
	}
	brain, ok := s.brains[ctrl.Kind]
	if !ok || brain == nil {
		if !s.warned[e] {
			s.warned[e] = true
			s.logger.Warn("ai: unknown controller", slog.String("entity", e.String()), slog.String("controller", string(ctrl.Kind)))
		}
		return common.Vec3{}
	}
	return brain.Intent(ctx)
}

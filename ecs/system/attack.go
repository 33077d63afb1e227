package system

import (
	"log/slog"

	"github.com/milk9111/combatcore/combat"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// AttackSystem fires weapons for combatants in the Attack state once their
// clock allows. Melee attacks are announced with an AttackSignal for the
// hit layer to resolve; ranged attacks spawn projectiles.
type AttackSystem struct {
	projectiles *Projectiles
	rng         combat.Roller
	logger      *slog.Logger
	warned      map[component.WeaponKind]bool
}

func NewAttackSystem(projectiles *Projectiles, rng combat.Roller, logger *slog.Logger) *AttackSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttackSystem{
		projectiles: projectiles,
		rng:         rng,
		logger:      logger,
		warned:      make(map[component.WeaponKind]bool),
	}
}

func (s *AttackSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach3(w, component.CombatantComponent.Kind(), component.TransformComponent.Kind(), component.AttackClockComponent.Kind(), func(e ecs.Entity, c *component.Combatant, tr *component.Transform, clock *component.AttackClock) {
		if c.State != component.StateAttack {
			return
		}
		s.Fire(w, e, c, tr, clock)
	})
}

// Fire attempts one attack. It reports whether anything was fired; a missing
// weapon or target is a silent no-op.
func (s *AttackSystem) Fire(w *ecs.World, e ecs.Entity, c *component.Combatant, tr *component.Transform, clock *component.AttackClock) bool {
	weapon, ok := ecs.Get(w, e, component.WeaponComponent.Kind())
	if !ok {
		return false
	}
	target, ok := ecs.Get(w, e, component.TargetComponent.Kind())
	if !ok || !target.Valid() {
		return false
	}
	if !clock.Ready(weapon.Delay) {
		return false
	}
	targetEntity := ecs.Entity(target.Entity)
	targetTr, ok := ecs.Get(w, targetEntity, component.TransformComponent.Kind())
	if !ok || isDead(w, targetEntity) {
		return false
	}

	aim := tr.Position.FlatDir(targetTr.Position)
	if aim.IsZero() {
		aim = c.LookDir.Flat().Normalize()
	} else {
		c.LookDir = aim
		tr.Yaw = aim.Yaw()
	}

	st := component.DefaultStats()
	if stats, ok := ecs.Get(w, e, component.StatsComponent.Kind()); ok {
		st = *stats
	}
	power, critical := combat.RollAttack(s.rng, st.Attack, weapon.Power, st.CriticalRatePct)

	switch weapon.Kind {
	case component.WeaponMelee:
		w.Bus().Publish(ecs.Event{
			Kind:   ecs.EventAttackSignal,
			Entity: e,
			Data:   ecs.AttackSignal{Target: targetEntity, Power: power, Critical: critical},
		})
	case component.WeaponRanged:
		if s.projectiles == nil || aim.IsZero() {
			return false
		}
		for _, dir := range combat.SpreadDirections(aim, weapon.PerShot, weapon.AngleStep, weapon.Spread, s.rng) {
			s.projectiles.Spawn(w, Shot{
				Owner:     e,
				Faction:   c.Faction,
				Origin:    tr.Position,
				Direction: dir,
				Weapon:    *weapon,
				Power:     power,
				Critical:  critical,
			})
		}
	default:
		if !s.warned[weapon.Kind] {
			s.warned[weapon.Kind] = true
			s.logger.Warn("attack: unknown weapon kind", slog.String("entity", e.String()), slog.String("kind", string(weapon.Kind)))
		}
		return false
	}

	clock.SinceLast = 0
	return true
}

package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// DefaultRadius is the collider radius of a combatant that sets none.
const DefaultRadius = 0.5

// CombatantConfig describes one player or enemy. Stats are not resolved
// here; the entity carries a StatsSource and a pending refresh request.
type CombatantConfig struct {
	Name       string
	Faction    component.Faction
	Profile    string
	Position   common.Vec3
	Radius     float64
	Weapon     *component.Weapon
	Controller component.ControllerKind
	Script     string
	Targeting  *component.Targeting
}

func NewCombatant(w *ecs.World, cfg CombatantConfig) (ecs.Entity, error) {
	if cfg.Faction != component.FactionPlayer && cfg.Faction != component.FactionEnemy {
		return 0, errors.New("combatant: faction must be player or enemy")
	}
	radius := cfg.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}

	e := ecs.CreateEntity(w)
	fail := func(what string, err error) (ecs.Entity, error) {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("combatant: add %s: %w", what, err)
	}

	if cfg.Name != "" {
		if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: cfg.Name}); err != nil {
			return fail("name", err)
		}
	}

	if cfg.Faction == component.FactionPlayer {
		if err := ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
			return fail("player tag", err)
		}
		if err := ecs.Add(w, e, component.MoveInputComponent.Kind(), &component.MoveInput{}); err != nil {
			return fail("move input", err)
		}
	} else {
		if err := ecs.Add(w, e, component.EnemyTagComponent.Kind(), &component.EnemyTag{}); err != nil {
			return fail("enemy tag", err)
		}
	}

	if err := ecs.Add(w, e, component.CombatantComponent.Kind(), &component.Combatant{
		State:   component.StateIdle,
		Faction: cfg.Faction,
	}); err != nil {
		return fail("combatant", err)
	}

	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: cfg.Position}); err != nil {
		return fail("transform", err)
	}

	if err := ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{}); err != nil {
		return fail("velocity", err)
	}

	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Radius:   radius,
		Category: factionLayer(cfg.Faction),
		Mask:     component.LayerGeometry | component.LayerProjectile,
	}); err != nil {
		return fail("collider", err)
	}

	if err := ecs.Add(w, e, component.StatsSourceComponent.Kind(), &component.StatsSource{Profile: cfg.Profile}); err != nil {
		return fail("stats source", err)
	}
	if err := ecs.Add(w, e, component.StatsRefreshRequestComponent.Kind(), &component.StatsRefreshRequest{}); err != nil {
		return fail("stats refresh", err)
	}

	if cfg.Weapon != nil {
		wp := *cfg.Weapon
		if err := ecs.Add(w, e, component.WeaponComponent.Kind(), &wp); err != nil {
			return fail("weapon", err)
		}
	}

	if err := ecs.Add(w, e, component.AttackClockComponent.Kind(), component.NewAttackClock()); err != nil {
		return fail("attack clock", err)
	}

	if err := ecs.Add(w, e, component.TargetComponent.Kind(), &component.Target{}); err != nil {
		return fail("target", err)
	}

	if cfg.Targeting != nil {
		tg := *cfg.Targeting
		if err := ecs.Add(w, e, component.TargetingComponent.Kind(), &tg); err != nil {
			return fail("targeting", err)
		}
	}

	ctrl := cfg.Controller
	if ctrl == "" {
		ctrl = component.ControllerEnemy
		if cfg.Faction == component.FactionPlayer {
			ctrl = component.ControllerPlayer
		}
	}
	if err := ecs.Add(w, e, component.ControllerComponent.Kind(), &component.Controller{Kind: ctrl, Script: cfg.Script}); err != nil {
		return fail("controller", err)
	}

	return e, nil
}

func factionLayer(f component.Faction) uint32 {
	if f == component.FactionPlayer {
		return component.LayerPlayer
	}
	return component.LayerEnemy
}

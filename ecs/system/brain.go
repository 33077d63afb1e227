package system

import (
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// BrainContext is what a strategy sees of its entity for one tick.
type BrainContext struct {
	World     *ecs.World
	Entity    ecs.Entity
	Self      *component.Combatant
	Position  common.Vec3
	Weapon    *component.Weapon
	Target    component.Target
	TargetPos common.Vec3
	HasTarget bool
	Dt        float64
}

// InRange reports whether the current target is within weapon range.
func (c *BrainContext) InRange() bool {
	return c.HasTarget && c.Weapon != nil && c.Target.Distance <= c.Weapon.Range
}

// Brain produces the direction an entity wants to travel this tick. The
// result is flattened and normalized by the caller; zero means stay put.
type Brain interface {
	Intent(ctx *BrainContext) common.Vec3
}

// Brains maps controller kinds to strategies.
type Brains map[component.ControllerKind]Brain

// PlayerBrain follows externally supplied move input.
type PlayerBrain struct{}

func (PlayerBrain) Intent(ctx *BrainContext) common.Vec3 {
	in, ok := ecs.Get(ctx.World, ctx.Entity, component.MoveInputComponent.Kind())
	if !ok {
		return common.Vec3{}
	}
	return in.Dir
}

// ChaseBrain walks toward the target until it is within weapon range or
// beyond the follow range.
type ChaseBrain struct{}

func (ChaseBrain) Intent(ctx *BrainContext) common.Vec3 {
	if !ctx.HasTarget || ctx.InRange() {
		return common.Vec3{}
	}
	if t, ok := ecs.Get(ctx.World, ctx.Entity, component.TargetingComponent.Kind()); ok && t.FollowRange > 0 && ctx.Target.Distance > t.FollowRange {
		return common.Vec3{}
	}
	return ctx.Position.FlatDir(ctx.TargetPos)
}

package system

import (
	"math"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// FindTarget picks the visible candidate with the smallest ray-hit distance
// among colliders of targetMask inside the box around origin. A candidate is
// visible when the first thing a ray from origin toward it hits is that
// candidate. Ties keep the first candidate in query order. accept may veto
// candidates (dead ones, for instance) and may be nil.
func FindTarget(cw CollisionWorld, self ecs.Entity, origin, halfExtent common.Vec3, targetMask uint32, accept func(ecs.Entity) bool) (component.Target, bool) {
	if cw == nil || targetMask == 0 {
		return component.Target{}, false
	}

	best := component.Target{Distance: math.Inf(1)}
	found := false
	rayMask := targetMask | component.LayerGeometry
	for _, c := range cw.OverlapBox(origin, halfExtent, targetMask) {
		if c.Entity == self {
			continue
		}
		if accept != nil && !accept(c.Entity) {
			continue
		}
		hit, ok := cw.Raycast(origin, c.Position, rayMask, self)
		if !ok || hit.Entity != c.Entity || hit.Category&targetMask == 0 {
			continue
		}
		if hit.Distance < best.Distance {
			best = component.Target{Entity: uint64(c.Entity), Distance: hit.Distance}
			found = true
		}
	}
	if !found {
		return component.Target{}, false
	}
	return best, true
}

// HostileMask is the collider category a faction attacks.
func HostileMask(f component.Faction) uint32 {
	switch f {
	case component.FactionPlayer:
		return component.LayerEnemy
	case component.FactionEnemy:
		return component.LayerPlayer
	default:
		return 0
	}
}

// FactionLayer is the collider category of a faction's combatants.
func FactionLayer(f component.Faction) uint32 {
	switch f {
	case component.FactionPlayer:
		return component.LayerPlayer
	case component.FactionEnemy:
		return component.LayerEnemy
	default:
		return 0
	}
}

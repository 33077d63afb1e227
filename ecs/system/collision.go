package system

import (
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
)

// Candidate is a collider returned by a box overlap.
type Candidate struct {
	Entity   ecs.Entity
	Position common.Vec3
}

// RayHit is the first collider a ray touched.
type RayHit struct {
	Entity   ecs.Entity
	Category uint32
	Point    common.Vec3
	Normal   common.Vec3
	Distance float64
}

// CollisionWorld is the broad-phase collaborator used by targeting. Masks
// are collider category bits.
type CollisionWorld interface {
	OverlapBox(center, halfExtent common.Vec3, mask uint32) []Candidate
	// Raycast returns the first collider in mask between from and to,
	// ignoring the colliders of ignore.
	Raycast(from, to common.Vec3, mask uint32, ignore ecs.Entity) (RayHit, bool)
}

type ContactLayer int

const (
	ContactWall ContactLayer = iota + 1
	ContactTarget
)

func (l ContactLayer) String() string {
	switch l {
	case ContactWall:
		return "wall"
	case ContactTarget:
		return "target"
	default:
		return "unknown"
	}
}

// Contact is an already-detected overlap between a projectile and another
// collider. Normal is the surface normal at Point.
type Contact struct {
	Projectile ecs.Entity
	Other      ecs.Entity
	Layer      ContactLayer
	Point      common.Vec3
	Normal     common.Vec3
}

// ContactSource hands over the contacts detected since the last call.
type ContactSource interface {
	DrainContacts() []Contact
}

package component

import "github.com/milk9111/combatcore/common"

// Target is the entity currently pursued. Entity is an ecs.Entity; zero
// means no target.
type Target struct {
	Entity   uint64
	Distance float64
}

func (t Target) Valid() bool {
	return t.Entity != 0
}

var TargetComponent = NewComponent[Target]()

// Targeting configures the aggro query of an enemy.
type Targeting struct {
	HalfExtent  common.Vec3
	FollowRange float64
}

var TargetingComponent = NewComponent[Targeting]()

package component

import "github.com/milk9111/combatcore/common"

// Transform is a world-space pose. Yaw is the facing angle in degrees on the
// ground plane, measured from +Z toward +X.
type Transform struct {
	Position common.Vec3
	Yaw      float64
}

var TransformComponent = NewComponent[Transform]()

type Velocity struct {
	Linear common.Vec3
}

var VelocityComponent = NewComponent[Velocity]()

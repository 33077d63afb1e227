package component

import "github.com/jakecoffman/cp"

// Collision categories.
const (
	LayerGeometry   uint32 = 1 << 0
	LayerPlayer     uint32 = 1 << 1
	LayerEnemy      uint32 = 1 << 2
	LayerProjectile uint32 = 1 << 3
)

// Collider is the collision configuration of an entity plus the Chipmunk2D
// runtime objects the physics system creates for it. Circles use Radius,
// static boxes use HalfW/HalfD on the ground plane.
type Collider struct {
	Radius   float64
	HalfW    float64
	HalfD    float64
	Category uint32
	Mask     uint32
	Static   bool
	Sensor   bool

	Body  *cp.Body
	Shape *cp.Shape
}

var ColliderComponent = NewComponent[Collider]()

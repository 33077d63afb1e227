package system

import (
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// Chipmunk2D works in a plane; world X maps to cp X and world Z to cp Y.
// Elevation (world Y) is filtered separately by the queries.

// contactSlop is the overlap cp tolerates before pushing shapes apart.
const contactSlop = 0.01

const (
	collisionCombatant cp.CollisionType = iota + 1
	collisionWall
	collisionProjectile
)

type bodyInfo struct {
	body      *cp.Body
	shape     *cp.Shape
	static    bool
	elevation float64
	// synced is the ground-plane position last exchanged with the
	// Transform. A Transform that no longer matches was moved from outside
	// and teleports the body.
	synced cp.Vector
}

// PhysicsSystem mirrors colliders into a Chipmunk2D space, steps it and
// writes combatant positions back. It is the CollisionWorld used by
// targeting and the ContactSource the projectile resolver drains.
type PhysicsSystem struct {
	space    *cp.Space
	bodies   map[ecs.Entity]*bodyInfo
	contacts []Contact
	logger   *slog.Logger
}

var (
	_ CollisionWorld = (*PhysicsSystem)(nil)
	_ ContactSource  = (*PhysicsSystem)(nil)
)

func NewPhysicsSystem(logger *slog.Logger) *PhysicsSystem {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PhysicsSystem{
		space:  cp.NewSpace(),
		bodies: make(map[ecs.Entity]*bodyInfo),
		logger: logger,
	}
	s.space.SetGravity(cp.Vector{})
	s.space.SetCollisionSlop(contactSlop)
	s.installHandlers()
	return s
}

func (s *PhysicsSystem) installHandlers() {
	wall := s.space.NewCollisionHandler(collisionProjectile, collisionWall)
	wall.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		s.record(arb, ContactWall)
		return false
	}
	target := s.space.NewCollisionHandler(collisionProjectile, collisionCombatant)
	target.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		s.record(arb, ContactTarget)
		return false
	}
}

func (s *PhysicsSystem) record(arb *cp.Arbiter, layer ContactLayer) {
	a, b := arb.Shapes()
	proj, ok := a.UserData.(ecs.Entity)
	if !ok {
		return
	}
	other, _ := b.UserData.(ecs.Entity)

	point := a.Body().Position()
	if set := arb.ContactPointSet(); set.Count > 0 {
		point = set.Points[0].PointA
	}
	n := arb.Normal()
	s.contacts = append(s.contacts, Contact{
		Projectile: proj,
		Other:      other,
		Layer:      layer,
		Point:      common.V(point.X, 0, point.Y),
		Normal:     common.V(n.X, 0, n.Y).Normalize(),
	})
}

// DrainContacts returns the contacts recorded since the previous call.
func (s *PhysicsSystem) DrainContacts() []Contact {
	out := s.contacts
	s.contacts = nil
	return out
}

// Sync mirrors new, moved and removed colliders into the space without
// stepping it. Update does the same before each step.
func (s *PhysicsSystem) Sync(w *ecs.World) {
	if w == nil {
		return
	}
	s.cleanup(w)
	s.sync(w)
}

// SyncSystem runs Sync as its own scheduler step, so bodies spawned between
// ticks are queryable before the physics step.
func (s *PhysicsSystem) SyncSystem() ecs.System {
	return physicsSync{s}
}

type physicsSync struct {
	physics *PhysicsSystem
}

func (p physicsSync) Update(w *ecs.World) {
	p.physics.Sync(w)
}

func (s *PhysicsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	s.Sync(w)

	if dt := w.DeltaTime(); dt > 0 {
		s.space.Step(dt)
	}

	// Contacts carry the projectile elevation; cp only knows the plane.
	for i := range s.contacts {
		if tr, ok := ecs.Get(w, s.contacts[i].Projectile, component.TransformComponent.Kind()); ok {
			s.contacts[i].Point.Y = tr.Position.Y
		}
	}

	for e, info := range s.bodies {
		if info.static || info.shape.Sensor() {
			continue
		}
		tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		p := info.body.Position()
		tr.Position.X, tr.Position.Z = p.X, p.Y
		info.synced = p
	}
}

// cleanup drops bodies whose entity died, lost its collider or was given a
// fresh collider by a pool reacquire.
func (s *PhysicsSystem) cleanup(w *ecs.World) {
	for e, info := range s.bodies {
		col, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
		if ecs.IsAlive(w, e) && ok && col.Body == info.body {
			continue
		}
		s.remove(info)
		delete(s.bodies, e)
	}
}

func (s *PhysicsSystem) remove(info *bodyInfo) {
	if info.shape != nil && s.space.ContainsShape(info.shape) {
		s.space.RemoveShape(info.shape)
	}
	if !info.static && info.body != nil && s.space.ContainsBody(info.body) {
		s.space.RemoveBody(info.body)
	}
}

func (s *PhysicsSystem) sync(w *ecs.World) {
	ecs.ForEach2(w, component.ColliderComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, col *component.Collider, tr *component.Transform) {
		info, ok := s.bodies[e]
		if !ok {
			info = s.create(e, col, tr)
			if info == nil {
				return
			}
			s.bodies[e] = info
		}
		info.elevation = tr.Position.Y
		if info.static {
			return
		}

		if pos := (cp.Vector{X: tr.Position.X, Y: tr.Position.Z}); pos != info.synced {
			info.body.SetPosition(pos)
			info.synced = pos
		}
		switch {
		case col.Sensor:
			info.body.SetVelocity(0, 0)
		default:
			var v common.Vec3
			if vel, ok := ecs.Get(w, e, component.VelocityComponent.Kind()); ok {
				v = vel.Linear
			}
			info.body.SetVelocityVector(unblocked(info.body, cp.Vector{X: v.X, Y: v.Z}))
		}

		filter := cp.NewShapeFilter(uint(e), uint(col.Category), uint(col.Mask))
		if c, ok := ecs.Get(w, e, component.CombatantComponent.Kind()); ok && c.State == component.StateDead {
			filter = cp.NewShapeFilter(uint(e), 0, 0)
		}
		if info.shape.Filter != filter {
			info.shape.SetFilter(filter)
		}
	})
}

func (s *PhysicsSystem) create(e ecs.Entity, col *component.Collider, tr *component.Transform) *bodyInfo {
	pos := cp.Vector{X: tr.Position.X, Y: tr.Position.Z}

	if col.Static {
		if col.HalfW <= 0 || col.HalfD <= 0 {
			s.logger.Warn("physics: static collider without extents", slog.String("entity", e.String()))
			return nil
		}
		body := s.space.StaticBody
		shape := cp.NewBox2(body, cp.NewBBForExtents(pos, col.HalfW, col.HalfD), 0)
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(col.Category), uint(col.Mask)))
		shape.SetCollisionType(collisionWall)
		shape.SetFriction(0)
		shape.UserData = e
		s.space.AddShape(shape)
		col.Body, col.Shape = body, shape
		return &bodyInfo{body: body, shape: shape, static: true}
	}

	radius := col.Radius
	if radius <= 0 {
		radius = 0.5
	}
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(pos)
	body.UserData = e
	s.space.AddBody(body)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFilter(cp.NewShapeFilter(uint(e), uint(col.Category), uint(col.Mask)))
	shape.SetFriction(0)
	shape.SetSensor(col.Sensor)
	if col.Sensor {
		shape.SetCollisionType(collisionProjectile)
	} else {
		shape.SetCollisionType(collisionCombatant)
	}
	shape.UserData = e
	s.space.AddShape(shape)

	col.Body, col.Shape = body, shape
	return &bodyInfo{body: body, shape: shape, synced: pos}
}

// unblocked removes the part of v that drives the body into a solid it is
// touching. The step integrates position before it resolves contacts, so a
// velocity kept pointing into a wall sinks the body until the penetration
// bias balances it.
func unblocked(body *cp.Body, v cp.Vector) cp.Vector {
	body.EachArbiter(func(arb *cp.Arbiter) {
		a, b := arb.Shapes()
		if a.Sensor() || b.Sensor() || arb.Count() == 0 {
			return
		}
		n := arb.Normal()
		if into := v.Dot(n); into > 0 {
			v = v.Sub(n.Mult(into))
		}
	})
	return v
}

// OverlapBox returns the non-sensor colliders in mask whose footprint
// overlaps the box around center. half.Y bounds the elevation difference.
func (s *PhysicsSystem) OverlapBox(center, half common.Vec3, mask uint32) []Candidate {
	bb := cp.NewBBForExtents(cp.Vector{X: center.X, Y: center.Z}, half.X, half.Z)
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(mask))

	var out []Candidate
	s.space.BBQuery(bb, filter, func(shape *cp.Shape, _ interface{}) {
		if shape.Sensor() {
			return
		}
		e, ok := shape.UserData.(ecs.Entity)
		if !ok {
			return
		}
		info := s.bodies[e]
		if info == nil || info.static || math.Abs(info.elevation-center.Y) > half.Y {
			return
		}
		p := info.body.Position()
		r := 0.0
		if c, ok := shape.Class.(*cp.Circle); ok {
			r = c.Radius()
		}
		dx := math.Max(math.Abs(p.X-center.X)-half.X, 0)
		dz := math.Max(math.Abs(p.Y-center.Z)-half.Z, 0)
		if dx*dx+dz*dz > r*r {
			return
		}
		out = append(out, Candidate{Entity: e, Position: common.V(p.X, info.elevation, p.Y)})
	}, nil)
	return out
}

// Raycast returns the first solid collider in mask along from->to. The
// colliders of ignore are skipped.
func (s *PhysicsSystem) Raycast(from, to common.Vec3, mask uint32, ignore ecs.Entity) (RayHit, bool) {
	filter := cp.NewShapeFilter(uint(ignore), cp.ALL_CATEGORIES, uint(mask))
	a := cp.Vector{X: from.X, Y: from.Z}
	b := cp.Vector{X: to.X, Y: to.Z}
	info := s.space.SegmentQueryFirst(a, b, 0, filter)
	if info.Shape == nil {
		return RayHit{}, false
	}
	e, _ := info.Shape.UserData.(ecs.Entity)
	return RayHit{
		Entity:   e,
		Category: uint32(info.Shape.Filter.Categories),
		Point:    common.V(info.Point.X, common.Lerp(from.Y, to.Y, info.Alpha), info.Point.Y),
		Normal:   common.V(info.Normal.X, 0, info.Normal.Y),
		Distance: info.Alpha * a.Distance(b),
	}, true
}

// Bodies is the number of colliders currently mirrored into the space.
func (s *PhysicsSystem) Bodies() int {
	return len(s.bodies)
}

// DebugDraw renders every shape in the space through d.
func (s *PhysicsSystem) DebugDraw(d cp.Drawer) {
	cp.DrawSpace(s.space, d)
}

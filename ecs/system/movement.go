package system

import (
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// MovementSystem turns the movement direction into a velocity. Entities
// without a physics body are integrated here; bodies are integrated by the
// physics step.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

func (s *MovementSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach3(w, component.CombatantComponent.Kind(), component.TransformComponent.Kind(), component.VelocityComponent.Kind(), func(e ecs.Entity, c *component.Combatant, tr *component.Transform, vel *component.Velocity) {
		vel.Linear = common.Vec3{}
		if c.State == component.StateMove && !c.MoveDir.IsZero() {
			speed := 0.0
			if st, ok := ecs.Get(w, e, component.StatsComponent.Kind()); ok {
				speed = st.MoveSpeed
			}
			vel.Linear = c.MoveDir.Scale(speed)
		}

		if col, ok := ecs.Get(w, e, component.ColliderComponent.Kind()); ok && col.Body != nil {
			return
		}
		tr.Position = tr.Position.Add(vel.Linear.Scale(dt))
	})
}

// RotationSystem faces each live combatant along its look direction. A zero
// look direction keeps the previous facing.
type RotationSystem struct{}

func NewRotationSystem() *RotationSystem {
	return &RotationSystem{}
}

func (s *RotationSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.CombatantComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, c *component.Combatant, tr *component.Transform) {
		if c.State == component.StateDead {
			return
		}
		look := c.LookDir.Flat()
		if look.IsZero() {
			return
		}
		tr.Yaw = look.Yaw()
	})
}

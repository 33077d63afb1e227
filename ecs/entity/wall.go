package entity

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// NewWall creates a static box of level geometry centered on center.
func NewWall(w *ecs.World, center common.Vec3, halfW, halfD float64) (ecs.Entity, error) {
	if halfW <= 0 || halfD <= 0 {
		return 0, errors.New("wall: extents must be positive")
	}

	e := ecs.CreateEntity(w)

	if err := ecs.Add(w, e, component.WallComponent.Kind(), &component.Wall{}); err != nil {
		return 0, fmt.Errorf("wall: add tag: %w", err)
	}

	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: center}); err != nil {
		return 0, fmt.Errorf("wall: add transform: %w", err)
	}

	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		HalfW:    halfW,
		HalfD:    halfD,
		Static:   true,
		Category: component.LayerGeometry,
		Mask:     math.MaxUint32,
	}); err != nil {
		return 0, fmt.Errorf("wall: add collider: %w", err)
	}

	return e, nil
}

package component

import "github.com/milk9111/combatcore/common"

type ControllerKind string

const (
	ControllerPlayer   ControllerKind = "player"
	ControllerEnemy    ControllerKind = "enemy"
	ControllerScripted ControllerKind = "scripted"
)

// Controller selects the brain strategy that produces an entity's intent.
// Script names a prefab script for scripted controllers.
type Controller struct {
	Kind   ControllerKind
	Script string
}

var ControllerComponent = NewComponent[Controller]()

// MoveInput is the externally supplied movement of a player.
type MoveInput struct {
	Dir common.Vec3
}

var MoveInputComponent = NewComponent[MoveInput]()

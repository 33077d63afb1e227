package component

import "github.com/milk9111/combatcore/common"

type State int

const (
	StateIdle State = iota
	StateMove
	StateAttack
	StateDead
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMove:
		return "move"
	case StateAttack:
		return "attack"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

type Faction int

const (
	FactionPlayer Faction = iota + 1
	FactionEnemy
)

func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionEnemy:
		return "enemy"
	default:
		return "none"
	}
}

// Combatant is the per-entity control state driven by the state machine.
// MoveDir is zero whenever State is Idle, Attack or Dead.
type Combatant struct {
	State     State
	Faction   Faction
	MoveDir   common.Vec3
	LookDir   common.Vec3
	Attacking bool
	// Defeated is set exactly once when the entity enters Dead.
	Defeated bool
	// Intent is the direction the controller wants to travel this tick.
	Intent common.Vec3
	// Killer is the last entity whose damage reached this one.
	Killer uint64
}

var CombatantComponent = NewComponent[Combatant]()

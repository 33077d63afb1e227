package component

import "github.com/milk9111/combatcore/common"

type ProjectileState int

const (
	ProjectileFlying ProjectileState = iota
	ProjectileTerminated
)

type TerminateReason string

const (
	TerminateExpired TerminateReason = "expired"
	TerminateWall    TerminateReason = "wall"
	TerminateTarget  TerminateReason = "target"
)

// Projectile is a pooled shot. Power and Critical are fixed at fire time.
type Projectile struct {
	Owner           uint64
	OwnerFaction    Faction
	Direction       common.Vec3
	Speed           float64
	Remaining       float64
	Size            float64
	Power           int
	Critical        bool
	Abilities       Ability
	Bounces         int
	ExplosionRadius float64
	HostileMask     uint32
	State           ProjectileState
	Reason          TerminateReason
	PoolKind        int
}

var ProjectileComponent = NewComponent[Projectile]()

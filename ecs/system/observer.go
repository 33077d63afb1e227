package system

import "github.com/milk9111/combatcore/ecs/component"

// Observer receives combat activity for instrumentation.
type Observer interface {
	DamageDealt(target component.Faction, amount int)
	Defeated(f component.Faction)
	ProjectileSpawned(f component.Faction)
	ProjectileTerminated(reason component.TerminateReason)
}

type nopObserver struct{}

func (nopObserver) DamageDealt(component.Faction, int)             {}
func (nopObserver) Defeated(component.Faction)                     {}
func (nopObserver) ProjectileSpawned(component.Faction)            {}
func (nopObserver) ProjectileTerminated(component.TerminateReason) {}

func orNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}

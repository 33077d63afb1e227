package system

import (
	"github.com/milk9111/combatcore/combat"
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// DefaultDespawnDelay is how long a defeated entity lingers.
const DefaultDespawnDelay = 2.0

// HealthPipeline is the only writer of Health. It keeps health inside
// [0,Max], notifies only on change and runs death side effects once.
type HealthPipeline struct {
	DespawnDelay float64
	observer     Observer
}

func NewHealthPipeline(despawnDelay float64, observer Observer) *HealthPipeline {
	if despawnDelay <= 0 {
		despawnDelay = DefaultDespawnDelay
	}
	return &HealthPipeline{DespawnDelay: despawnDelay, observer: orNop(observer)}
}

func isDead(w *ecs.World, e ecs.Entity) bool {
	c, ok := ecs.Get(w, e, component.CombatantComponent.Kind())
	return !ok || c.State == component.StateDead || c.Defeated
}

// ApplyDamage runs raw through the defender's mitigation and subtracts the
// result. It returns the damage dealt; dead or health-less targets take none.
func (h *HealthPipeline) ApplyDamage(w *ecs.World, target ecs.Entity, raw int, source ecs.Entity) int {
	if !ecs.IsAlive(w, target) || isDead(w, target) {
		return 0
	}
	if !ecs.Has(w, target, component.HealthComponent.Kind()) {
		return 0
	}
	var defense int
	var reduction float64
	if st, ok := ecs.Get(w, target, component.StatsComponent.Kind()); ok {
		defense, reduction = st.Defense, st.DamageReductionPct
	}
	dmg := combat.FinalDamage(raw, defense, reduction)
	before, _ := ecs.Get(w, target, component.HealthComponent.Kind())
	prev := before.Current
	h.ApplyHealthDelta(w, target, -dmg, source)
	dealt := prev - before.Current
	if dealt > 0 {
		if c, ok := ecs.Get(w, target, component.CombatantComponent.Kind()); ok {
			h.observer.DamageDealt(c.Faction, dealt)
		}
	}
	return dealt
}

// Heal adds amount to the target's health.
func (h *HealthPipeline) Heal(w *ecs.World, target ecs.Entity, amount int) bool {
	if amount <= 0 {
		return false
	}
	return h.ApplyHealthDelta(w, target, amount, 0)
}

// ApplyHealthDelta clamps current+delta into [0,Max]. It reports whether the
// value changed. Reaching zero kills the entity.
func (h *HealthPipeline) ApplyHealthDelta(w *ecs.World, e ecs.Entity, delta int, source ecs.Entity) bool {
	if !ecs.IsAlive(w, e) || isDead(w, e) {
		return false
	}
	hp, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	if !ok {
		return false
	}
	prev := hp.Current
	hp.Current = combat.ClampHealth(hp.Current, delta, hp.Max)
	if hp.Current == prev {
		return false
	}
	w.Bus().Publish(ecs.Event{
		Kind:   ecs.EventHealthChanged,
		Entity: e,
		Data:   ecs.HealthChanged{Previous: prev, Current: hp.Current, Max: hp.Max},
	})
	if hp.Current == 0 {
		h.Kill(w, e, source)
	}
	return true
}

// Kill moves e to Dead. Only the first call has effects.
func (h *HealthPipeline) Kill(w *ecs.World, e ecs.Entity, killer ecs.Entity) bool {
	c, ok := ecs.Get(w, e, component.CombatantComponent.Kind())
	if !ok || c.Defeated {
		return false
	}
	c.State = component.StateDead
	c.Defeated = true
	c.Attacking = false
	c.MoveDir = common.Vec3{}
	c.Intent = common.Vec3{}
	c.Killer = uint64(killer)
	if v, ok := ecs.Get(w, e, component.VelocityComponent.Kind()); ok {
		v.Linear = common.Vec3{}
	}
	_ = ecs.Add(w, e, component.DespawnComponent.Kind(), &component.Despawn{Remaining: h.DespawnDelay})
	h.observer.Defeated(c.Faction)

	bus := w.Bus()
	bus.Publish(ecs.Event{Kind: ecs.EventDefeated, Entity: e, Data: ecs.Defeated{Faction: c.Faction, Killer: killer}})
	switch c.Faction {
	case component.FactionPlayer:
		bus.Publish(ecs.Event{Kind: ecs.EventPlayerDefeated, Entity: e, Data: ecs.Defeated{Faction: c.Faction, Killer: killer}})
	case component.FactionEnemy:
		bus.Publish(ecs.Event{Kind: ecs.EventEnemyDefeated, Entity: e, Data: ecs.Defeated{Faction: c.Faction, Killer: killer}})
		bus.Publish(ecs.Event{Kind: ecs.EventRewardGranted, Entity: killer, Data: ecs.RewardGranted{Enemy: e, Killer: killer}})
		if remaining, defeated := enemyCounts(w); remaining == 0 {
			bus.Publish(ecs.Event{Kind: ecs.EventWaveCleared, Data: ecs.WaveCleared{Defeated: defeated}})
		}
	}
	return true
}

func enemyCounts(w *ecs.World) (remaining, defeated int) {
	ecs.ForEach2(w, component.EnemyTagComponent.Kind(), component.CombatantComponent.Kind(), func(_ ecs.Entity, _ *component.EnemyTag, c *component.Combatant) {
		if c.Defeated {
			defeated++
			return
		}
		remaining++
	})
	return remaining, defeated
}

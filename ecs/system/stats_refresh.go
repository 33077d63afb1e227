package system

import (
	"log/slog"

	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/stats"
)

// StatsRefreshSystem applies queued stat refreshes at the start of a tick so
// no system observes a half-updated snapshot.
type StatsRefreshSystem struct {
	provider stats.Provider
	logger   *slog.Logger
}

func NewStatsRefreshSystem(provider stats.Provider, logger *slog.Logger) *StatsRefreshSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsRefreshSystem{provider: provider, logger: logger}
}

func (s *StatsRefreshSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, e := range ecs.Query(w, component.StatsRefreshRequestComponent.Kind()) {
		ecs.Remove(w, e, component.StatsRefreshRequestComponent.Kind())
		s.Refresh(w, e)
	}
}

// RequestAll queues a refresh for every entity with a stats source.
func RequestAll(w *ecs.World) {
	for _, e := range ecs.Query(w, component.StatsSourceComponent.Kind()) {
		_ = ecs.Add(w, e, component.StatsRefreshRequestComponent.Kind(), &component.StatsRefreshRequest{})
	}
}

// Snapshot resolves the stats of e from the provider and its boosts. A
// missing provider or profile falls back to DefaultStats.
func (s *StatsRefreshSystem) Snapshot(w *ecs.World, e ecs.Entity) component.Stats {
	profile := ""
	if src, ok := ecs.Get(w, e, component.StatsSourceComponent.Kind()); ok {
		profile = src.Profile
	}
	var (
		st component.Stats
		ok bool
	)
	if s.provider != nil {
		st, ok = s.provider.GetStats(profile)
	}
	if !ok {
		s.logger.Warn("stats: missing profile, using defaults", slog.String("entity", e.String()), slog.String("profile", profile))
		st = component.DefaultStats()
	}
	if boost, ok := ecs.Get(w, e, component.StatBoostComponent.Kind()); ok {
		st = boost.Apply(st)
	}
	// A negative boost may not push max health below one.
	st.MaxHealth = max(st.MaxHealth, 1)
	return st
}

// Refresh re-reads the snapshot of e. A raised max health raises current
// health by the same amount; a lowered one clamps it. Dead entities keep
// their health.
func (s *StatsRefreshSystem) Refresh(w *ecs.World, e ecs.Entity) {
	if !ecs.IsAlive(w, e) {
		return
	}
	st := s.Snapshot(w, e)
	if cur, ok := ecs.Get(w, e, component.StatsComponent.Kind()); ok {
		*cur = st
	} else if err := ecs.Add(w, e, component.StatsComponent.Kind(), &st); err != nil {
		return
	}

	hp, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	if !ok {
		_ = ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{Current: st.MaxHealth, Max: st.MaxHealth})
		return
	}
	if isDead(w, e) {
		return
	}
	prev, prevMax := hp.Current, hp.Max
	if grow := st.MaxHealth - hp.Max; grow > 0 {
		hp.Current += grow
	}
	hp.Max = st.MaxHealth
	if hp.Current > hp.Max {
		hp.Current = hp.Max
	}
	if hp.Current == prev && hp.Max == prevMax {
		return
	}
	w.Bus().Publish(ecs.Event{
		Kind:   ecs.EventHealthChanged,
		Entity: e,
		Data:   ecs.HealthChanged{Previous: prev, Current: hp.Current, Max: hp.Max},
	})
}

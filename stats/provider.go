// Package stats supplies combat snapshots to the core. The YAML provider
// reads profiles from prefabs/stats.yaml and can be reloaded between ticks.
package stats

import (
	"fmt"

	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/prefabs"
)

type Provider interface {
	GetStats(profile string) (component.Stats, bool)
}

// Reloader is implemented by providers backed by a file.
type Reloader interface {
	Reload() error
}

// Static is an in-memory provider.
type Static map[string]component.Stats

func (s Static) GetStats(profile string) (component.Stats, bool) {
	st, ok := s[profile]
	return st, ok
}

type YAMLProvider struct {
	load     func() ([]byte, error)
	profiles map[string]component.Stats
	perks    map[string]component.StatBoost
}

var (
	_ Provider = (*YAMLProvider)(nil)
	_ Reloader = (*YAMLProvider)(nil)
)

// NewYAMLProvider reads stats.yaml through prefabs.Load, so a disk copy
// overrides the embedded one.
func NewYAMLProvider() (*YAMLProvider, error) {
	return NewYAMLProviderFunc(func() ([]byte, error) { return prefabs.Load(prefabs.StatsFile) })
}

// NewYAMLProviderFunc builds a provider over an arbitrary source.
func NewYAMLProviderFunc(load func() ([]byte, error)) (*YAMLProvider, error) {
	p := &YAMLProvider{load: load}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the source. On error the previous profiles stay in place.
func (p *YAMLProvider) Reload() error {
	data, err := p.load()
	if err != nil {
		return fmt.Errorf("stats: load: %w", err)
	}
	spec, err := prefabs.ParseStatsSpec(data)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	for name, st := range spec.Profiles {
		if err := validate(st); err != nil {
			return fmt.Errorf("stats: profile %q: %w", name, err)
		}
	}
	p.profiles = spec.Profiles
	p.perks = spec.Perks
	return nil
}

func validate(s component.Stats) error {
	switch {
	case s.MaxHealth <= 0:
		return fmt.Errorf("maxHealth must be positive, got %d", s.MaxHealth)
	case s.Defense < 0:
		return fmt.Errorf("defense must not be negative, got %d", s.Defense)
	case s.DamageReductionPct < 0 || s.DamageReductionPct >= 1:
		return fmt.Errorf("damageReductionPct must be in [0,1), got %v", s.DamageReductionPct)
	case s.CriticalRatePct < 0 || s.CriticalRatePct > 1:
		return fmt.Errorf("criticalRatePct must be in [0,1], got %v", s.CriticalRatePct)
	}
	return nil
}

func (p *YAMLProvider) GetStats(profile string) (component.Stats, bool) {
	st, ok := p.profiles[profile]
	return st, ok
}

// Perk returns the named stat boost reward.
func (p *YAMLProvider) Perk(name string) (component.StatBoost, bool) {
	b, ok := p.perks[name]
	return b, ok
}

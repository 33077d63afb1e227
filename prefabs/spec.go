package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/pool"
)

const (
	ArenaFile   = "arena.yaml"
	WeaponsFile = "weapons.yaml"
	StatsFile   = "stats.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type ArenaSpec struct {
	Name         string          `yaml:"name"`
	TickRate     int             `yaml:"tick_rate"`
	DespawnDelay float64         `yaml:"despawn_delay"`
	Seed         int64           `yaml:"seed"`
	Aggro        AggroSpec       `yaml:"aggro"`
	Explosion    ExplosionSpec   `yaml:"explosion"`
	Pools        []PoolSpec      `yaml:"pools"`
	Player       *CombatantSpec  `yaml:"player"`
	Enemies      []CombatantSpec `yaml:"enemies"`
	Walls        []WallSpec      `yaml:"walls"`
	Viewer       ViewerSpec      `yaml:"viewer"`
}

type AggroSpec struct {
	HalfExtent  common.Vec3 `yaml:"half_extent"`
	FollowRange float64     `yaml:"follow_range"`
}

type ExplosionSpec struct {
	Radius float64 `yaml:"radius"`
}

type PoolSpec struct {
	Kind        int `yaml:"kind"`
	pool.Config `yaml:",inline"`
}

// CombatantSpec places a player or enemy. Profile names a stats.yaml entry
// and Weapon a weapons.yaml entry.
type CombatantSpec struct {
	Name       string      `yaml:"name"`
	Profile    string      `yaml:"profile"`
	Weapon     string      `yaml:"weapon"`
	Controller string      `yaml:"controller"`
	Script     string      `yaml:"script"`
	Radius     float64     `yaml:"radius"`
	Position   common.Vec3 `yaml:"position"`
}

type WallSpec struct {
	Position common.Vec3 `yaml:"position"`
	HalfW    float64     `yaml:"half_w"`
	HalfD    float64     `yaml:"half_d"`
}

type ViewerSpec struct {
	Scale  float64               `yaml:"scale"`
	Colors map[string]*YAMLColor `yaml:"colors"`
}

func LoadArenaSpec() (*ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec](ArenaFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type WeaponsSpec struct {
	Weapons map[string]component.Weapon `yaml:"weapons"`
}

func LoadWeaponsSpec() (*WeaponsSpec, error) {
	spec, err := LoadSpec[WeaponsSpec](WeaponsFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Weapon returns a copy of the named preset.
func (s *WeaponsSpec) Weapon(name string) (component.Weapon, bool) {
	if s == nil {
		return component.Weapon{}, false
	}
	w, ok := s.Weapons[name]
	return w, ok
}

type StatsSpec struct {
	Profiles map[string]component.Stats     `yaml:"profiles"`
	Perks    map[string]component.StatBoost `yaml:"perks"`
}

func LoadStatsSpec() (*StatsSpec, error) {
	spec, err := LoadSpec[StatsSpec](StatsFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func ParseStatsSpec(data []byte) (*StatsSpec, error) {
	var spec StatsSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", StatsFile, err)
	}
	return &spec, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return err
		}
		rgba[i] = v
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}

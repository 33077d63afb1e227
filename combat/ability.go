package combat

import (
	"fmt"

	"github.com/milk9111/combatcore/ecs/component"
)

// Grant is an ability index handed out by the reward layer.
type Grant int

const (
	GrantMultiShot Grant = iota
	GrantRicochet
	GrantExplosive
)

func (g Grant) String() string {
	switch g {
	case GrantMultiShot:
		return "multishot"
	case GrantRicochet:
		return "ricochet"
	case GrantExplosive:
		return "explosive"
	default:
		return fmt.Sprintf("grant(%d)", int(g))
	}
}

// ParseGrant maps a reward name to its index.
func ParseGrant(name string) (Grant, bool) {
	switch name {
	case "multishot":
		return GrantMultiShot, true
	case "ricochet":
		return GrantRicochet, true
	case "explosive":
		return GrantExplosive, true
	}
	return 0, false
}

// ApplyGrant mutates w for the given ability. Multi-shot sets the shot
// count to value, ricochet ORs its bit and sets bounces to value, explosive
// ORs its bit. It reports false for an unknown index and leaves w as is.
func ApplyGrant(w *component.Weapon, g Grant, value int) bool {
	if w == nil {
		return false
	}
	switch g {
	case GrantMultiShot:
		if value < 1 {
			value = 1
		}
		w.PerShot = value
	case GrantRicochet:
		if value < 0 {
			value = 0
		}
		w.Abilities |= component.AbilityRicochet
		w.Bounces = value
	case GrantExplosive:
		w.Abilities |= component.AbilityExplosive
	default:
		return false
	}
	return true
}

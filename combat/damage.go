// Package combat holds the pure rules of the damage pipeline, weapon
// abilities and projectile spread. Nothing here touches the ECS world.
package combat

import (
	"github.com/milk9111/combatcore/common"
)

// CriticalMultiplier scales the attacker's base attack on a critical roll.
const CriticalMultiplier = 1.5

// Roller is a uniform [0,1) source. *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// FinalDamage applies flat defense, then percentage reduction, and never
// returns less than 1.
func FinalDamage(raw, defense int, reduction float64) int {
	base := raw - defense
	if base < 1 {
		base = 1
	}
	dmg := common.RoundHalfUp(float64(base) * (1 - reduction))
	if dmg < 1 {
		return 1
	}
	return dmg
}

// RollCritical draws once for an attack. A nil roller never crits.
func RollCritical(rng Roller, critPct float64) bool {
	if rng == nil || critPct <= 0 {
		return false
	}
	return rng.Float64() < critPct
}

// AttackPower is the raw damage of one attack: the attacker's attack stat
// scaled by the weapon multiplier and, on a critical, by CriticalMultiplier.
func AttackPower(attack int, weaponPower float64, critical bool) int {
	if weaponPower <= 0 {
		weaponPower = 1
	}
	p := float64(attack) * weaponPower
	if critical {
		p *= CriticalMultiplier
	}
	return common.RoundHalfUp(p)
}

// RollAttack combines the critical roll and AttackPower.
func RollAttack(rng Roller, attack int, weaponPower, critPct float64) (int, bool) {
	crit := RollCritical(rng, critPct)
	return AttackPower(attack, weaponPower, crit), crit
}

// ClampHealth returns current+delta bounded to [0,maxHealth].
func ClampHealth(current, delta, maxHealth int) int {
	if maxHealth < 0 {
		maxHealth = 0
	}
	next := current + delta
	if next < 0 {
		return 0
	}
	if next > maxHealth {
		return maxHealth
	}
	return next
}

// SplashFalloff is the fraction of power an explosion deals at dist from
// its center: 1 at the center falling linearly to 0.5 at radius, 0 beyond.
func SplashFalloff(dist, radius float64) float64 {
	if radius <= 0 || dist > radius {
		return 0
	}
	return common.Lerp(1, 0.5, common.Clamp(dist/radius, 0, 1))
}

// SplashPower is the raw damage an explosion deals at dist.
func SplashPower(power int, dist, radius float64) int {
	f := SplashFalloff(dist, radius)
	if f == 0 {
		return 0
	}
	p := common.RoundHalfUp(float64(power) * f)
	if p < 1 {
		return 1
	}
	return p
}

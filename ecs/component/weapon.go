package component

// Ability is a projectile special-effect bit. Bits combine with OR.
type Ability uint8

const (
	AbilityNormal    Ability = 1
	AbilityRicochet  Ability = 2
	AbilityExplosive Ability = 4
)

func (a Ability) Has(bit Ability) bool {
	return a&bit != 0
}

type WeaponKind string

const (
	WeaponMelee  WeaponKind = "melee"
	WeaponRanged WeaponKind = "ranged"
)

// Weapon is owned by exactly one combatant. Power multiplies the owner's
// attack stat at fire time. Angles are in degrees.
type Weapon struct {
	Kind            WeaponKind `yaml:"kind"`
	Delay           float64    `yaml:"delay"`
	Power           float64    `yaml:"power"`
	Range           float64    `yaml:"range"`
	ProjectileSpeed float64    `yaml:"projectileSpeed"`
	Duration        float64    `yaml:"duration"`
	Size            float64    `yaml:"size"`
	Spread          float64    `yaml:"spread"`
	AngleStep       float64    `yaml:"angleStep"`
	PerShot         int        `yaml:"perShot"`
	Abilities       Ability    `yaml:"abilities"`
	Bounces         int        `yaml:"bounces"`
	ExplosionRadius float64    `yaml:"explosionRadius"`
	PoolKind        int        `yaml:"poolKind"`
}

var WeaponComponent = NewComponent[Weapon]()

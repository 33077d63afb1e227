package component

// Stats is the read-only combat snapshot for one entity. Percentages are
// fractions in [0,1).
type Stats struct {
	MaxHealth          int     `yaml:"maxHealth"`
	Attack             int     `yaml:"attack"`
	Defense            int     `yaml:"defense"`
	DamageReductionPct float64 `yaml:"damageReductionPct"`
	CriticalRatePct    float64 `yaml:"criticalRatePct"`
	MoveSpeed          float64 `yaml:"moveSpeed"`
}

var StatsComponent = NewComponent[Stats]()

// DefaultStats is used when a provider has no profile for an entity.
func DefaultStats() Stats {
	return Stats{
		MaxHealth:          100,
		Attack:             10,
		Defense:            5,
		DamageReductionPct: 0.1,
		CriticalRatePct:    0.05,
		MoveSpeed:          3,
	}
}

// StatsSource names the provider profile an entity's snapshot comes from.
type StatsSource struct {
	Profile string
}

var StatsSourceComponent = NewComponent[StatsSource]()

// StatBoost is an accumulated perk bonus layered on top of the provider
// snapshot at refresh time.
type StatBoost struct {
	Attack          int     `yaml:"attack"`
	Defense         int     `yaml:"defense"`
	MaxHealth       int     `yaml:"maxHealth"`
	MoveSpeed       float64 `yaml:"moveSpeed"`
	CriticalRatePct float64 `yaml:"criticalRatePct"`
}

func (b StatBoost) Apply(s Stats) Stats {
	s.Attack += b.Attack
	s.Defense += b.Defense
	s.MaxHealth += b.MaxHealth
	s.MoveSpeed += b.MoveSpeed
	s.CriticalRatePct += b.CriticalRatePct
	return s
}

func (b StatBoost) Plus(o StatBoost) StatBoost {
	return StatBoost{
		Attack:          b.Attack + o.Attack,
		Defense:         b.Defense + o.Defense,
		MaxHealth:       b.MaxHealth + o.MaxHealth,
		MoveSpeed:       b.MoveSpeed + o.MoveSpeed,
		CriticalRatePct: b.CriticalRatePct + o.CriticalRatePct,
	}
}

var StatBoostComponent = NewComponent[StatBoost]()

// StatsRefreshRequest asks StatsRefreshSystem to re-read the snapshot on
// the next tick boundary.
type StatsRefreshRequest struct{}

var StatsRefreshRequestComponent = NewComponent[StatsRefreshRequest]()

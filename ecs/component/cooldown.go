package component

import "math"

// AttackClock accumulates simulated seconds since the last successful fire.
// It starts at +Inf so the first attack is immediately eligible.
type AttackClock struct {
	SinceLast float64
}

func NewAttackClock() *AttackClock {
	return &AttackClock{SinceLast: math.Inf(1)}
}

// Ready reports whether delay has elapsed. The tolerance absorbs float
// drift from summing many small ticks.
func (c AttackClock) Ready(delay float64) bool {
	return c.SinceLast+1e-9 >= delay
}

var AttackClockComponent = NewComponent[AttackClock]()

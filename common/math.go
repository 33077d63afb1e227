package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundHalfUp rounds x to the nearest integer with .5 going toward +Inf.
// The small bias absorbs products like 45*0.9 landing just under .5.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5 + 1e-9))
}

package combat

import "github.com/milk9111/combatcore/common"

// SpreadAngles returns count angles in degrees, centered on zero and step
// apart. The fan starts at -(count-1)/2*step, so it is symmetric about the
// aim line; three shots at step 10 give -10/0/+10, not the -15/-5/+5 a
// -count/2*step start would give. With spread > 0 each angle is jittered
// by up to ±spread.
func SpreadAngles(count int, step, spread float64, rng Roller) []float64 {
	if count < 1 {
		count = 1
	}
	first := -float64(count-1) / 2 * step
	out := make([]float64, count)
	for i := range out {
		a := first + float64(i)*step
		if spread > 0 && rng != nil {
			a += (rng.Float64()*2 - 1) * spread
		}
		out[i] = a
	}
	return out
}

// SpreadDirections rotates the flattened base direction by each spread
// angle. A zero base yields no directions.
func SpreadDirections(base common.Vec3, count int, step, spread float64, rng Roller) []common.Vec3 {
	dir := base.Flat().Normalize()
	if dir.IsZero() {
		return nil
	}
	angles := SpreadAngles(count, step, spread, rng)
	out := make([]common.Vec3, len(angles))
	for i, a := range angles {
		out[i] = dir.RotateY(a)
	}
	return out
}

package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs/component"
)

func TestSpreadAngles(t *testing.T) {
	cases := []struct {
		name  string
		count int
		step  float64
		want  []float64
	}{
		{"single", 1, 10, []float64{0}},
		{"three_centered", 3, 10, []float64{-10, 0, 10}},
		{"two_straddle", 2, 10, []float64{-5, 5}},
		{"four_symmetric", 4, 10, []float64{-15, -5, 5, 15}},
		{"zero_count_is_one", 0, 10, []float64{0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDeltaSlice(t, c.want, SpreadAngles(c.count, c.step, 0, nil), 1e-9)
		})
	}
}

func TestSpreadJitterBounded(t *testing.T) {
	for _, roll := range []fixedRoll{0, 0.25, 0.999} {
		for _, a := range SpreadAngles(3, 10, 2, roll) {
			base := []float64{-10, 0, 10}
			ok := false
			for _, b := range base {
				if a >= b-2 && a <= b+2 {
					ok = true
				}
			}
			assert.True(t, ok, "angle %f out of jitter band", a)
		}
	}
}

func TestSpreadDirections(t *testing.T) {
	dirs := SpreadDirections(common.V(0, 0, 1), 3, 10, 0, nil)
	require.Len(t, dirs, 3)
	assert.InDelta(t, -10, dirs[0].Yaw(), 1e-9)
	assert.InDelta(t, 0, dirs[1].Yaw(), 1e-9)
	assert.InDelta(t, 10, dirs[2].Yaw(), 1e-9)

	assert.Nil(t, SpreadDirections(common.V(0, 5, 0), 3, 10, 0, nil))
}

func TestApplyGrant(t *testing.T) {
	w := component.Weapon{PerShot: 1, Abilities: component.AbilityNormal}

	require.True(t, ApplyGrant(&w, GrantMultiShot, 3))
	assert.Equal(t, 3, w.PerShot)

	require.True(t, ApplyGrant(&w, GrantRicochet, 2))
	require.True(t, ApplyGrant(&w, GrantExplosive, 0))
	require.True(t, ApplyGrant(&w, GrantExplosive, 0))
	assert.Equal(t, component.AbilityNormal|component.AbilityRicochet|component.AbilityExplosive, w.Abilities)
	assert.Equal(t, 2, w.Bounces)

	before := w
	assert.False(t, ApplyGrant(&w, Grant(9), 5))
	assert.Equal(t, before, w)
}

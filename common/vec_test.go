package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotateY(t *testing.T) {
	cases := []struct {
		name string
		in   Vec3
		deg  float64
		want Vec3
	}{
		{"zero_angle", V(0, 0, 1), 0, V(0, 0, 1)},
		{"quarter_turn", V(0, 0, 1), 90, V(1, 0, 0)},
		{"negative_quarter", V(0, 0, 1), -90, V(-1, 0, 0)},
		{"keeps_elevation", V(1, 2, 0), 180, V(-1, 2, 0)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.in.RotateY(c.deg)
			assert.True(t, got.ApproxEqual(c.want, 1e-9), "got %+v want %+v", got, c.want)
		})
	}
}

func TestReflect(t *testing.T) {
	in := V(1, 0, -1).Normalize()
	got := in.Reflect(V(0, 0, 1))
	assert.InDelta(t, in.X, got.X, 1e-9)
	assert.InDelta(t, -in.Z, got.Z, 1e-9)
	assert.InDelta(t, 1, got.Len(), 1e-9)
}

func TestNormalizeZero(t *testing.T) {
	assert.True(t, Vec3{}.Normalize().IsZero())
}

func TestFlatDirIgnoresElevation(t *testing.T) {
	d := V(0, 0, 0).FlatDir(V(3, 10, 4))
	assert.InDelta(t, 0, d.Y, 1e-9)
	assert.InDelta(t, 1, d.Len(), 1e-9)
	assert.InDelta(t, 0.6, d.X, 1e-9)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 41, RoundHalfUp(40.5))
	assert.Equal(t, 40, RoundHalfUp(40.49))
	assert.Equal(t, 1, RoundHalfUp(0.5))
	assert.Equal(t, 0, RoundHalfUp(math.SmallestNonzeroFloat64))
}

func TestLerp(t *testing.T) {
	assert.InDelta(t, 0.75, Lerp(1, 0.5, 0.5), 1e-12)
}

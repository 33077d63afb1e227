package common

import "math"

const epsilon = 1e-9

// Vec3 is a position or direction. Y is elevation; X/Z is the ground plane.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

func (v Vec3) IsZero() bool {
	return v.Len() < epsilon
}

// Normalize returns the unit vector of v. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < epsilon {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat projects v onto the ground plane.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// FlatDir returns the normalized ground-plane direction from v to o.
func (v Vec3) FlatDir(o Vec3) Vec3 {
	return o.Flat().Sub(v.Flat()).Normalize()
}

// RotateY rotates v around the vertical axis by deg degrees.
func (v Vec3) RotateY(deg float64) Vec3 {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// Reflect mirrors v about the plane with the given unit normal.
func (v Vec3) Reflect(normal Vec3) Vec3 {
	return v.Sub(normal.Scale(2 * v.Dot(normal)))
}

// Yaw returns the facing angle in degrees of a ground-plane direction,
// measured from +Z toward +X.
func (v Vec3) Yaw() float64 {
	return math.Atan2(v.X, v.Z) * 180 / math.Pi
}

func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol && math.Abs(v.Z-o.Z) <= tol
}

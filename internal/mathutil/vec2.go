package mathutil

import "math"

// Vec2 is a 2-component vector used for UVs, viewport points, tiling and offset.
type Vec2 [2]float64

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

// Mul returns the component-wise product.
func (a Vec2) Mul(b Vec2) Vec2 {
	return Vec2{a[0] * b[0], a[1] * b[1]}
}

func (a Vec2) Dot(b Vec2) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

// Cross is the z component of the 3D cross product of (a, 0) and (b, 0).
func (a Vec2) Cross(b Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

func (v Vec2) Len() float64 {
	return math.Hypot(v[0], v[1])
}

// Angle returns atan2(y, x) in (-π, π].
func (v Vec2) Angle() float64 {
	return math.Atan2(v[1], v[0])
}

// ApproxEqual reports whether both components differ by at most eps.
func (a Vec2) ApproxEqual(b Vec2, eps float64) bool {
	return math.Abs(a[0]-b[0]) <= eps && math.Abs(a[1]-b[1]) <= eps
}

// Vec4 carries shader parameters (xyzw).
type Vec4 [4]float64

// V4 extends a Vec3 with w.
func V4(v Vec3, w float64) Vec4 {
	return Vec4{v[0], v[1], v[2], w}
}

// XYZ drops w.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

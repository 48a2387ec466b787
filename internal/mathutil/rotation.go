package mathutil

import "math"

// RotX returns a 3×3 rotation matrix around the X axis. Angle in radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotY returns a 3×3 rotation matrix around the Y axis.
func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// RotZ returns a 3×3 rotation matrix around the Z axis.
func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}

// LookRotation returns the rotation whose local -Z axis points along forward
// with local +Y as close to up as possible. Falls back to world right as the
// reference when forward is parallel to up.
func LookRotation(forward, up Vec3) Quat {
	f := forward.Normalize()
	if f.LenSq() == 0 {
		return QuatIdentity()
	}
	right := f.Cross(up)
	if right.LenSq() < BasisEpsilon {
		right = f.Cross(WorldRight)
		if right.LenSq() < BasisEpsilon {
			right = f.Cross(Vec3Z)
		}
	}
	right = right.Normalize()
	trueUp := right.Cross(f)
	return QuatFromMat3(Mat3FromCols(right, trueUp, f.Scale(-1)))
}

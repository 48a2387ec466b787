package raster

import (
	"math"

	"projmap/internal/mathutil"
)

// Homography is a 3x3 projective map of the plane, row-major with h[8] == 1.
type Homography [9]float64

// unitSquare lists the corners matched to the warp corners _P0.._P3.
var unitSquare = [4]mathutil.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// SquareToQuad returns the homography taking the unit square corners
// (0,0),(1,0),(1,1),(0,1) onto dst. ok is false when three corners are
// collinear.
func SquareToQuad(dst [4]mathutil.Vec2) (Homography, bool) {
	return Solve(unitSquare, dst)
}

// Solve finds H with H(src[i]) == dst[i]. ok is false when no invertible
// map exists.
func Solve(src, dst [4]mathutil.Vec2) (Homography, bool) {
	var a [8][8]float64
	var b [8]float64
	for i := range 4 {
		X, Y := src[i][0], src[i][1]
		x, y := dst[i][0], dst[i][1]
		r := 2 * i
		a[r] = [8]float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x}
		b[r] = x
		a[r+1] = [8]float64{0, 0, 0, X, Y, 1, -X * y, -Y * y}
		b[r+1] = y
	}
	h, ok := solve8(a, b)
	if !ok {
		return Homography{}, false
	}
	out := Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}
	if math.Abs(mathutil.Mat3(out).Det()) < 1e-9 {
		return Homography{}, false
	}
	return out, true
}

// Apply maps p. ok is false on the line at infinity.
func (h Homography) Apply(p mathutil.Vec2) (mathutil.Vec2, bool) {
	w := h[6]*p[0] + h[7]*p[1] + h[8]
	if math.Abs(w) < 1e-12 {
		return mathutil.Vec2{}, false
	}
	return mathutil.Vec2{
		(h[0]*p[0] + h[1]*p[1] + h[2]) / w,
		(h[3]*p[0] + h[4]*p[1] + h[5]) / w,
	}, true
}

// Inverse returns the inverse map.
func (h Homography) Inverse() (Homography, bool) {
	m := mathutil.Mat3(h)
	d := m.Det()
	if math.Abs(d) < 1e-15 {
		return Homography{}, false
	}
	inv := m.Inverse()
	if inv[8] == 0 {
		return Homography(inv), true
	}
	s := 1 / inv[8]
	for i := range inv {
		inv[i] *= s
	}
	return Homography(inv), true
}

// solve8 runs Gauss-Jordan elimination with partial pivoting.
func solve8(a [8][8]float64, b [8]float64) ([8]float64, bool) {
	for col := range 8 {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return [8]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		div := a[col][col]
		for c := col; c < 8; c++ {
			a[col][c] /= div
		}
		b[col] /= div

		for r := range 8 {
			if r == col || a[r][col] == 0 {
				continue
			}
			f := a[r][col]
			for c := col; c < 8; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	return b, true
}

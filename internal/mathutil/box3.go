package mathutil

import "math"

// Box3 is an axis-aligned bounding box. The zero value is not empty; use
// EmptyBox3 before expanding.
type Box3 struct {
	Min Vec3
	Max Vec3
}

// EmptyBox3 returns a box that any point expands.
func EmptyBox3() Box3 {
	inf := math.Inf(1)
	return Box3{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// BoxFromPoints returns the bounds of pts.
func BoxFromPoints(pts []Vec3) Box3 {
	b := EmptyBox3()
	for _, p := range pts {
		b = b.Expand(p)
	}
	return b
}

// IsEmpty reports whether max < min on any axis.
func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Expand returns the box grown to include p.
func (b Box3) Expand(p Vec3) Box3 {
	for k := 0; k < 3; k++ {
		b.Min[k] = math.Min(b.Min[k], p[k])
		b.Max[k] = math.Max(b.Max[k], p[k])
	}
	return b
}

// Center is the midpoint of the box.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size is max − min.
func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

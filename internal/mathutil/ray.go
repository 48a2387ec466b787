package mathutil

import "math"

// Ray is a half-line from Origin along unit direction Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// NewRay normalizes dir.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir.Normalize()}
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Plane is the set of points p with Normal·p + Off == 0.
type Plane struct {
	Normal Vec3
	Off    float64
}

// PlaneFromPoint builds the plane through point with the given normal.
func PlaneFromPoint(normal, point Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Off: -n.Dot(point)}
}

// Distance is the signed distance of p from the plane.
func (pl Plane) Distance(p Vec3) float64 {
	return pl.Normal.Dot(p) + pl.Off
}

// Project returns the closest point on the plane to p.
func (pl Plane) Project(p Vec3) Vec3 {
	return p.Sub(pl.Normal.Scale(pl.Distance(p)))
}

// IntersectPlane returns the hit point and ray parameter. Parallel rays and hits
// behind the origin report false.
func (r Ray) IntersectPlane(pl Plane) (Vec3, float64, bool) {
	denom := pl.Normal.Dot(r.Dir)
	if math.Abs(denom) < ParallelEpsilon {
		return Vec3{}, 0, false
	}
	t := -(pl.Normal.Dot(r.Origin) + pl.Off) / denom
	if t < 0 {
		return Vec3{}, 0, false
	}
	return r.At(t), t, true
}

// IntersectSphere returns the nearest non-negative parameter where the ray
// enters (or, from inside, leaves) a sphere.
func (r Ray) IntersectSphere(center Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.LenSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectTriangle is the Möller–Trumbore test; both faces count as hits.
func (r Ray) IntersectTriangle(a, b, c Vec3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < ParallelEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

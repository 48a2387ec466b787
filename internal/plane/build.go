// Package plane turns four picked world points into a planar quad.
package plane

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"projmap/internal/mathutil"
	"projmap/internal/quad"
)

var (
	// ErrInvalidSelection reports duplicate or collinear picks.
	ErrInvalidSelection = errors.New("plane: invalid selection")
	// ErrDegenerateBasis reports that no in-plane axis could be derived.
	ErrDegenerateBasis = errors.New("plane: degenerate basis")
)

// TryBuildQuad builds a quad from four points in any order. The normal is
// oriented so its dominant component is positive.
func TryBuildQuad(points []mathutil.Vec3) (*quad.Quad, error) {
	return build(points, nil)
}

type corner struct {
	world mathutil.Vec3
	angle float64
}

func build(points []mathutil.Vec3, viewer *mathutil.Vec3) (*quad.Quad, error) {
	if len(points) != quad.VertexCount {
		return nil, fmt.Errorf("%w: need %d points, got %d", ErrInvalidSelection, quad.VertexCount, len(points))
	}
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if points[i].Dist(points[j]) < mathutil.DuplicateEpsilon {
				return nil, fmt.Errorf("%w: points %d and %d coincide", ErrInvalidSelection, i, j)
			}
		}
	}

	p0, p1, p2 := points[0], points[1], points[2]
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.LenSq() < mathutil.CollinearEpsilon {
		return nil, fmt.Errorf("%w: points are collinear", ErrInvalidSelection)
	}
	n = orient(n.Normalize(), p0, viewer)

	var c mathutil.Vec3
	for _, p := range points {
		c = c.Add(p)
	}
	c = c.Scale(1 / float64(len(points)))

	axisX, err := orderingAxis(points, c, n)
	if err != nil {
		return nil, err
	}
	axisY := n.Cross(axisX)

	corners := make([]corner, len(points))
	for i, p := range points {
		d := p.Sub(c)
		corners[i] = corner{world: p, angle: math.Atan2(d.Dot(axisY), d.Dot(axisX))}
	}
	slices.SortStableFunc(corners, func(a, b corner) int {
		switch {
		case a.angle < b.angle:
			return -1
		case a.angle > b.angle:
			return 1
		}
		return 0
	})

	// The angular order is cyclic; start it at the lexicographically smallest
	// point so the result does not depend on the pick order.
	start := 0
	for i := range corners {
		if lexLess(corners[i].world, corners[start].world) {
			start = i
		}
	}
	var ordered [quad.VertexCount]mathutil.Vec3
	for i := range ordered {
		ordered[i] = corners[(start+i)%len(corners)].world
	}

	frame, err := edgeFrame(ordered, c, n)
	if err != nil {
		return nil, err
	}
	return quad.New(ordered, unitUVs(ordered, frame), frame), nil
}

// orient flips n toward the viewer, or toward its dominant positive axis when
// there is none.
func orient(n, onPlane mathutil.Vec3, viewer *mathutil.Vec3) mathutil.Vec3 {
	if viewer != nil {
		if d := viewer.Sub(onPlane).Dot(n); math.Abs(d) > mathutil.PlaneEpsilon {
			if d < 0 {
				return n.Scale(-1)
			}
			return n
		}
	}
	dom := 0
	for i := 1; i < 3; i++ {
		if math.Abs(n[i]) > math.Abs(n[dom])+mathutil.PlaneEpsilon {
			dom = i
		}
	}
	if n[dom] < 0 {
		return n.Scale(-1)
	}
	return n
}

func orderingAxis(points []mathutil.Vec3, c, n mathutil.Vec3) (mathutil.Vec3, error) {
	candidates := []mathutil.Vec3{
		points[0].Sub(c),
		points[1].Sub(c),
		mathutil.WorldUp.Cross(n),
		mathutil.WorldRight,
	}
	for _, a := range candidates {
		if a = a.Reject(n); a.LenSq() > mathutil.BasisEpsilon {
			return a.Normalize(), nil
		}
	}
	return mathutil.Vec3{}, ErrDegenerateBasis
}

// edgeFrame anchors the quad's frame at the centroid with X along the first
// ordered edge.
func edgeFrame(ordered [quad.VertexCount]mathutil.Vec3, c, n mathutil.Vec3) (quad.Frame, error) {
	x := ordered[1].Sub(ordered[0]).Reject(n)
	if x.LenSq() <= mathutil.BasisEpsilon {
		return quad.Frame{}, ErrDegenerateBasis
	}
	x = x.Normalize()
	return quad.Frame{Origin: c, AxisX: x, AxisY: n.Cross(x), Normal: n}, nil
}

// unitUVs maps the in-plane bounding box of the corners onto [0,1]x[0,1].
func unitUVs(ordered [quad.VertexCount]mathutil.Vec3, f quad.Frame) [quad.VertexCount]mathutil.Vec2 {
	var local [quad.VertexCount]mathutil.Vec2
	lo := mathutil.Vec2{math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec2{math.Inf(-1), math.Inf(-1)}
	for i, p := range ordered {
		l := f.Local(p)
		local[i] = l
		for k := 0; k < 2; k++ {
			lo[k] = math.Min(lo[k], l[k])
			hi[k] = math.Max(hi[k], l[k])
		}
	}
	span := hi.Sub(lo)
	for k := 0; k < 2; k++ {
		if span[k]*span[k] < mathutil.BasisEpsilon {
			span[k] = 1
		}
	}
	var uvs [quad.VertexCount]mathutil.Vec2
	for i, l := range local {
		d := l.Sub(lo)
		uvs[i] = mathutil.Vec2{d[0] / span[0], d[1] / span[1]}
	}
	return uvs
}

func lexLess(a, b mathutil.Vec3) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

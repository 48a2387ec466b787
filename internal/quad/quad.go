// Package quad owns a planar four-cornered projection surface, the editor that
// mutates its vertices and the drag handles that drive the editor.
package quad

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"projmap/internal/mathutil"
)

// VertexCount is the number of corners of every quad.
const VertexCount = 4

var (
	// ErrSizeMismatch is returned when a vertex buffer of the wrong length is
	// supplied to Restore.
	ErrSizeMismatch = errors.New("quad: vertex count mismatch")
	// ErrVertexIndex is returned for a vertex index outside the buffer.
	ErrVertexIndex = errors.New("quad: vertex index out of range")
)

// Quad is a planar surface. Its plane is the local XY plane of Transform, so
// every local vertex has z == 0 and local +Z is the plane normal.
type Quad struct {
	ID        string
	Name      string
	Transform mathutil.Transform

	// Texture tiling and offset consumed by the warp stage.
	Tiling mathutil.Vec2
	Offset mathutil.Vec2

	mesh   Mesh
	normal mathutil.Vec3
}

// Frame is an orthonormal in-plane basis anchored at Origin.
type Frame struct {
	Origin mathutil.Vec3
	AxisX  mathutil.Vec3
	AxisY  mathutil.Vec3
	Normal mathutil.Vec3
}

// Local returns the in-plane coordinates of p.
func (f Frame) Local(p mathutil.Vec3) mathutil.Vec2 {
	d := p.Sub(f.Origin)
	return mathutil.Vec2{d.Dot(f.AxisX), d.Dot(f.AxisY)}
}

// New builds a quad from four ordered world points. The transform is placed at
// the frame origin with local X/Y/Z on the frame axes; any off-plane component
// of the points is dropped.
func New(ordered [VertexCount]mathutil.Vec3, uvs [VertexCount]mathutil.Vec2, frame Frame) *Quad {
	q := &Quad{
		ID:   uuid.NewString(),
		Name: "GeneratedPlane",
		Transform: mathutil.Transform{
			Position: frame.Origin,
			Rotation: mathutil.QuatFromMat3(mathutil.Mat3FromCols(frame.AxisX, frame.AxisY, frame.Normal)),
			Scale:    mathutil.Vec3One,
		},
		Tiling: mathutil.Vec2{1, 1},
		normal: mathutil.Vec3Z,
	}
	q.mesh.Verts = make([]mathutil.Vec3, VertexCount)
	q.mesh.UVs = make([]mathutil.Vec2, VertexCount)
	for i, p := range ordered {
		l := frame.Local(p)
		q.mesh.Verts[i] = mathutil.Vec3{l[0], l[1], 0}
		q.mesh.UVs[i] = uvs[i]
	}
	q.mesh.Tris = append([][3]int(nil), quadTris...)
	q.mesh.RecalculateNormals()
	q.mesh.RecalculateBounds()
	return q
}

// FromLocal rebuilds a quad from stored local vertices, e.g. when loading a
// scene. Vertices are pinned to the local XY plane.
func FromLocal(id string, verts []mathutil.Vec3, uvs []mathutil.Vec2, tr mathutil.Transform) (*Quad, error) {
	if len(verts) != VertexCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(verts), VertexCount)
	}
	if id == "" {
		id = uuid.NewString()
	}
	q := &Quad{
		ID:        id,
		Name:      "GeneratedPlane",
		Transform: tr,
		Tiling:    mathutil.Vec2{1, 1},
		normal:    mathutil.Vec3Z,
	}
	q.mesh.Verts = make([]mathutil.Vec3, VertexCount)
	for i, v := range verts {
		q.mesh.Verts[i] = pin(v)
	}
	if len(uvs) == VertexCount {
		q.mesh.UVs = append([]mathutil.Vec2(nil), uvs...)
	} else {
		q.mesh.UVs = []mathutil.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	}
	q.mesh.Tris = append([][3]int(nil), quadTris...)
	q.mesh.RecalculateNormals()
	q.mesh.RecalculateBounds()
	return q, nil
}

// pin drops the out-of-plane component of a local position.
func pin(v mathutil.Vec3) mathutil.Vec3 {
	return mathutil.Vec3{v[0], v[1], 0}
}

// VertexCount returns the length of the live vertex buffer.
func (q *Quad) VertexCount() int {
	return len(q.mesh.Verts)
}

// LocalVertex returns vertex i in local space.
func (q *Quad) LocalVertex(i int) (mathutil.Vec3, bool) {
	if i < 0 || i >= len(q.mesh.Verts) {
		return mathutil.Vec3{}, false
	}
	return q.mesh.Verts[i], true
}

// WorldVertex returns vertex i transformed to world space.
func (q *Quad) WorldVertex(i int) (mathutil.Vec3, bool) {
	v, ok := q.LocalVertex(i)
	if !ok {
		return mathutil.Vec3{}, false
	}
	return q.Transform.TransformPoint(v), true
}

// WorldVertices returns all vertices in world space.
func (q *Quad) WorldVertices() []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(q.mesh.Verts))
	for i, v := range q.mesh.Verts {
		out[i] = q.Transform.TransformPoint(v)
	}
	return out
}

// Normal is the constant local plane normal.
func (q *Quad) Normal() mathutil.Vec3 {
	return q.normal
}

// Plane is the world plane the quad lies in.
func (q *Quad) Plane() mathutil.Plane {
	return mathutil.PlaneFromPoint(q.Transform.Forward(), q.Transform.Position)
}

// Mesh returns a copy of the current mesh.
func (q *Quad) Mesh() Mesh {
	return q.mesh.Clone()
}

// Raycast tests the ray against both triangles in world space and returns the
// nearest hit.
func (q *Quad) Raycast(ray mathutil.Ray) (mathutil.Vec3, float64, bool) {
	world := q.WorldVertices()
	best, found := 0.0, false
	for _, tri := range q.mesh.Tris {
		d, ok := ray.IntersectTriangle(world[tri[0]], world[tri[1]], world[tri[2]])
		if ok && (!found || d < best) {
			best, found = d, true
		}
	}
	if !found {
		return mathutil.Vec3{}, 0, false
	}
	return ray.At(best), best, true
}

func (q *Quad) setVertex(i int, local mathutil.Vec3) {
	q.mesh.Verts[i] = local
	q.mesh.RecalculateNormals()
	q.mesh.RecalculateBounds()
}

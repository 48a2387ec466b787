package quad

import "projmap/internal/mathutil"

// Mesh holds the quad geometry in local space. Tris index into Verts; UVs and
// Normals are per vertex.
type Mesh struct {
	Verts   []mathutil.Vec3
	UVs     []mathutil.Vec2
	Normals []mathutil.Vec3
	Tris    [][3]int
	Bounds  mathutil.Box3
}

// quadTris splits an ordered quad along the 0–2 diagonal.
var quadTris = [][3]int{{0, 1, 2}, {0, 2, 3}}

// RecalculateNormals sets each vertex normal to the normalized, area-weighted
// sum of the face normals touching it.
func (m *Mesh) RecalculateNormals() {
	if len(m.Normals) != len(m.Verts) {
		m.Normals = make([]mathutil.Vec3, len(m.Verts))
	}
	for i := range m.Normals {
		m.Normals[i] = mathutil.Vec3{}
	}
	for _, tri := range m.Tris {
		a, b, c := m.Verts[tri[0]], m.Verts[tri[1]], m.Verts[tri[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, vi := range tri {
			m.Normals[vi] = m.Normals[vi].Add(n)
		}
	}
	for i, n := range m.Normals {
		m.Normals[i] = n.Normalize()
	}
}

// RecalculateBounds refits Bounds to Verts.
func (m *Mesh) RecalculateBounds() {
	m.Bounds = mathutil.BoxFromPoints(m.Verts)
}

// Clone returns a deep copy.
func (m *Mesh) Clone() Mesh {
	out := Mesh{
		Verts:   append([]mathutil.Vec3(nil), m.Verts...),
		UVs:     append([]mathutil.Vec2(nil), m.UVs...),
		Normals: append([]mathutil.Vec3(nil), m.Normals...),
		Tris:    append([][3]int(nil), m.Tris...),
		Bounds:  m.Bounds,
	}
	return out
}

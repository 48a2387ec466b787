package tracker

import (
	"projmap/internal/mathutil"
	"projmap/internal/quad"
)

// CornerRef supplies the world position of one tracked corner. It reports
// false while the referenced object is absent.
type CornerRef interface {
	WorldPosition() (mathutil.Vec3, bool)
}

// Binding maps the four logical corners to concrete tracked points.
type Binding [4]CornerRef

// HandleRef tracks an editor handle.
type HandleRef struct {
	Handle *quad.Handle
}

func (r HandleRef) WorldPosition() (mathutil.Vec3, bool) {
	if r.Handle == nil {
		return mathutil.Vec3{}, false
	}
	return r.Handle.Position(), true
}

// VertexRef tracks a raw mesh vertex of a quad.
type VertexRef struct {
	Quad  *quad.Quad
	Index int
}

func (r VertexRef) WorldPosition() (mathutil.Vec3, bool) {
	if r.Quad == nil {
		return mathutil.Vec3{}, false
	}
	return r.Quad.WorldVertex(r.Index)
}

// HandleBinding tracks the first four handles of an editor.
func HandleBinding(e *quad.Editor) Binding {
	var b Binding
	for i := range b {
		var h *quad.Handle
		if e != nil {
			h = e.Handle(i)
		}
		b[i] = HandleRef{Handle: h}
	}
	return b
}

// VertexBinding tracks four mesh vertices of q. An index outside the vertex
// buffer counts as a missing reference.
func VertexBinding(q *quad.Quad, i0, i1, i2, i3 int) Binding {
	return Binding{
		VertexRef{Quad: q, Index: i0},
		VertexRef{Quad: q, Index: i1},
		VertexRef{Quad: q, Index: i2},
		VertexRef{Quad: q, Index: i3},
	}
}

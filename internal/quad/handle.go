package quad

import "projmap/internal/mathutil"

// HandleState is the drag state of a handle.
type HandleState int

const (
	Idle HandleState = iota
	Dragging
)

func (s HandleState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

// Handle is the interactive proxy of one quad vertex.
type Handle struct {
	editor *Editor
	index  int
	state  HandleState

	position mathutil.Vec3 // world
	pinnedZ  float64       // local z captured when the handle was created

	// Radius of the hit sphere in world units.
	Radius float64
}

func newHandle(e *Editor, index int, radius float64) *Handle {
	h := &Handle{editor: e, index: index, Radius: radius}
	if v, ok := e.quad.LocalVertex(index); ok {
		h.pinnedZ = v[2]
		h.position = e.quad.Transform.TransformPoint(v)
	}
	return h
}

// Index is the vertex index the handle drives.
func (h *Handle) Index() int {
	return h.index
}

// State returns the current drag state.
func (h *Handle) State() HandleState {
	return h.state
}

// Position returns the handle's world position.
func (h *Handle) Position() mathutil.Vec3 {
	return h.position
}

// Hit tests the ray against the handle's hit sphere.
func (h *Handle) Hit(ray mathutil.Ray) (float64, bool) {
	return ray.IntersectSphere(h.position, h.Radius)
}

// Press starts a drag.
func (h *Handle) Press() {
	h.state = Dragging
}

// Release ends a drag. Moves already applied are kept.
func (h *Handle) Release() {
	h.state = Idle
}

// Drag performs one drag step toward the pointer position. The pointer ray is
// intersected with the plane through the handle facing along the quad's
// forward axis; the hit is pinned to the handle's local z before it is handed
// to MoveVertex. It reports whether the vertex moved; a ray parallel to the
// plane is a no-op.
func (h *Handle) Drag(pointer mathutil.Vec2) bool {
	if h.state != Dragging || h.editor.cam == nil {
		return false
	}
	tr := h.editor.quad.Transform
	ray := h.editor.cam.ScreenPointToRay(pointer)
	hit, _, ok := ray.IntersectPlane(mathutil.PlaneFromPoint(tr.Forward(), h.position))
	if !ok {
		return false
	}
	local := tr.InverseTransformPoint(hit)
	local[2] = h.pinnedZ
	return h.editor.MoveVertex(h.index, tr.TransformPoint(local)) == nil
}

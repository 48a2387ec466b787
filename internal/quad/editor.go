package quad

import (
	"fmt"

	"projmap/internal/mathutil"
)

// RayCaster turns a pointer position (screen pixels, top-left origin) into a
// world-space ray. Implemented by camera.Camera.
type RayCaster interface {
	ScreenPointToRay(px mathutil.Vec2) mathutil.Ray
}

// Pointer is the pointer state for one frame.
type Pointer struct {
	Position mathutil.Vec2
	Pressed  bool // went down this frame
	Released bool // went up this frame
}

// DefaultHandleRadius is the radius of a handle's hit sphere in world units.
const DefaultHandleRadius = 0.05

// State is the editable state of a quad: its vertices plus texture tiling and
// offset.
type State struct {
	Vertices []mathutil.Vec3
	Tiling   mathutil.Vec2
	Offset   mathutil.Vec2
}

// Editor owns the live vertex buffer of a quad and its drag handles. MoveVertex
// is the only path that writes vertex geometry.
type Editor struct {
	quad    *Quad
	cam     RayCaster
	handles []*Handle
	visible bool
	active  *Handle
}

// NewEditor creates one hidden handle per vertex. The editor must not outlive q;
// cam may be nil until a camera is available.
func NewEditor(q *Quad, cam RayCaster) *Editor {
	e := &Editor{quad: q, cam: cam}
	e.handles = make([]*Handle, q.VertexCount())
	for i := range e.handles {
		e.handles[i] = newHandle(e, i, DefaultHandleRadius)
	}
	return e
}

// Quad returns the edited quad.
func (e *Editor) Quad() *Quad {
	return e.quad
}

// SetCamera replaces the observing camera used to resolve drag rays.
func (e *Editor) SetCamera(cam RayCaster) {
	e.cam = cam
}

// SetHandleRadius resizes every handle's hit sphere.
func (e *Editor) SetHandleRadius(r float64) {
	for _, h := range e.handles {
		h.Radius = r
	}
}

// Handles returns the handles in vertex order.
func (e *Editor) Handles() []*Handle {
	return e.handles
}

// Handle returns the handle of vertex i, or nil.
func (e *Editor) Handle(i int) *Handle {
	if i < 0 || i >= len(e.handles) {
		return nil
	}
	return e.handles[i]
}

// MoveVertex moves vertex i toward a proposed world position. The position is
// converted to local space and pinned to the quad's plane, so the stored vertex
// never leaves it.
func (e *Editor) MoveVertex(i int, world mathutil.Vec3) error {
	if i < 0 || i >= e.quad.VertexCount() {
		return fmt.Errorf("%w: %d", ErrVertexIndex, i)
	}
	local := pin(e.quad.Transform.InverseTransformPoint(world))
	e.quad.setVertex(i, local)
	e.handles[i].position = e.quad.Transform.TransformPoint(local)
	return nil
}

// Snapshot returns a copy of the local vertex buffer.
func (e *Editor) Snapshot() []mathutil.Vec3 {
	return append([]mathutil.Vec3(nil), e.quad.mesh.Verts...)
}

// Restore replaces the vertex buffer and ends any drag. A buffer of a
// different length is rejected with ErrSizeMismatch and leaves the quad
// unchanged.
func (e *Editor) Restore(verts []mathutil.Vec3) error {
	if len(verts) != e.quad.VertexCount() {
		return fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(verts), e.quad.VertexCount())
	}
	for i, v := range verts {
		e.quad.mesh.Verts[i] = pin(v)
	}
	e.quad.mesh.RecalculateNormals()
	e.quad.mesh.RecalculateBounds()
	e.endDrag()
	e.RefreshHandles()
	return nil
}

// SnapshotState captures vertices, tiling and offset.
func (e *Editor) SnapshotState() State {
	return State{
		Vertices: e.Snapshot(),
		Tiling:   e.quad.Tiling,
		Offset:   e.quad.Offset,
	}
}

// RestoreState applies a captured state. On a vertex count mismatch nothing is
// applied.
func (e *Editor) RestoreState(s State) error {
	if err := e.Restore(s.Vertices); err != nil {
		return err
	}
	e.quad.Tiling = s.Tiling
	e.quad.Offset = s.Offset
	return nil
}

// ShowHandles makes the handles visible and pickable.
func (e *Editor) ShowHandles() {
	if e.visible {
		return
	}
	e.visible = true
	e.RefreshHandles()
}

// HideHandles hides the handles and ends any drag. Handle state is kept.
func (e *Editor) HideHandles() {
	if !e.visible {
		return
	}
	e.visible = false
	e.endDrag()
}

func (e *Editor) endDrag() {
	if e.active != nil {
		e.active.Release()
		e.active = nil
	}
}

// HandlesVisible reports whether the handles are shown.
func (e *Editor) HandlesVisible() bool {
	return e.visible
}

// Update runs one frame: pointer press picks the nearest handle under the
// pointer, a dragging handle follows the pointer, release ends the drag. Handle
// positions are then re-derived from the vertex buffer and transform.
func (e *Editor) Update(p Pointer) {
	if e.visible && e.cam != nil {
		if p.Pressed && e.active == nil {
			ray := e.cam.ScreenPointToRay(p.Position)
			if h := e.pick(ray); h != nil {
				h.Press()
				e.active = h
			}
		}
		if e.active != nil {
			e.active.Drag(p.Position)
		}
		if p.Released && e.active != nil {
			e.active.Release()
			e.active = nil
		}
	}
	e.RefreshHandles()
}

// Dragging returns the handle being dragged, or nil.
func (e *Editor) Dragging() *Handle {
	return e.active
}

func (e *Editor) pick(ray mathutil.Ray) *Handle {
	var best *Handle
	bestDist := 0.0
	for _, h := range e.handles {
		d, ok := h.Hit(ray)
		if ok && (best == nil || d < bestDist) {
			best, bestDist = h, d
		}
	}
	return best
}

// RefreshHandles re-derives handle world positions from the vertex buffer and
// the quad's transform.
func (e *Editor) RefreshHandles() {
	for i, h := range e.handles {
		if w, ok := e.quad.WorldVertex(i); ok {
			h.position = w
		}
	}
}

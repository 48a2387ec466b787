package quad_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projmap/internal/camera"
	"projmap/internal/mathutil"
	"projmap/internal/quad"
)

func square(t *testing.T, z float64) *quad.Quad {
	t.Helper()
	tr := mathutil.NewTransform()
	tr.Position = mathutil.Vec3{0, 0, z}
	q, err := quad.FromLocal("", []mathutil.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}, nil, tr)
	require.NoError(t, err)
	return q
}

// 100x100 pixels, 90 degree FOV, looking down -Z from the origin.
func viewer() *camera.Camera {
	c := camera.New()
	c.FOV = 90
	c.Aspect = 1
	c.Width, c.Height = 100, 100
	return c
}

func TestFromLocalRejectsWrongCount(t *testing.T) {
	_, err := quad.FromLocal("", []mathutil.Vec3{{0, 0, 0}}, nil, mathutil.NewTransform())
	assert.True(t, errors.Is(err, quad.ErrSizeMismatch))
}

func TestFromLocalPinsVertices(t *testing.T) {
	q, err := quad.FromLocal("abc", []mathutil.Vec3{{0, 0, 3}, {1, 0, -2}, {1, 1, 0}, {0, 1, 7}}, nil, mathutil.NewTransform())
	require.NoError(t, err)
	assert.Equal(t, "abc", q.ID)
	for i := 0; i < q.VertexCount(); i++ {
		v, ok := q.LocalVertex(i)
		require.True(t, ok)
		assert.Zero(t, v[2])
	}
	m := q.Mesh()
	assert.Equal(t, []mathutil.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, m.UVs)
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, m.Tris)
}

func TestQuadRaycast(t *testing.T) {
	q := square(t, -5)
	hit, d, ok := q.Raycast(mathutil.NewRay(mathutil.Vec3{0.5, -0.25, 0}, mathutil.Vec3{0, 0, -1}))
	require.True(t, ok)
	assert.InDelta(t, 5, d, 1e-9)
	assert.True(t, hit.ApproxEqual(mathutil.Vec3{0.5, -0.25, -5}, 1e-9))

	_, _, ok = q.Raycast(mathutil.NewRay(mathutil.Vec3{3, 0, 0}, mathutil.Vec3{0, 0, -1}))
	assert.False(t, ok)
}

func TestMoveVertexStaysOnPlane(t *testing.T) {
	q := square(t, -5)
	// tilt the quad so the plane is not axis aligned
	q.Transform.Rotation = mathutil.EulerToQuat(mathutil.Deg2Rad(20), mathutil.Deg2Rad(35), 0)
	ed := quad.NewEditor(q, nil)
	plane := q.Plane()

	target := q.Transform.TransformPoint(mathutil.Vec3{0.5, -0.25, 10})
	require.NoError(t, ed.MoveVertex(2, target))

	for _, w := range q.WorldVertices() {
		assert.InDelta(t, 0, plane.Distance(w), 1e-9)
	}
	v, _ := q.LocalVertex(2)
	assert.True(t, v.ApproxEqual(mathutil.Vec3{0.5, -0.25, 0}, 1e-9))
	assert.True(t, ed.Handle(2).Position().ApproxEqual(q.Transform.TransformPoint(v), 1e-9))
}

func TestMoveVertexIdempotent(t *testing.T) {
	q := square(t, -5)
	ed := quad.NewEditor(q, nil)
	p := mathutil.Vec3{0.3, 0.2, -5}
	require.NoError(t, ed.MoveVertex(1, p))
	first := ed.Snapshot()
	require.NoError(t, ed.MoveVertex(1, p))
	assert.Equal(t, first, ed.Snapshot())
}

func TestMoveVertexIndexOutOfRange(t *testing.T) {
	ed := quad.NewEditor(square(t, -5), nil)
	assert.ErrorIs(t, ed.MoveVertex(4, mathutil.Vec3{}), quad.ErrVertexIndex)
	assert.ErrorIs(t, ed.MoveVertex(-1, mathutil.Vec3{}), quad.ErrVertexIndex)
}

func TestSnapshotRestore(t *testing.T) {
	q := square(t, -5)
	ed := quad.NewEditor(q, nil)
	before := ed.Snapshot()

	require.NoError(t, ed.MoveVertex(0, mathutil.Vec3{-2, -2, -5}))
	require.NoError(t, ed.MoveVertex(3, mathutil.Vec3{-3, 2, -5}))
	assert.NotEqual(t, before, ed.Snapshot())

	require.NoError(t, ed.Restore(before))
	assert.Equal(t, before, ed.Snapshot())
	assert.True(t, ed.Handle(0).Position().ApproxEqual(mathutil.Vec3{-1, -1, -5}, 1e-9))
}

func TestSnapshotIsACopy(t *testing.T) {
	q := square(t, -5)
	ed := quad.NewEditor(q, nil)
	snap := ed.Snapshot()
	snap[0] = mathutil.Vec3{9, 9, 9}
	v, _ := q.LocalVertex(0)
	assert.Equal(t, mathutil.Vec3{-1, -1, 0}, v)
}

func TestRestoreSizeMismatchLeavesQuad(t *testing.T) {
	q := square(t, -5)
	ed := quad.NewEditor(q, nil)
	before := ed.Snapshot()

	err := ed.Restore([]mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, quad.ErrSizeMismatch))
	assert.Equal(t, before, ed.Snapshot())
}

func TestStateRoundTrip(t *testing.T) {
	q := square(t, -5)
	ed := quad.NewEditor(q, nil)
	s := ed.SnapshotState()

	q.Tiling = mathutil.Vec2{3, 2}
	q.Offset = mathutil.Vec2{0.5, 0}
	require.NoError(t, ed.MoveVertex(1, mathutil.Vec3{4, -1, -5}))

	require.NoError(t, ed.RestoreState(s))
	assert.Equal(t, mathutil.Vec2{1, 1}, q.Tiling)
	assert.Equal(t, mathutil.Vec2{0, 0}, q.Offset)
	assert.Equal(t, s.Vertices, ed.Snapshot())

	err := ed.RestoreState(quad.State{Vertices: nil, Tiling: mathutil.Vec2{7, 7}})
	assert.ErrorIs(t, err, quad.ErrSizeMismatch)
	assert.Equal(t, mathutil.Vec2{1, 1}, q.Tiling)
}

func TestShowHideIdempotent(t *testing.T) {
	ed := quad.NewEditor(square(t, -5), viewer())
	assert.False(t, ed.HandlesVisible())
	ed.ShowHandles()
	ed.ShowHandles()
	assert.True(t, ed.HandlesVisible())
	ed.HideHandles()
	ed.HideHandles()
	assert.False(t, ed.HandlesVisible())
}

func TestHandleDrag(t *testing.T) {
	q := square(t, -5)
	ed := quad.NewEditor(q, viewer())
	ed.ShowHandles()

	// vertex 0 sits at world (-1,-1,-5), which is pixel (40,60)
	ed.Update(quad.Pointer{Position: mathutil.Vec2{40, 60}, Pressed: true})
	h := ed.Handle(0)
	require.Equal(t, quad.Dragging, h.State())
	assert.Same(t, h, ed.Dragging())

	ed.Update(quad.Pointer{Position: mathutil.Vec2{50, 50}})
	v, _ := q.LocalVertex(0)
	assert.True(t, v.ApproxEqual(mathutil.Vec3{0, 0, 0}, 1e-9))
	assert.True(t, h.Position().ApproxEqual(mathutil.Vec3{0, 0, -5}, 1e-9))

	ed.Update(quad.Pointer{Position: mathutil.Vec2{40, 50}, Released: true})
	assert.Equal(t, quad.Idle, h.State())
	assert.Nil(t, ed.Dragging())
	v, _ = q.LocalVertex(0)
	assert.True(t, v.ApproxEqual(mathutil.Vec3{-1, 0, 0}, 1e-9))

	// further pointer motion without a press does nothing
	ed.Update(quad.Pointer{Position: mathutil.Vec2{10, 10}})
	v2, _ := q.LocalVertex(0)
	assert.Equal(t, v, v2)
}

func TestHandlesIgnorePointerWhenHidden(t *testing.T) {
	q := square(t, -5)
	ed := quad.NewEditor(q, viewer())
	before := ed.Snapshot()
	ed.Update(quad.Pointer{Position: mathutil.Vec2{40, 60}, Pressed: true})
	ed.Update(quad.Pointer{Position: mathutil.Vec2{50, 50}})
	assert.Nil(t, ed.Dragging())
	assert.Equal(t, before, ed.Snapshot())
}

func TestHideReleasesDrag(t *testing.T) {
	ed := quad.NewEditor(square(t, -5), viewer())
	ed.ShowHandles()
	ed.Update(quad.Pointer{Position: mathutil.Vec2{40, 60}, Pressed: true})
	require.NotNil(t, ed.Dragging())
	ed.HideHandles()
	assert.Nil(t, ed.Dragging())
	assert.Equal(t, quad.Idle, ed.Handle(0).State())
}

func TestRestoreEndsDrag(t *testing.T) {
	ed := quad.NewEditor(square(t, -5), viewer())
	ed.ShowHandles()
	saved := ed.Snapshot()
	ed.Update(quad.Pointer{Position: mathutil.Vec2{40, 60}, Pressed: true})
	require.NotNil(t, ed.Dragging())

	require.NoError(t, ed.Restore(saved))
	assert.Nil(t, ed.Dragging())
	assert.Equal(t, quad.Idle, ed.Handle(0).State())

	ed.Update(quad.Pointer{})
	assert.Equal(t, saved, ed.Snapshot())
}

func TestPressMissesHandles(t *testing.T) {
	ed := quad.NewEditor(square(t, -5), viewer())
	ed.ShowHandles()
	ed.Update(quad.Pointer{Position: mathutil.Vec2{50, 50}, Pressed: true})
	assert.Nil(t, ed.Dragging())
}

func TestDragRayParallelIsNoop(t *testing.T) {
	q := square(t, -5)
	// plane contains the camera's view rays through the center row
	q.Transform.Rotation = mathutil.AxisAngle(mathutil.Vec3X, mathutil.Deg2Rad(90))
	ed := quad.NewEditor(q, viewer())
	h := ed.Handle(0)
	h.Press()
	before := ed.Snapshot()
	assert.False(t, h.Drag(mathutil.Vec2{50, 50}))
	assert.Equal(t, before, ed.Snapshot())
}

func TestUpdateFollowsTransform(t *testing.T) {
	q := square(t, -5)
	ed := quad.NewEditor(q, nil)
	q.Transform.Position = mathutil.Vec3{1, 0, -5}
	ed.Update(quad.Pointer{})
	assert.True(t, ed.Handle(0).Position().ApproxEqual(mathutil.Vec3{0, -1, -5}, 1e-9))
}

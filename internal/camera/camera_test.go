package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projmap/internal/mathutil"
)

func frontoParallel() *Camera {
	c := New()
	c.FOV = 90
	c.Aspect = 1
	return c
}

func TestWorldToViewportQuadrantCorners(t *testing.T) {
	c := frontoParallel()
	cases := []struct {
		world mathutil.Vec3
		want  mathutil.Vec2
	}{
		{mathutil.Vec3{-1, -1, -1}, mathutil.Vec2{0, 0}},
		{mathutil.Vec3{1, -1, -1}, mathutil.Vec2{1, 0}},
		{mathutil.Vec3{1, 1, -1}, mathutil.Vec2{1, 1}},
		{mathutil.Vec3{-1, 1, -1}, mathutil.Vec2{0, 1}},
		{mathutil.Vec3{0, 0, -5}, mathutil.Vec2{0.5, 0.5}},
	}
	for _, tc := range cases {
		vp, ok := c.WorldToViewport(tc.world)
		require.True(t, ok)
		assert.InDelta(t, tc.want[0], vp[0], 1e-9)
		assert.InDelta(t, tc.want[1], vp[1], 1e-9)
		assert.InDelta(t, -tc.world[2], vp[2], 1e-9)
	}
}

func TestWorldToViewportBehindCamera(t *testing.T) {
	c := frontoParallel()
	_, ok := c.WorldToViewport(mathutil.Vec3{0, 0, 1})
	assert.False(t, ok)
}

func TestWorldToViewportOrtho(t *testing.T) {
	c := New()
	c.Ortho = true
	c.OrthoSize = 2
	c.Aspect = 2
	vp, ok := c.WorldToViewport(mathutil.Vec3{4, -2, -3})
	require.True(t, ok)
	assert.InDelta(t, 1, vp[0], 1e-9)
	assert.InDelta(t, 0, vp[1], 1e-9)
}

func TestViewportRayRoundTrip(t *testing.T) {
	c := New()
	c.Position = mathutil.Vec3{2, 1, 6}
	c.LookAt(mathutil.Vec3{0, 0, 0}, mathutil.Vec3{})

	for _, vp := range []mathutil.Vec2{{0.5, 0.5}, {0.1, 0.9}, {0.75, 0.2}} {
		ray := c.ViewportPointToRay(vp)
		got, ok := c.WorldToViewport(ray.At(3))
		require.True(t, ok)
		assert.InDelta(t, vp[0], got[0], 1e-9)
		assert.InDelta(t, vp[1], got[1], 1e-9)
	}
}

func TestScreenPointToRayCenter(t *testing.T) {
	c := New()
	c.Width, c.Height = 200, 100
	ray := c.ScreenPointToRay(mathutil.Vec2{100, 50})
	assert.True(t, ray.Dir.ApproxEqual(mathutil.Vec3{0, 0, -1}, 1e-9))
	assert.Equal(t, mathutil.Vec2{0, 1}, c.ScreenToViewport(mathutil.Vec2{0, 0}))
}

func TestSaveRestoreView(t *testing.T) {
	c := New()
	c.Position = mathutil.Vec3{1, 2, 3}
	c.LookAt(mathutil.Vec3{}, mathutil.Vec3{})
	v := c.SaveView()

	c.Defaults()
	c.RestoreView(v)
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, c.Position)
	assert.True(t, c.Forward().ApproxEqual(mathutil.Vec3{-1, -2, -3}.Normalize(), 1e-9))
}

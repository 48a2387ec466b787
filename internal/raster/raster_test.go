package raster

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projmap/internal/mathutil"
	"projmap/internal/tracker"
)

type vectors map[string]mathutil.Vec4

func (v vectors) Vector(name string) (mathutil.Vec4, bool) {
	x, ok := v[name]
	return x, ok
}

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

// quadrants returns an 8x8 image: red top-left, green top-right, blue
// bottom-left, white bottom-right.
func quadrants() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := red
			switch {
			case x >= 4 && y < 4:
				c = green
			case x < 4 && y >= 4:
				c = blue
			case x >= 4 && y >= 4:
				c = white
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pixel(fb *FrameBuffer, x, y int) color.NRGBA {
	i := (y*fb.Width + x) * 4
	return color.NRGBA{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}

func TestSquareToQuadAffine(t *testing.T) {
	h, ok := SquareToQuad([4]mathutil.Vec2{{10, 10}, {30, 10}, {30, 20}, {10, 20}})
	require.True(t, ok)
	p, ok := h.Apply(mathutil.Vec2{0.5, 0.5})
	require.True(t, ok)
	assert.True(t, p.ApproxEqual(mathutil.Vec2{20, 15}, 1e-9))
}

func TestHomographyMapsCornersAndInverts(t *testing.T) {
	dst := [4]mathutil.Vec2{{12, 3}, {40, 8}, {35, 30}, {5, 25}}
	h, ok := SquareToQuad(dst)
	require.True(t, ok)
	inv, ok := h.Inverse()
	require.True(t, ok)
	for i, c := range unitSquare {
		p, ok := h.Apply(c)
		require.True(t, ok)
		assert.True(t, p.ApproxEqual(dst[i], 1e-9), "corner %d: %v", i, p)
		back, ok := inv.Apply(p)
		require.True(t, ok)
		assert.True(t, back.ApproxEqual(c, 1e-9))
	}
}

func TestSquareToQuadDegenerate(t *testing.T) {
	_, ok := SquareToQuad([4]mathutil.Vec2{{0, 0}, {1, 1}, {2, 2}, {3, 3}})
	assert.False(t, ok)
}

func TestRenderWarpFullFrame(t *testing.T) {
	cases := []struct {
		name    string
		opts    tracker.Options
		corners [4]mathutil.Vec3
	}{
		{"viewport", tracker.Options{}, [4]mathutil.Vec3{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
		{"flipped", tracker.Options{FlipY: true}, [4]mathutil.Vec3{{0, 1, 1}, {1, 1, 1}, {1, 0, 1}, {0, 0, 1}}},
		{"ndc", tracker.Options{Space: tracker.SpaceNDC}, [4]mathutil.Vec3{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFrameBuffer(4, 4)
			n := RenderWarp(fb, Warp{Corners: tc.corners, Tiling: mathutil.Vec2{1, 1}}, quadrants(), tc.opts)
			assert.Equal(t, 16, n)
			assert.Equal(t, red, pixel(fb, 0, 0))
			assert.Equal(t, green, pixel(fb, 3, 0))
			assert.Equal(t, blue, pixel(fb, 0, 3))
			assert.Equal(t, white, pixel(fb, 3, 3))
		})
	}
}

func TestRenderWarpPartialAndDefaultColor(t *testing.T) {
	fb := NewFrameBuffer(10, 10)
	w := Warp{Corners: [4]mathutil.Vec3{{0, 0, 1}, {0.5, 0, 1}, {0.5, 0.5, 1}, {0, 0.5, 1}}, Tiling: mathutil.Vec2{1, 1}}
	n := RenderWarp(fb, w, nil, tracker.Options{})
	assert.Equal(t, 25, n)
	assert.Equal(t, DefaultColor, pixel(fb, 0, 9))
	assert.Equal(t, color.NRGBA{}, pixel(fb, 9, 0))
}

func TestPixelBoundsClampsFarCorners(t *testing.T) {
	cases := []struct {
		name           string
		pts            [4]mathutil.Vec2
		x0, y0, x1, y1 int
	}{
		{"inside", [4]mathutil.Vec2{{1.2, 2.5}, {5.5, 2.5}, {5.5, 7.1}, {1.2, 7.1}}, 1, 2, 6, 8},
		{"near plane blowup", [4]mathutil.Vec2{{2, 9}, {6, 9}, {1e20, -1e20}, {-1e20, -1e20}}, 0, 0, 9, 9},
		{"infinite", [4]mathutil.Vec2{{math.Inf(-1), 3}, {math.Inf(1), 3}, {4, math.Inf(1)}, {4, 3}}, 0, 3, 9, 9},
		{"off to the right", [4]mathutil.Vec2{{20, 0}, {30, 0}, {30, 5}, {20, 5}}, 0, 0, -1, -1},
		{"nan", [4]mathutil.Vec2{{math.NaN(), 0}, {1, 0}, {1, 1}, {0, 1}}, 0, 0, -1, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x0, y0, x1, y1 := pixelBounds(tc.pts, 10, 10)
			assert.Equal(t, [4]int{tc.x0, tc.y0, tc.x1, tc.y1}, [4]int{x0, y0, x1, y1})
		})
	}
}

func TestRenderWarpDepthTest(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	full := [4]mathutil.Vec3{{0, 0, 2}, {1, 0, 2}, {1, 1, 2}, {0, 1, 2}}
	near := full
	for i := range near {
		near[i][2] = 1
	}
	solid := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	solid.SetNRGBA(0, 0, green)

	RenderWarp(fb, Warp{Corners: near, Tiling: mathutil.Vec2{1, 1}}, solid, tracker.Options{})
	n := RenderWarp(fb, Warp{Corners: full, Tiling: mathutil.Vec2{1, 1}}, nil, tracker.Options{})
	assert.Zero(t, n)
	assert.Equal(t, green, pixel(fb, 2, 2))
}

func TestRenderWarpTiling(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	w := Warp{Corners: [4]mathutil.Vec3{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}, Tiling: mathutil.Vec2{2, 2}}
	RenderWarp(fb, w, quadrants(), tracker.Options{})
	// two repeats per axis: each 4x4 output block holds a full copy
	assert.Equal(t, red, pixel(fb, 0, 0))
	assert.Equal(t, red, pixel(fb, 4, 0))
	assert.Equal(t, white, pixel(fb, 7, 7))
	assert.Equal(t, white, pixel(fb, 3, 3))
}

func TestReadWarp(t *testing.T) {
	src := vectors{}
	_, ok := ReadWarp(src)
	assert.False(t, ok)

	for i := 0; i < 4; i++ {
		src[tracker.CornerParam(i)] = mathutil.Vec4{float64(i), 0.5, 3, 0}
	}
	w, ok := ReadWarp(src)
	require.True(t, ok)
	assert.Equal(t, mathutil.Vec2{1, 1}, w.Tiling)
	assert.Equal(t, mathutil.Vec3{2, 0.5, 3}, w.Corners[2])

	src[tracker.ParamTiling] = mathutil.Vec4{2, 4, 0, 0}
	src[tracker.ParamOffset] = mathutil.Vec4{0.5, 0.25, 0, 0}
	w, ok = ReadWarp(src)
	require.True(t, ok)
	assert.Equal(t, mathutil.Vec2{2, 4}, w.Tiling)
	assert.Equal(t, mathutil.Vec2{0.5, 0.25}, w.Offset)
}

func TestViewportRoundTrip(t *testing.T) {
	for _, opts := range []tracker.Options{{}, {FlipY: true}, {Space: tracker.SpaceNDC}, {Space: tracker.SpaceNDC, FlipY: true}} {
		vp := Viewport{Width: 640, Height: 480, Opts: opts}
		px := mathutil.Vec2{123.5, 77.25}
		assert.True(t, vp.ToPixel(vp.ToSpace(px)).ApproxEqual(px, 1e-9), "%+v", opts)
	}
	vp := Viewport{Width: 100, Height: 100}
	assert.True(t, vp.ToSpace(mathutil.Vec2{0, 0}).ApproxEqual(mathutil.Vec2{0, 1}, 1e-12))
}

func TestSampleTextureWraps(t *testing.T) {
	tex := quadrants()
	assert.Equal(t, blue, SampleTexture(tex, 0.1, 0.1))
	assert.Equal(t, blue, SampleTexture(tex, 1.1, -0.9))
	assert.Equal(t, green, SampleTexture(tex, 0.9, 0.9))
}

func TestOverlay(t *testing.T) {
	fb := NewFrameBuffer(20, 20)
	FillRect(fb, mathutil.Vec2{10, 10}, 2, red)
	assert.Equal(t, red, pixel(fb, 10, 10))
	assert.Equal(t, color.NRGBA{}, pixel(fb, 15, 15))

	fb = NewFrameBuffer(20, 20)
	w := Warp{Corners: [4]mathutil.Vec3{{0.25, 0.25, 1}, {0.75, 0.25, 1}, {0.75, 0.75, 1}, {0.25, 0.75, 1}}}
	DrawOutline(fb, w, tracker.Options{}, 1, green)
	assert.Equal(t, green, pixel(fb, 5, 15))
	assert.Equal(t, green, pixel(fb, 10, 5))
	assert.Equal(t, color.NRGBA{}, pixel(fb, 10, 10))

	img := fb.Image()
	assert.Equal(t, green, img.NRGBAAt(5, 15))
}

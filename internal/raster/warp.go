// Package raster is a software reference consumer of warp parameters: it
// keystones a texture into the quad described by four projected corners.
package raster

import (
	"image"
	"image/color"
	"math"

	"projmap/internal/mathutil"
	"projmap/internal/tracker"
)

// DefaultColor fills surfaces without an image.
var DefaultColor = color.NRGBA{160, 160, 170, 255}

// VectorSource reads named vectors. Implemented by material.Material.
type VectorSource interface {
	Vector(name string) (mathutil.Vec4, bool)
}

// Warp is the set of parameters a keystone pass consumes.
type Warp struct {
	Corners [4]mathutil.Vec3
	Tiling  mathutil.Vec2
	Offset  mathutil.Vec2
}

// FromParams converts tracker output.
func FromParams(p tracker.WarpParams) Warp {
	return Warp{Corners: p.Corners, Tiling: p.Tiling, Offset: p.Offset}
}

// ReadWarp collects _P0.._P3, _Tiling and _Offset. It reports false when a
// corner is missing; tiling defaults to (1,1) and offset to zero.
func ReadWarp(src VectorSource) (Warp, bool) {
	w := Warp{Tiling: mathutil.Vec2{1, 1}}
	for i := range w.Corners {
		v, ok := src.Vector(tracker.CornerParam(i))
		if !ok {
			return Warp{}, false
		}
		w.Corners[i] = v.XYZ()
	}
	if v, ok := src.Vector(tracker.ParamTiling); ok {
		w.Tiling = mathutil.Vec2{v[0], v[1]}
	}
	if v, ok := src.Vector(tracker.ParamOffset); ok {
		w.Offset = mathutil.Vec2{v[0], v[1]}
	}
	return w, true
}

// Viewport converts between pixel coordinates of a frame buffer and the
// coordinate space the corners were published in.
type Viewport struct {
	Width, Height int
	Opts          tracker.Options
}

// ToSpace maps a pixel position (top-left origin) to corner space.
func (vp Viewport) ToSpace(px mathutil.Vec2) mathutil.Vec2 {
	x := px[0] / float64(vp.Width)
	y := 1 - px[1]/float64(vp.Height)
	if vp.Opts.FlipY {
		y = 1 - y
	}
	if vp.Opts.Space == tracker.SpaceNDC {
		x, y = x*2-1, y*2-1
	}
	return mathutil.Vec2{x, y}
}

// ToPixel is the inverse of ToSpace.
func (vp Viewport) ToPixel(p mathutil.Vec2) mathutil.Vec2 {
	x, y := p[0], p[1]
	if vp.Opts.Space == tracker.SpaceNDC {
		x, y = (x+1)/2, (y+1)/2
	}
	if vp.Opts.FlipY {
		y = 1 - y
	}
	return mathutil.Vec2{x * float64(vp.Width), (1 - y) * float64(vp.Height)}
}

// RenderWarp fills the quad spanned by the warp corners with tex mapped
// through the unit-square homography, so corner i shows texture corner i
// of (0,0),(1,0),(1,1),(0,1) after tiling and offset. Depth is interpolated
// from the corner depths and z-tested. It returns the number of pixels
// written; a nil tex fills with DefaultColor.
func RenderWarp(fb *FrameBuffer, w Warp, tex *image.NRGBA, opts tracker.Options) int {
	vp := Viewport{Width: fb.Width, Height: fb.Height, Opts: opts}

	var dst [4]mathutil.Vec2
	for i, c := range w.Corners {
		dst[i] = vp.ToPixel(mathutil.Vec2{c[0], c[1]})
	}
	h, ok := SquareToQuad(dst)
	if !ok {
		return 0
	}
	inv, ok := h.Inverse()
	if !ok {
		return 0
	}

	x0, y0, x1, y1 := pixelBounds(dst, fb.Width, fb.Height)

	const eps = 1e-9
	written := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			st, ok := inv.Apply(mathutil.Vec2{float64(x) + 0.5, float64(y) + 0.5})
			if !ok {
				continue
			}
			s, t := st[0], st[1]
			if s < -eps || s > 1+eps || t < -eps || t > 1+eps {
				continue
			}
			depth := (1-s)*(1-t)*w.Corners[0][2] + s*(1-t)*w.Corners[1][2] +
				s*t*w.Corners[2][2] + (1-s)*t*w.Corners[3][2]

			col := DefaultColor
			if tex != nil {
				col = SampleTexture(tex, s*w.Tiling[0]+w.Offset[0], t*w.Tiling[1]+w.Offset[1])
				if col.A < 8 {
					continue
				}
			}
			if fb.Set(x, y, depth, col) {
				written++
			}
		}
	}
	return written
}

// DrawOutline overlays the quad edges and a square marker on every corner.
func DrawOutline(fb *FrameBuffer, w Warp, opts tracker.Options, marker float64, col color.NRGBA) {
	vp := Viewport{Width: fb.Width, Height: fb.Height, Opts: opts}
	var px [4]mathutil.Vec2
	for i, c := range w.Corners {
		px[i] = vp.ToPixel(mathutil.Vec2{c[0], c[1]})
	}
	for i := range px {
		DrawLine(fb, px[i], px[(i+1)%4], 1.5, col)
	}
	for _, p := range px {
		FillRect(fb, p, marker, col)
	}
}

// pixelBounds returns the inclusive pixel range covered by the corners,
// clamped in float64 to a w x h buffer before conversion. An empty range has
// x1 < x0.
func pixelBounds(pts [4]mathutil.Vec2, w, h int) (x0, y0, x1, y1 int) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
			return 0, 0, -1, -1
		}
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	if maxX < 0 || maxY < 0 || minX > float64(w-1) || minY > float64(h-1) {
		return 0, 0, -1, -1
	}
	x0 = int(clampFloat(math.Floor(minX), 0, float64(w-1)))
	y0 = int(clampFloat(math.Floor(minY), 0, float64(h-1)))
	x1 = int(clampFloat(math.Ceil(maxX), 0, float64(w-1)))
	y1 = int(clampFloat(math.Ceil(maxY), 0, float64(h-1)))
	return x0, y0, x1, y1
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

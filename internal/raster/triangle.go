package raster

import (
	"image/color"
	"math"

	"projmap/internal/mathutil"
)

// FillTriangle draws a flat-colored triangle given in pixel coordinates,
// alpha-blended over the buffer. Depth is neither tested nor written, so
// overlays always land on top.
func FillTriangle(fb *FrameBuffer, a, b, c mathutil.Vec2, col color.NRGBA) {
	x0, y0 := a[0], a[1]
	x1, y1 := b[0], b[1]
	x2, y2 := c[0], c[1]

	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	alpha := float64(col.A) / 255
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			i := (rowOff + sx) * 4
			fb.Color[i] = blend(fb.Color[i], col.R, alpha)
			fb.Color[i+1] = blend(fb.Color[i+1], col.G, alpha)
			fb.Color[i+2] = blend(fb.Color[i+2], col.B, alpha)
			fb.Color[i+3] = clamp255(float64(fb.Color[i+3]) + (255-float64(fb.Color[i+3]))*alpha)
		}
	}
}

// FillRect draws an axis-aligned square of half-size r centered on p.
func FillRect(fb *FrameBuffer, p mathutil.Vec2, r float64, col color.NRGBA) {
	a := mathutil.Vec2{p[0] - r, p[1] - r}
	b := mathutil.Vec2{p[0] + r, p[1] - r}
	c := mathutil.Vec2{p[0] + r, p[1] + r}
	d := mathutil.Vec2{p[0] - r, p[1] + r}
	FillTriangle(fb, a, b, c, col)
	FillTriangle(fb, a, c, d, col)
}

// DrawLine draws a segment of the given width as two triangles.
func DrawLine(fb *FrameBuffer, a, b mathutil.Vec2, width float64, col color.NRGBA) {
	d := b.Sub(a)
	l := d.Len()
	if l < 1e-9 {
		return
	}
	n := mathutil.Vec2{-d[1] / l, d[0] / l}.Scale(width / 2)
	p0, p1 := a.Add(n), b.Add(n)
	p2, p3 := b.Sub(n), a.Sub(n)
	FillTriangle(fb, p0, p1, p2, col)
	FillTriangle(fb, p0, p2, p3, col)
}

func blend(dst, src uint8, alpha float64) uint8 {
	return clamp255(float64(dst)*(1-alpha) + float64(src)*alpha)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

package texture

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Checker draws a calibration checkerboard of cols x rows cells with a red
// marker in the top-left cell, so orientation is visible once projected.
func Checker(w, h, cols, rows int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	light := color.NRGBA{235, 235, 235, 255}
	dark := color.NRGBA{30, 30, 30, 255}
	mark := color.NRGBA{220, 40, 40, 255}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	for y := 0; y < h; y++ {
		cy := y * rows / h
		for x := 0; x < w; x++ {
			cx := x * cols / w
			c := light
			if (cx+cy)%2 == 1 {
				c = dark
			}
			if cx == 0 && cy == 0 {
				c = mark
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Fit scales img down so neither side exceeds max, keeping its aspect ratio.
// Images that already fit are returned as is.
func Fit(img *image.NRGBA, limit int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if limit <= 0 || (w <= limit && h <= limit) {
		return img
	}
	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

package postprocess

import "image"

// Coverage reports the fraction of pixels with non-zero alpha and the
// bounding rectangle of those pixels (empty when there are none).
func Coverage(img *image.NRGBA) (float64, image.Rectangle) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0, image.Rectangle{}
	}

	minX, minY := w, h
	maxX, maxY := -1, -1
	n := 0
	for y := 0; y < h; y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			if img.Pix[row+x*4+3] == 0 {
				continue
			}
			n++
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if n == 0 {
		return 0, image.Rectangle{}
	}
	return float64(n) / float64(w*h), image.Rect(minX, minY, maxX+1, maxY+1)
}

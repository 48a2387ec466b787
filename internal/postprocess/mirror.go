package postprocess

import "image"

// FlipHorizontal mirrors an image left-to-right, as needed for rear
// projection.
func FlipHorizontal(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcOff := y * img.Stride
		dstOff := y * out.Stride
		for x := 0; x < w; x++ {
			si := srcOff + (w-1-x)*4
			copy(out.Pix[dstOff+x*4:dstOff+x*4+4], img.Pix[si:si+4])
		}
	}
	return out
}

// FlipVertical mirrors an image top-to-bottom, for ceiling-mounted
// projectors.
func FlipVertical(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcOff := (h - 1 - y) * img.Stride
		copy(out.Pix[y*out.Stride:y*out.Stride+w*4], img.Pix[srcOff:srcOff+w*4])
	}
	return out
}

package pattern

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"

	simage "github.com/jmylchreest/swatch/internal/image"
)

// Preprocess resizes img to size x size with bilinear interpolation and
// returns its channels scaled to [0, 1] in the requested layout.
func Preprocess(img image.Image, size int, layout Layout) ([]float32, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", simage.ErrInvalidImage)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels (%dx%d)", simage.ErrInvalidImage, bounds.Dx(), bounds.Dy())
	}
	if size < 1 {
		return nil, fmt.Errorf("invalid input size %d", size)
	}

	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear) // #nosec G115 -- size is positive
	rb := resized.Bounds()

	plane := size * size
	data := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(rb.Min.X+x, rb.Min.Y+y).RGBA()
			rf := float32(r>>8) / 255.0
			gf := float32(g>>8) / 255.0
			bf := float32(b>>8) / 255.0

			idx := y*size + x
			if layout == LayoutNCHW {
				data[idx] = rf
				data[plane+idx] = gf
				data[2*plane+idx] = bf
			} else {
				data[idx*3] = rf
				data[idx*3+1] = gf
				data[idx*3+2] = bf
			}
		}
	}
	return data, nil
}

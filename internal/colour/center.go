package colour

import (
	"fmt"
	"image"

	simage "github.com/jmylchreest/swatch/internal/image"
)

// DefaultCropSize is the side of the square centre crop in pixels.
const DefaultCropSize = 100

// CenterAverage returns the per-channel mean of the size x size square at
// the centre of img, truncated toward zero. The crop starts at
// (W/2 - size/2, H/2 - size/2) with integer division and always spans
// exactly size pixels in each direction.
func CenterAverage(img image.Image, size int) (RGB, error) {
	if img == nil {
		return RGB{}, fmt.Errorf("%w: image is nil", simage.ErrInvalidImage)
	}
	if size < 1 {
		return RGB{}, fmt.Errorf("%w: %d", ErrInvalidCropSize, size)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return RGB{}, fmt.Errorf("%w: image has no pixels (%dx%d)", simage.ErrEmptyInput, width, height)
	}
	if size > width || size > height {
		return RGB{}, fmt.Errorf("%w: crop %dx%d does not fit image %dx%d",
			ErrCropOutOfBounds, size, size, width, height)
	}

	x0 := width/2 - size/2
	y0 := height/2 - size/2

	var sumR, sumG, sumB uint64
	if rgb, ok := img.(*simage.RGB); ok {
		for y := y0; y < y0+size; y++ {
			for x := x0; x < x0+size; x++ {
				r, g, b := rgb.RGBAt(x, y)
				sumR += uint64(r)
				sumG += uint64(g)
				sumB += uint64(b)
			}
		}
	} else {
		for y := y0; y < y0+size; y++ {
			for x := x0; x < x0+size; x++ {
				c := ToRGB(img.At(bounds.Min.X+x, bounds.Min.Y+y))
				sumR += uint64(c.R)
				sumG += uint64(c.G)
				sumB += uint64(c.B)
			}
		}
	}

	n := uint64(size) * uint64(size) // #nosec G115 -- size is positive
	return RGB{R: uint8(sumR / n), G: uint8(sumG / n), B: uint8(sumB / n)}, nil
}

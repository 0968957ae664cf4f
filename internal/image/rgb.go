// Package image provides utilities for loading and decoding images into
// immutable 8-bit RGB pixel grids.
package image

import (
	"fmt"
	"image"
	"image/color"
)

// RGB is an immutable 3-channel pixel grid with 8 bits per channel.
// Pixels are stored row-major as R, G, B triples. The zero value is an
// empty image.
//
// RGB implements image.Image so it can be handed to any library that
// accepts the standard interface.
type RGB struct {
	pix    []uint8
	width  int
	height int
}

// NewUniform returns a width x height image filled with a single colour.
func NewUniform(width, height int, c color.Color) *RGB {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	pix := make([]uint8, width*height*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i] = nc.R
		pix[i+1] = nc.G
		pix[i+2] = nc.B
	}
	return &RGB{pix: pix, width: width, height: height}
}

// FromImage converts any decoded image into an RGB grid. Alpha is dropped
// and colour values are taken un-premultiplied. The grid origin is always
// (0, 0), regardless of the source bounds.
func FromImage(src image.Image) (*RGB, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: image is nil", ErrInvalidImage)
	}
	if m, ok := src.(*RGB); ok {
		if m.Empty() {
			return nil, ErrEmptyInput
		}
		return m, nil
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels (%dx%d)", ErrEmptyInput, width, height)
	}

	pix := make([]uint8, width*height*3)
	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < height; y++ {
			row := s.Pix[s.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			out := pix[y*width*3:]
			for x := 0; x < width; x++ {
				out[x*3] = row[x*4]
				out[x*3+1] = row[x*4+1]
				out[x*3+2] = row[x*4+2]
			}
		}
	default:
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				pix[i] = c.R
				pix[i+1] = c.G
				pix[i+2] = c.B
				i += 3
			}
		}
	}

	return &RGB{pix: pix, width: width, height: height}, nil
}

// Width returns the image width in pixels.
func (m *RGB) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *RGB) Height() int { return m.height }

// Len returns the number of pixels.
func (m *RGB) Len() int { return m.width * m.height }

// Empty reports whether the image has no pixels.
func (m *RGB) Empty() bool { return m == nil || m.width <= 0 || m.height <= 0 }

// Pixel returns the channels of the i-th pixel in row-major order.
func (m *RGB) Pixel(i int) (r, g, b uint8) {
	o := i * 3
	return m.pix[o], m.pix[o+1], m.pix[o+2]
}

// RGBAt returns the channels of the pixel at (x, y). Out of range
// coordinates return black.
func (m *RGB) RGBAt(x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0, 0, 0
	}
	return m.Pixel(y*m.width + x)
}

// ColorModel implements image.Image.
func (m *RGB) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (m *RGB) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// At implements image.Image.
func (m *RGB) At(x, y int) color.Color {
	r, g, b := m.RGBAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

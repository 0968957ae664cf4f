// Package colour provides colour naming, dominant colour clustering and
// region averaging for garment photos.
package colour

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Array returns the channels as integers in R, G, B order.
func (rgb RGB) Array() [3]int {
	return [3]int{int(rgb.R), int(rgb.G), int(rgb.B)}
}

// RGBA implements color.Color. The colour is always opaque.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(rgb.R)
	r |= r << 8
	g = uint32(rgb.G)
	g |= g << 8
	b = uint32(rgb.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	if rgb, ok := c.(RGB); ok {
		return rgb
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: nc.R, G: nc.G, B: nc.B}
}

// ParseHex parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q: expected 3 or 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseHex is like ParseHex but panics on malformed input. It is meant
// for package-level tables.
func MustParseHex(s string) RGB {
	rgb, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return rgb
}

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c color.Color) float64 {
	rgb := ToRGB(c)
	return 0.2126*gammaCorrect(float64(rgb.R)/255.0) +
		0.7152*gammaCorrect(float64(rgb.G)/255.0) +
		0.0722*gammaCorrect(float64(rgb.B)/255.0)
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// clampChannel rounds v to the nearest integer and clamps it to [0, 255].
func clampChannel(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}

package mosaic

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultTolerance is a good starting margin for SameColor.
const DefaultTolerance = 0.03

// RGBA is a straight (non-premultiplied) color with channels in [0,1].
// R, G and B live in the embedded colorful.Color.
type RGBA struct {
	colorful.Color
	A float64
}

// FromRGBA8 builds a color from 8-bit channels.
func FromRGBA8(r, g, b, a uint8) RGBA {
	return RGBA{
		Color: colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255},
		A:     float64(a) / 255,
	}
}

// FromColor converts any color.Color. RGB survives fully transparent pixels
// when the source is already NRGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return FromRGBA8(n.R, n.G, n.B, n.A)
}

// NRGBA returns the 8-bit form used by files and wire formats.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// RGBA implements color.Color, honoring the alpha channel.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// SameColor reports whether a and b differ by less than tolerance on every RGB channel.
// Alpha is ignored. The relation is not transitive.
func SameColor(a, b RGBA, tolerance float64) bool {
	return math.Abs(a.R-b.R) < tolerance &&
		math.Abs(a.G-b.G) < tolerance &&
		math.Abs(a.B-b.B) < tolerance
}

// ValidTolerance reports whether t lies in (0,1].
func ValidTolerance(t float64) bool {
	return t > 0 && t <= 1
}

func to8(v float64) uint8 {
	return uint8(max(0, min(255, math.Round(v*255))))
}

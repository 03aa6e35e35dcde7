package mosaic

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"
)

// DoorHeight is the height of one in-game door in scene units.
const DoorHeight = 3

// Pixel is one sampled grid cell.
type Pixel struct {
	X, Y  int
	Color RGBA
}

// Grid is a sampled raster. Pixels are row-major and row 0 is the bottom row of the
// source picture, so y grows upward like the scene.
// A Grid is never modified after sampling.
type Grid struct {
	W, H int
	Pix  []Pixel // len = W*H
}

// At returns the pixel at grid coordinates (x, y).
func (g *Grid) At(x, y int) Pixel {
	return g.Pix[y*g.W+x]
}

// Row returns row y. The slice aliases the grid.
func (g *Grid) Row(y int) []Pixel {
	return g.Pix[y*g.W : (y+1)*g.W]
}

// Column returns a copy of column x, bottom to top.
func (g *Grid) Column(x int) []Pixel {
	col := make([]Pixel, g.H)
	for y := range g.H {
		col[y] = g.Pix[y*g.W+x]
	}
	return col
}

// Image exposes the grid as an image.Image with the usual top-down rows.
func (g *Grid) Image() image.Image {
	return gridImage{g}
}

type gridImage struct{ g *Grid }

func (gi gridImage) ColorModel() color.Model { return color.NRGBAModel }
func (gi gridImage) Bounds() image.Rectangle { return image.Rect(0, 0, gi.g.W, gi.g.H) }
func (gi gridImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= gi.g.W || y >= gi.g.H {
		return color.NRGBA{}
	}
	return gi.g.At(x, gi.g.H-1-y).Color
}

// Quantize returns a copy of g with every color replaced by the nearest palette entry
// (CIE Lab distance). Alpha is kept.
func (g *Grid) Quantize(palette []colorful.Color) *Grid {
	if len(palette) == 0 {
		return g
	}
	out := &Grid{W: g.W, H: g.H, Pix: make([]Pixel, len(g.Pix))}
	cache := make(map[colorful.Color]colorful.Color)
	for i, p := range g.Pix {
		snapped, ok := cache[p.Color.Color]
		if !ok {
			best := 0
			bestD := p.Color.DistanceLab(palette[0])
			for k := 1; k < len(palette); k++ {
				if d := p.Color.DistanceLab(palette[k]); d < bestD {
					best, bestD = k, d
				}
			}
			snapped = palette[best].Clamped()
			cache[p.Color.Color] = snapped
		}
		p.Color.Color = snapped
		out.Pix[i] = p
	}
	return out
}

// SizeFromHeight returns the grid size for a mosaic targetHeight doors tall built from
// cells of cellSize. The width keeps the source aspect through an integer
// downscale factor.
func SizeFromHeight(src image.Point, targetHeight, cellSize float32) (image.Point, error) {
	if src.X <= 0 || src.Y <= 0 {
		return image.Point{}, ErrEmptyImage
	}
	if targetHeight <= 0 || cellSize <= 0 {
		return image.Point{}, invalidf("target height %g, cell size %g", targetHeight, cellSize)
	}
	h := roundToInt(targetHeight * DoorHeight / cellSize)
	if h <= 0 {
		return image.Point{}, invalidf("target height %g rounds to zero cells", targetHeight)
	}
	var w int
	if factor := roundToInt(float32(src.Y) / float32(h)); factor > 0 {
		w = roundToInt(float32(src.X) / float32(factor))
	} else {
		// Upscaling: the factor rounds to zero, fall back to the plain ratio.
		w = roundToInt(float32(src.X) * float32(h) / float32(src.Y))
	}
	if w <= 0 {
		return image.Point{}, invalidf("width rounds to zero cells for %v", src)
	}
	return image.Pt(w, h), nil
}

// SizeFromQuality scales both source dimensions by quality.
func SizeFromQuality(src image.Point, quality float32) (image.Point, error) {
	if src.X <= 0 || src.Y <= 0 {
		return image.Point{}, ErrEmptyImage
	}
	if quality <= 0 || quality > 1 {
		return image.Point{}, invalidf("quality %g outside (0,1]", quality)
	}
	size := image.Pt(roundToInt(float32(src.X)*quality), roundToInt(float32(src.Y)*quality))
	if size.X <= 0 || size.Y <= 0 {
		return image.Point{}, invalidf("quality %g gives an empty %dx%d grid", quality, size.X, size.Y)
	}
	return size, nil
}

// Sample resamples img to w×h cells with nearest-neighbor lookups. Cell (x, y) reads
// source pixel (round(x/w·srcW), round(y/h·srcH)) counted from the bottom-left corner.
func Sample(img image.Image, w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, invalidf("target size %dx%d", w, h)
	}
	if img == nil {
		return nil, ErrEmptyImage
	}
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, ErrEmptyImage
	}
	g := &Grid{W: w, H: h, Pix: make([]Pixel, w*h)}
	for y := range h {
		sy := clampInt(roundToInt(float32(y)/float32(h)*float32(srcH)), 0, srcH-1)
		iy := b.Max.Y - 1 - sy
		for x := range w {
			sx := clampInt(roundToInt(float32(x)/float32(w)*float32(srcW)), 0, srcW-1)
			g.Pix[y*w+x] = Pixel{X: x, Y: y, Color: FromColor(img.At(b.Min.X+sx, iy))}
		}
	}
	return g, nil
}

// roundToInt rounds half to even.
func roundToInt(v float32) int {
	f := math32.Floor(v)
	switch d := v - f; {
	case d > 0.5:
		f++
	case d == 0.5 && math32.Mod(f, 2) != 0:
		f++
	}
	return int(f)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

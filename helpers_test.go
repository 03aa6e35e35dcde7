package mosaic

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

var letterColors = map[byte]color.NRGBA{
	'A': {R: 200, G: 40, B: 40, A: 255},
	'B': {R: 40, G: 200, B: 40, A: 255},
	'C': {R: 40, G: 40, B: 200, A: 255},
	'K': {A: 255},
	'W': {R: 255, G: 255, B: 255, A: 255},
}

// letterImage draws one pixel per letter. rows are listed top to bottom.
func letterImage(rows ...string) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x := range len(row) {
			img.SetNRGBA(x, y, letterColors[row[x]])
		}
	}
	return img
}

// letterGrid samples letterImage at its own size, so grid row 0 is the last string.
func letterGrid(t *testing.T, rows ...string) *Grid {
	t.Helper()
	img := letterImage(rows...)
	g, err := Sample(img, img.Bounds().Dx(), img.Bounds().Dy())
	require.NoError(t, err)
	return g
}

// randomGrid fills a w×h grid from a small set of well separated colors.
func randomGrid(seed uint64, w, h, colors int) *Grid {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := &Grid{W: w, H: h, Pix: make([]Pixel, w*h)}
	for y := range h {
		for x := range w {
			v := uint8(rng.IntN(colors) * 255 / max(1, colors-1))
			g.Pix[y*w+x] = Pixel{X: x, Y: y, Color: FromRGBA8(v, 255-v, v/2, 255)}
		}
	}
	return g
}

// requireTiling checks that blocks cover every cell of g exactly once.
func requireTiling(t *testing.T, g *Grid, blocks []Block) {
	t.Helper()
	seen := make([]int, g.W*g.H)
	for _, b := range blocks {
		require.GreaterOrEqual(t, b.W, 1, "%v", b)
		require.GreaterOrEqual(t, b.H, 1, "%v", b)
		for y := b.Y; y < b.Y+b.H; y++ {
			for x := b.X; x < b.X+b.W; x++ {
				require.True(t, x >= 0 && x < g.W && y >= 0 && y < g.H, "%v leaves the grid", b)
				seen[y*g.W+x]++
			}
		}
	}
	for i, n := range seen {
		require.Equal(t, 1, n, "cell (%d,%d)", i%g.W, i/g.W)
	}
}

package utils

import (
	"errors"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/mosaic"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

func (m *PaletteMethod) Set(s string) error {
	switch s {
	case "dominantcolor", "dominant":
		*m = PaletteMethodDominantColor
	case "kmeans":
		*m = PaletteMethodKMeans
	default:
		return errors.New("palette method must be dominantcolor or kmeans")
	}
	return nil
}

func (m PaletteMethod) Type() string { return "method" }

// maxKMeansSamples bounds the kmeans dataset; larger images are subsampled.
const maxKMeansSamples = 12000

type weightedColor struct {
	col colorful.Color
	w   float64
}

// ExtractPalette picks k representative colors of img. Sampling the mosaic grid
// (mosaic.Grid.Image) instead of the full picture is much cheaper and sees exactly
// the colors that get merged.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	if k <= 0 || img == nil || img.Bounds().Empty() {
		return nil
	}
	if method == PaletteMethodKMeans {
		if p := pickDiverse(kmeansCandidates(img, k), k); len(p) != 0 {
			return p
		}
		mosaic.Logger().Warn("kmeans returned an empty palette, falling back to dominantcolor")
	}
	return pickDiverse(dominantCandidates(img, k), k)
}

func dominantCandidates(img image.Image, k int) []weightedColor {
	found := dominantcolor.FindWeight(img, max(24, k*8))
	if len(found) == 0 {
		found = []dominantcolor.Color{{RGBA: color.RGBA{R: 128, G: 128, B: 128, A: 255}, Weight: 1}}
	}
	out := make([]weightedColor, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		out = append(out, weightedColor{col: col, w: c.Weight})
	}
	return out
}

func kmeansCandidates(img image.Image, k int) []weightedColor {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	step := 1
	if n > maxKMeansSamples {
		step = int(math.Sqrt(float64(n)/maxKMeansSamples)) + 1
	}
	var data clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			data = append(data, clusters.Coordinates{
				float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255,
			})
		}
	}
	workK := min(max(k*4, k+2), len(data))
	if workK == 0 {
		return nil
	}
	cc, err := kmeans.New().Partition(data, workK)
	if err != nil {
		return nil
	}
	out := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}
		out = append(out, weightedColor{col: col, w: float64(len(c.Observations))})
	}
	// Most populated clusters first.
	slices.SortStableFunc(out, func(a, b weightedColor) int {
		switch {
		case a.w > b.w:
			return -1
		case a.w < b.w:
			return 1
		}
		return 0
	})
	return out
}

// pickDiverse seeds with the heaviest color, then repeatedly adds the candidate that
// is farthest in Lab from everything picked so far, scaled by its weight.
func pickDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	maxW := 0.0
	for i := range cands {
		cands[i].col = cands[i].col.Clamped()
		cands[i].w = max(cands[i].w, 1e-6)
		maxW = max(maxW, cands[i].w)
	}
	picked := make([]bool, len(cands))
	seed := 0
	for i, c := range cands {
		if c.w > cands[seed].w {
			seed = i
		}
	}
	picked[seed] = true
	out := []colorful.Color{cands[seed].col}
	for len(out) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if picked[i] {
				continue
			}
			nearest := math.MaxFloat64
			for _, o := range out {
				nearest = min(nearest, c.col.DistanceLab(o))
			}
			score := nearest * (0.55 + 0.45*math.Sqrt(c.w/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		picked[best] = true
		out = append(out, cands[best].col)
	}
	return out
}

// SortPaletteByBrightness orders colors from darkest to brightest by relative luminance.
func SortPaletteByBrightness(palette []colorful.Color) {
	luma := func(c colorful.Color) float64 {
		r, g, b := c.LinearRgb()
		return 0.2126*r + 0.7152*g + 0.0722*b
	}
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		la, lb := luma(a), luma(b)
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
}

package mosaic

import (
	"errors"
	"image"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// SizingMode selects how the sampled grid size is derived from the source image.
type SizingMode int

const (
	// SizingHeight fits TargetHeight doors with cells of CellSize.
	SizingHeight SizingMode = iota
	// SizingQuality keeps a Quality fraction of the source resolution and derives the
	// cell size from TargetHeight.
	SizingQuality
	// SizingNative samples one cell per source pixel at CellSize.
	SizingNative
)

func (m SizingMode) String() string {
	switch m {
	case SizingQuality:
		return "quality"
	case SizingNative:
		return "native"
	default:
		return "height"
	}
}

func (m SizingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *SizingMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "height":
		*m = SizingHeight
	case "quality":
		*m = SizingQuality
	case "native":
		*m = SizingNative
	default:
		return invalidf("unknown sizing mode %q", text)
	}
	return nil
}

// HighQuality is the quality above which primitive counts usually get out of hand.
const HighQuality = 0.1

type Options struct {
	// How the grid size is chosen.
	Sizing SizingMode `toml:"sizing"`
	// Edge length of one cell in scene units (SizingHeight, SizingNative).
	// Ideal start: 0.05-0.1. Lower => more cells => more primitives.
	CellSize float32 `toml:"cell_size"`
	// Mosaic height in door units. One door is DoorHeight scene units.
	TargetHeight float32 `toml:"target_height"`
	// Fraction of the source resolution kept by SizingQuality, in (0,1].
	// Ideal start: 0.01-0.05. 0.1 and above easily produce tens of thousands of cells.
	Quality float32 `toml:"quality"`
	// Gap between neighboring cells in scene units. Merged blocks fill their inner gaps.
	Spacing float32 `toml:"spacing"`
	// Per-channel color margin for merging, in (0,1].
	// Ideal start: 0.03. Higher => fewer primitives, flatter colors.
	Tolerance float64 `toml:"color_same_margin"`
	// Run the two coalescing passes after span merging.
	Coalesce bool `toml:"enable_coalescing"`
	// Which coalescing pass runs first.
	Order Order `toml:"coalescing_order"`
	// Direction of the initial span merge.
	SpanAxis Axis `toml:"span_axis"`
	// Cube thickness in scene units. 0 => CellSize.
	Depth float32 `toml:"depth"`
	// Emit spot lights on a black canvas instead of cubes.
	Lights bool `toml:"lights"`
}

func DefaultOptions() Options {
	return Options{
		Sizing:       SizingHeight,
		CellSize:     0.1,
		TargetHeight: 1,
		Quality:      0.01,
		Spacing:      0,
		Tolerance:    DefaultTolerance,
		Coalesce:     true,
		Order:        OrderHorizontalFirst,
		SpanAxis:     Horizontal,
	}
}

// OptionsFromSize picks a quality that puts roughly 64 cells on the long side.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	long := max(size.X, size.Y)
	if long <= 0 {
		return opt
	}
	opt.Sizing = SizingQuality
	opt.Quality = max(0.001, min(1, 64/float32(long)))
	return opt
}

// Validate checks every field the selected sizing mode reads.
func (o Options) Validate() error {
	if !ValidTolerance(o.Tolerance) {
		return invalidf("color tolerance %g outside (0,1]", o.Tolerance)
	}
	if o.TargetHeight <= 0 {
		return invalidf("target height %g", o.TargetHeight)
	}
	if o.Spacing < 0 || o.Depth < 0 {
		return invalidf("spacing %g, depth %g", o.Spacing, o.Depth)
	}
	if o.Order != OrderHorizontalFirst && o.Order != OrderVerticalFirst {
		return invalidf("coalescing order %d", int(o.Order))
	}
	if o.SpanAxis != Horizontal && o.SpanAxis != Vertical {
		return invalidf("span axis %d", int(o.SpanAxis))
	}
	switch o.Sizing {
	case SizingHeight, SizingNative:
		if o.CellSize <= 0 {
			return invalidf("cell size %g", o.CellSize)
		}
	case SizingQuality:
		if o.Quality <= 0 || o.Quality > 1 {
			return invalidf("quality %g outside (0,1]", o.Quality)
		}
	default:
		return invalidf("sizing mode %d", int(o.Sizing))
	}
	return nil
}

// gridSize returns the sampled grid size and the resulting cell size.
func (o Options) gridSize(src image.Point) (image.Point, float32, error) {
	switch o.Sizing {
	case SizingQuality:
		if o.Quality >= HighQuality {
			Logger().Warn("quality this high yields a very large primitive count", "quality", o.Quality)
		}
		size, err := SizeFromQuality(src, o.Quality)
		if err != nil {
			return image.Point{}, 0, err
		}
		return size, o.TargetHeight * DoorHeight / float32(size.Y), nil
	case SizingNative:
		if src.X <= 0 || src.Y <= 0 {
			return image.Point{}, 0, ErrEmptyImage
		}
		return src, o.CellSize, nil
	default:
		size, err := SizeFromHeight(src, o.TargetHeight, o.CellSize)
		return size, o.CellSize, err
	}
}

// MosaicBuilder compiles one image into blocks. Results of the last Build live in
// its exported fields.
type MosaicBuilder struct {
	InputImage image.Image
	Palette    []colorful.Color
	Options    Options
	Grid       *Grid
	CellSize   float32
	Spans      []Block
	Blocks     []Block
}

// NewMosaicBuilder prepares a builder. A non-empty palette snaps every sampled color
// to its nearest entry before merging.
func NewMosaicBuilder(input image.Image, palette []colorful.Color) *MosaicBuilder {
	return &MosaicBuilder{
		InputImage: input,
		Palette:    palette,
	}
}

// Build samples, merges and coalesces. Invalid options are rejected before the previous
// result is cleared. An empty image leaves the builder empty and returns nil.
func (mb *MosaicBuilder) Build(opt Options) error {
	if err := opt.Validate(); err != nil {
		return err
	}
	mb.Options = opt
	mb.Grid, mb.Spans, mb.Blocks, mb.CellSize = nil, nil, nil, 0
	if mb.InputImage == nil {
		return nil
	}
	size, cell, err := opt.gridSize(mb.InputImage.Bounds().Size())
	if errors.Is(err, ErrEmptyImage) {
		Logger().Debug("empty input image")
		return nil
	}
	if err != nil {
		return err
	}
	grid, err := Sample(mb.InputImage, size.X, size.Y)
	if err != nil {
		return err
	}
	mb.Grid = grid.Quantize(mb.Palette)
	mb.CellSize = cell
	if opt.Lights {
		Logger().Debug("sampled grid for lights", "w", size.X, "h", size.Y)
		return nil
	}
	mb.Spans = MergeAll(mb.Grid, opt.SpanAxis, opt.Tolerance)
	mb.Blocks = mb.Spans
	if opt.Coalesce {
		mb.Blocks = CoalesceOrder(mb.Spans, opt.Order, opt.Tolerance)
	}
	Logger().Debug("built mosaic",
		"w", size.X, "h", size.Y, "cell", cell,
		"spans", len(mb.Spans), "blocks", len(mb.Blocks))
	return nil
}

func (mb *MosaicBuilder) pitch() float64 {
	return float64(mb.CellSize + mb.Options.Spacing)
}

// origin is the center of cell (0, 0), at -(W, H)·pitch/2. The mosaic is therefore
// shifted half a pitch toward -x and -y from the scene origin.
func (mb *MosaicBuilder) origin() r3.Vec {
	p := mb.pitch()
	return r3.Vec{X: -float64(mb.Grid.W) * p / 2, Y: -float64(mb.Grid.H) * p / 2}
}

// Primitives returns the scene objects of the last Build: one cube per block, or the
// light rig when Options.Lights is set.
func (mb *MosaicBuilder) Primitives() []Primitive {
	if mb.Grid == nil {
		return nil
	}
	if mb.Options.Lights {
		return mb.Lights()
	}
	cell := float64(mb.CellSize)
	depth := float64(mb.Options.Depth)
	if depth == 0 {
		depth = cell
	}
	origin := mb.origin()
	out := make([]Primitive, len(mb.Blocks))
	for i, b := range mb.Blocks {
		out[i] = Primitive{
			Kind:     KindCube,
			Position: b.Center(origin, mb.pitch()),
			Scale:    b.Size(cell, float64(mb.Options.Spacing), depth),
			Color:    b.Color,
		}
	}
	return out
}

const (
	// lightPitch is the distance between neighboring lights on the canvas.
	lightPitch = 0.0345 / 2
	lightDepth = 0.09
)

var defaultLight = LightParams{Range: 0.1, SpotAngle: 27.0 / 2, Intensity: 100}

// Lights returns a black unit canvas followed by one spot light per pixel that is not
// opaque black, laid out from the canvas' lower-left corner.
func (mb *MosaicBuilder) Lights() []Primitive {
	if mb.Grid == nil {
		return nil
	}
	black := FromRGBA8(0, 0, 0, 255)
	out := []Primitive{{
		Kind:  KindCube,
		Scale: r3.Vec{X: 1, Y: 1, Z: canvasThickness},
		Color: black,
	}}
	start := r3.Vec{X: -0.5, Y: -0.5, Z: -lightDepth}
	for _, p := range mb.Grid.Pix {
		if p.Color.NRGBA() == black.NRGBA() {
			continue
		}
		light := defaultLight
		out = append(out, Primitive{
			Kind:     KindLight,
			Position: r3.Add(start, r3.Vec{X: float64(p.X) * lightPitch, Y: float64(p.Y) * lightPitch}),
			Scale:    r3.Vec{X: 1, Y: 1, Z: 1},
			Color:    p.Color,
			Light:    &light,
		})
	}
	return out
}

// Reconstruct paints the blocks back into a raster the size of the grid, one pixel
// per cell, top row first. Cells no block covers stay transparent.
func (mb *MosaicBuilder) Reconstruct() *image.NRGBA {
	if mb.Grid == nil {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	w, h := mb.Grid.W, mb.Grid.H
	recon := image.NewNRGBA(image.Rect(0, 0, w, h))
	for _, b := range mb.Blocks {
		c := b.Color.NRGBA()
		for y := b.Y; y < b.Y+b.H; y++ {
			for x := b.X; x < b.X+b.W; x++ {
				recon.SetNRGBA(x, h-1-y, c)
			}
		}
	}
	return recon
}

// Stats summarizes the last Build.
type Stats struct {
	Cells      int
	Spans      int
	Blocks     int
	Reduction  float64 // 1 - Blocks/Cells
	MeanArea   float64 // cells per block
	StdDevArea float64
}

func (mb *MosaicBuilder) Stats() Stats {
	if mb.Grid == nil {
		return Stats{}
	}
	s := Stats{
		Cells:  len(mb.Grid.Pix),
		Spans:  len(mb.Spans),
		Blocks: len(mb.Blocks),
	}
	if len(mb.Blocks) == 0 {
		return s
	}
	areas := make([]float64, len(mb.Blocks))
	for i, b := range mb.Blocks {
		areas[i] = float64(b.Area())
	}
	if len(areas) == 1 {
		s.MeanArea = areas[0]
	} else {
		s.MeanArea, s.StdDevArea = stat.MeanStdDev(areas, nil)
	}
	s.Reduction = 1 - float64(s.Blocks)/float64(s.Cells)
	return s
}

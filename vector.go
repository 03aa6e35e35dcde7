package mosaic

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ShapeType is a Geometrize shape code.
type ShapeType int

const (
	Rectangle        ShapeType = 1
	RotatedRectangle ShapeType = 2
	Ellipse          ShapeType = 8
	RotatedEllipse   ShapeType = 16
	Circle           ShapeType = 32
)

func (t ShapeType) String() string {
	switch t {
	case Rectangle:
		return "rectangle"
	case RotatedRectangle:
		return "rotated rectangle"
	case Ellipse:
		return "ellipse"
	case RotatedEllipse:
		return "rotated ellipse"
	case Circle:
		return "circle"
	default:
		return fmt.Sprintf("shape(%d)", int(t))
	}
}

// dataLen is the number of data values each shape type carries.
var dataLen = map[ShapeType]int{
	Rectangle:        4, // x1, y1, x2, y2
	RotatedRectangle: 5, // x1, y1, x2, y2, angle
	Ellipse:          4, // cx, cy, rx, ry
	RotatedEllipse:   5, // cx, cy, rx, ry, angle
	Circle:           3, // cx, cy, r
}

// Shape is one entry of a Geometrize JSON export. Coordinates are pixels.
type Shape struct {
	Type  ShapeType `json:"type"`
	Data  []int     `json:"data"`
	Color [4]int    `json:"color"`
	Score float64   `json:"score"`
}

// ShapeFile is the top level of a Geometrize JSON export.
type ShapeFile struct {
	Shapes []Shape `json:"shapes"`
}

// rgba clamps each channel to 0..255.
func (s Shape) rgba() RGBA {
	var c [4]uint8
	for i, v := range s.Color {
		c[i] = uint8(min(255, max(0, v)))
	}
	return FromRGBA8(c[0], c[1], c[2], c[3])
}

const (
	// DepthStep separates consecutive shapes along z.
	DepthStep = 0.0001
	// depthBase keeps the first shape clear of the canvas.
	depthBase = 10

	canvasThickness = 0.001
	shapeThickness  = 0.00001
)

// PlacementContext carries the canvas-derived state every shape placement needs.
type PlacementContext struct {
	// Transform maps homogeneous pixel coordinates (x, y, 1) to scene coordinates.
	Transform *mat.Dense
	// Multiplier converts pixel lengths to scene lengths.
	Multiplier float64
	// Canvas is the primitive built from the canvas shape.
	Canvas Primitive
}

// NewPlacementContext derives the context from the canvas shape. The canvas is
// size·DoorHeight units tall.
func NewPlacementContext(canvas Shape, size float64) (PlacementContext, error) {
	if size <= 0 {
		return PlacementContext{}, invalidf("canvas size %g", size)
	}
	if len(canvas.Data) < 4 {
		return PlacementContext{}, &MalformedShapeError{Type: canvas.Type, Len: len(canvas.Data), Want: 4}
	}
	if canvas.Data[3] == 0 {
		return PlacementContext{}, invalidf("canvas height is zero")
	}
	m := size * DoorHeight / float64(canvas.Data[3])
	scale := r3.Vec{X: float64(canvas.Data[2]) * m, Y: size * DoorHeight, Z: canvasThickness}
	pos := r3.Vec{X: float64(canvas.Data[0]) * m, Y: float64(canvas.Data[1]) * m}
	// Pixel (Data[0], Data[1]) lands on the canvas corner at pos + scale/2, so shapes
	// stay on the canvas wherever it sits.
	hx := pos.X + scale.X/2 + m*float64(canvas.Data[0])
	hy := pos.Y + scale.Y/2 + m*float64(canvas.Data[1])
	return PlacementContext{
		Transform: mat.NewDense(3, 3, []float64{
			-m, 0, hx,
			0, -m, hy,
			0, 0, 1,
		}),
		Multiplier: m,
		Canvas: Primitive{
			Kind:     KindCube,
			Position: pos,
			Scale:    scale,
			Color:    canvas.rgba(),
		},
	}, nil
}

// Apply maps pixel coordinates to scene coordinates.
func (pc PlacementContext) Apply(x, y float64) (float64, float64) {
	var v mat.VecDense
	v.MulVec(pc.Transform, mat.NewVecDense(3, []float64{x, y, 1}))
	return v.AtVec(0), v.AtVec(1)
}

// Depth is the z offset of the shape at position index of the input list.
func Depth(index int) float64 {
	return DepthStep * float64(index+depthBase)
}

// Place builds the primitive for s, the index-th entry of the shape list.
func (pc PlacementContext) Place(s Shape, index int) (Primitive, error) {
	want, ok := dataLen[s.Type]
	if !ok {
		return Primitive{}, &UnsupportedShapeError{Code: int(s.Type)}
	}
	if len(s.Data) < want {
		return Primitive{}, &MalformedShapeError{Type: s.Type, Len: len(s.Data), Want: want}
	}
	d := s.Data
	m := pc.Multiplier
	p := Primitive{Color: s.rgba()}
	switch s.Type {
	case Rectangle, RotatedRectangle:
		// Integer halving matches the exporter's corner arithmetic.
		midX := (d[2]-d[0])/2 + d[0]
		midY := (d[3]-d[1])/2 + d[1]
		x, y := pc.Apply(float64(midX), float64(midY))
		p.Kind = KindCube
		p.Position = r3.Vec{X: x, Y: y, Z: Depth(index)}
		p.Scale = r3.Vec{X: float64(d[2]-d[0]) * m, Y: float64(d[3]-d[1]) * m, Z: shapeThickness}
		if s.Type == RotatedRectangle {
			p.Rotation = r3.Vec{Z: float64(d[4])}
		}
	case Circle, Ellipse, RotatedEllipse:
		x, y := pc.Apply(float64(d[0]), float64(d[1]))
		rx, ry := d[2], d[2]
		if s.Type != Circle {
			ry = d[3]
		}
		p.Kind = KindSphere
		p.Position = r3.Vec{X: x, Y: y, Z: Depth(index)}
		p.Scale = r3.Vec{X: float64(2*rx) * m, Y: shapeThickness, Z: float64(2*ry) * m}
		// Spheres are flattened on Y; tipping them 90° about X lays them on the canvas.
		p.Rotation = r3.Vec{X: 90}
		if s.Type == RotatedEllipse {
			p.Rotation = r3.Vec{X: 90 - float64(d[4]), Y: 90, Z: 90}
		}
	}
	return p, nil
}

// SkippedShape records a shape Place could not turn into a primitive.
type SkippedShape struct {
	Index int
	Err   error
}

// Placement is the result of placing a shape list.
type Placement struct {
	Context    PlacementContext
	Primitives []Primitive
	Skipped    []SkippedShape
}

// All returns the canvas followed by the placed shapes. It is empty for an empty list.
func (p *Placement) All() []Primitive {
	if p.Context.Transform == nil {
		return nil
	}
	return append([]Primitive{p.Context.Canvas}, p.Primitives...)
}

// Place lays out a Geometrize shape list on a canvas size doors tall. shapes[0] is the
// canvas. Unsupported or malformed shapes are skipped, logged and listed in
// Placement.Skipped; only an invalid canvas aborts.
func Place(shapes []Shape, size float64) (*Placement, error) {
	if len(shapes) == 0 {
		return &Placement{}, nil
	}
	ctx, err := NewPlacementContext(shapes[0], size)
	if err != nil {
		return nil, err
	}
	p := &Placement{Context: ctx, Primitives: make([]Primitive, 0, len(shapes)-1)}
	for i := 1; i < len(shapes); i++ {
		prim, err := ctx.Place(shapes[i], i)
		if err != nil {
			Logger().Warn("skipping shape", "index", i, "type", int(shapes[i].Type), "err", err)
			p.Skipped = append(p.Skipped, SkippedShape{Index: i, Err: err})
			continue
		}
		p.Primitives = append(p.Primitives, prim)
	}
	Logger().Debug("placed shapes", "placed", len(p.Primitives), "skipped", len(p.Skipped), "multiplier", ctx.Multiplier)
	return p, nil
}

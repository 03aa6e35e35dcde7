package mosaic

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis is a merge direction on the grid.
type Axis int

const (
	// Horizontal runs along rows (x).
	Horizontal Axis = iota
	// Vertical runs along columns (y).
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Vertical:
		return "vertical"
	default:
		return "horizontal"
	}
}

func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Axis) UnmarshalText(text []byte) error {
	switch string(text) {
	case "horizontal", "row", "rows":
		*a = Horizontal
	case "vertical", "column", "columns":
		*a = Vertical
	default:
		return invalidf("unknown axis %q", text)
	}
	return nil
}

// Order is the sequence of the two coalescing passes.
type Order int

const (
	// OrderHorizontalFirst coalesces across columns, then across rows.
	OrderHorizontalFirst Order = iota
	// OrderVerticalFirst coalesces across rows, then across columns.
	OrderVerticalFirst
)

func (o Order) String() string {
	switch o {
	case OrderVerticalFirst:
		return "vertical-first"
	default:
		return "horizontal-first"
	}
}

// Axes returns the pass axes in execution order.
func (o Order) Axes() [2]Axis {
	if o == OrderVerticalFirst {
		return [2]Axis{Vertical, Horizontal}
	}
	return [2]Axis{Horizontal, Vertical}
}

func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Order) UnmarshalText(text []byte) error {
	switch string(text) {
	case "horizontal-first", "row-then-column":
		*o = OrderHorizontalFirst
	case "vertical-first", "column-then-row":
		*o = OrderVerticalFirst
	default:
		return invalidf("unknown coalescing order %q", text)
	}
	return nil
}

// Block is a rectangle of grid cells sharing one color.
// X and Y address its lower-left cell; W and H are extents in cells.
type Block struct {
	X, Y  int
	W, H  int
	Color RGBA
}

func unitBlock(p Pixel) Block {
	return Block{X: p.X, Y: p.Y, W: 1, H: 1, Color: p.Color}
}

// Area is the number of cells covered.
func (b Block) Area() int {
	return b.W * b.H
}

// Contains reports whether cell (x, y) lies inside b.
func (b Block) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.H
}

func (b Block) String() string {
	c := b.Color.NRGBA()
	return fmt.Sprintf("Block(%d,%d %dx%d #%02x%02x%02x)", b.X, b.Y, b.W, b.H, c.R, c.G, c.B)
}

// along returns the start and extent of b in the direction of axis.
func (b Block) along(axis Axis) (start, length int) {
	if axis == Vertical {
		return b.Y, b.H
	}
	return b.X, b.W
}

// cross returns the start and extent of b perpendicular to axis.
func (b Block) cross(axis Axis) (start, length int) {
	if axis == Vertical {
		return b.X, b.W
	}
	return b.Y, b.H
}

// grow extends b by n cells along axis, keeping its lower-left corner.
func (b *Block) grow(axis Axis, n int) {
	if axis == Vertical {
		b.H += n
		return
	}
	b.W += n
}

// Center is the scene position of b. Cell (x, y) is centered at origin + (x, y)·pitch,
// so a block stretched by n cells moves its center by n·pitch/2 and keeps its
// lower-left edge in place.
func (b Block) Center(origin r3.Vec, pitch float64) r3.Vec {
	return r3.Vec{
		X: origin.X + (float64(b.X)+float64(b.W-1)/2)*pitch,
		Y: origin.Y + (float64(b.Y)+float64(b.H-1)/2)*pitch,
		Z: origin.Z,
	}
}

// Size is the scene extent of b. Gaps between merged cells are filled.
func (b Block) Size(cell, spacing, depth float64) r3.Vec {
	return r3.Vec{
		X: float64(b.W)*cell + float64(b.W-1)*spacing,
		Y: float64(b.H)*cell + float64(b.H-1)*spacing,
		Z: depth,
	}
}

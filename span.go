package mosaic

// MergeRow fuses a run of pixels into blocks one cell tall. A run keeps growing while
// each pixel matches the one before it, so a slow gradient can end up in a single
// block even when its ends differ by more than tolerance. Every block takes the color
// of the pixel that started its run.
func MergeRow(row []Pixel, tolerance float64) []Block {
	return mergeLine(row, Horizontal, tolerance)
}

// MergeColumn is MergeRow along a column, bottom to top.
func MergeColumn(col []Pixel, tolerance float64) []Block {
	return mergeLine(col, Vertical, tolerance)
}

func mergeLine(line []Pixel, axis Axis, tolerance float64) []Block {
	if len(line) == 0 {
		return nil
	}
	out := make([]Block, 0, 8)
	cur := unitBlock(line[0])
	prev := line[0].Color
	for _, p := range line[1:] {
		if SameColor(prev, p.Color, tolerance) {
			cur.grow(axis, 1)
		} else {
			out = append(out, cur)
			cur = unitBlock(p)
		}
		prev = p.Color
	}
	return append(out, cur)
}

// MergeAll runs the span merge over every row (Horizontal) or every column (Vertical)
// of g. The result tiles the grid without gaps or overlaps.
func MergeAll(g *Grid, axis Axis, tolerance float64) []Block {
	if g == nil || g.W == 0 || g.H == 0 {
		return nil
	}
	var out []Block
	if axis == Vertical {
		for x := range g.W {
			out = append(out, MergeColumn(g.Column(x), tolerance)...)
		}
		return out
	}
	for y := range g.H {
		out = append(out, MergeRow(g.Row(y), tolerance)...)
	}
	return out
}

// Cells returns one 1×1 block per pixel in row-major order.
func Cells(g *Grid) []Block {
	if g == nil {
		return nil
	}
	out := make([]Block, len(g.Pix))
	for i, p := range g.Pix {
		out[i] = unitBlock(p)
	}
	return out
}

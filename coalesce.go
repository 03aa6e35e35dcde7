package mosaic

import (
	"maps"
	"slices"
)

// cornerKey addresses a block by its lower-left cell in pass coordinates.
type cornerKey struct {
	along, cross int
}

// lineIndex groups a block snapshot into lines perpendicular to the pass axis:
// rows for a Vertical pass, columns for a Horizontal pass.
type lineIndex struct {
	lines  [][]int // block indices, lines in increasing order, blocks by cross position
	corner map[cornerKey]int
}

func buildLineIndex(blocks []Block, axis Axis) lineIndex {
	byLine := make(map[int][]int)
	corner := make(map[cornerKey]int, len(blocks))
	for i, b := range blocks {
		a, _ := b.along(axis)
		c, _ := b.cross(axis)
		byLine[a] = append(byLine[a], i)
		corner[cornerKey{a, c}] = i
	}
	idx := lineIndex{corner: corner}
	for _, a := range slices.Sorted(maps.Keys(byLine)) {
		line := byLine[a]
		slices.SortStableFunc(line, func(i, j int) int {
			ci, _ := blocks[i].cross(axis)
			cj, _ := blocks[j].cross(axis)
			return ci - cj
		})
		idx.lines = append(idx.lines, line)
	}
	return idx
}

// Coalesce runs one merge pass over blocks and returns the survivors in input order.
//
// A Vertical pass walks rows bottom to top. Each live block absorbs the unbroken chain
// of blocks stacked directly on top of it that share its exact x position and exact
// width and whose color is within tolerance of its own. The first row without such a
// block ends the chain for good. Horizontal is the same pass across columns, growing
// blocks to the right.
//
// Decisions are made against a snapshot; deletions and extensions are applied
// together at the end.
func Coalesce(blocks []Block, axis Axis, tolerance float64) []Block {
	snap := slices.Clone(blocks)
	if len(snap) < 2 {
		return snap
	}
	idx := buildLineIndex(snap, axis)
	consumed := make([]bool, len(snap))
	growth := make([]int, len(snap))
	merged := 0
	for _, line := range idx.lines {
		for _, i := range line {
			if consumed[i] {
				continue
			}
			cur := snap[i]
			start, length := cur.along(axis)
			crossStart, crossLen := cur.cross(axis)
			next := start + length
			for {
				j, ok := idx.corner[cornerKey{next, crossStart}]
				if !ok || consumed[j] {
					break
				}
				cand := snap[j]
				if _, l := cand.cross(axis); l != crossLen || !SameColor(cand.Color, cur.Color, tolerance) {
					break
				}
				consumed[j] = true
				_, n := cand.along(axis)
				growth[i] += n
				next += n
				merged++
			}
		}
	}
	if merged == 0 {
		return snap
	}
	out := make([]Block, 0, len(snap)-merged)
	for i, b := range snap {
		if consumed[i] {
			continue
		}
		b.grow(axis, growth[i])
		out = append(out, b)
	}
	return out
}

// CoalesceOrder chains the two passes in the given order. The orders are not
// interchangeable: the second pass sees the geometry left by the first.
func CoalesceOrder(blocks []Block, order Order, tolerance float64) []Block {
	for _, axis := range order.Axes() {
		blocks = Coalesce(blocks, axis, tolerance)
	}
	return blocks
}

// CompareOrders reports the block count each coalescing order leaves.
func CompareOrders(blocks []Block, tolerance float64) (horizontalFirst, verticalFirst int) {
	horizontalFirst = len(CoalesceOrder(blocks, OrderHorizontalFirst, tolerance))
	verticalFirst = len(CoalesceOrder(blocks, OrderVerticalFirst, tolerance))
	return horizontalFirst, verticalFirst
}

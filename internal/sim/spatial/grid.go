// Package spatial provides a uniform grid for broad-phase neighbor queries.
//
// The grid stores entity indices (not pointers) in preallocated, reusable
// cell slices to minimize GC pressure, and is rebuilt from scratch every
// tick. Cell iteration order is row-major and therefore deterministic,
// which matters for lockstep replay.
package spatial

import "math"

// Grid buckets entities into fixed-size cells for near-O(n) pair queries.
// Cell size should equal the largest interaction radius so that a 3x3
// neighborhood covers every candidate pair.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32
}

// NewGrid creates a grid covering worldWidth x worldHeight.
func NewGrid(worldWidth, worldHeight, cellSize float64, maxEntities int) *Grid {
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear resets all cells without deallocating underlying memory.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0] // Keep capacity, reset length
	}
}

// Insert adds an entity index at position (x, y). Positions outside the
// world bounds are clamped to the border cells.
func (g *Grid) Insert(id uint32, x, y float64) {
	col, row := g.clampCell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], id)
}

func (g *Grid) clampCell(x, y float64) (col, row int) {
	col = int(x * g.invCellSize)
	row = int(y * g.invCellSize)
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// Neighborhood returns the entity indices in the 3x3 block of cells around
// (x, y), in deterministic row-major order.
//
// The returned slice is an internal scratch buffer reused on every call;
// copy it if you need the results to persist.
func (g *Grid) Neighborhood(x, y float64) []uint32 {
	g.scratch = g.scratch[:0]
	col, row := g.clampCell(x, y)
	for r := row - 1; r <= row+1; r++ {
		if r < 0 || r >= g.rows {
			continue
		}
		for c := col - 1; c <= col+1; c++ {
			if c < 0 || c >= g.cols {
				continue
			}
			g.scratch = append(g.scratch, g.cells[r*g.cols+c]...)
		}
	}
	return g.scratch
}

// QueryRadius returns entity indices in every cell overlapping the circle
// at (cx, cy). Candidates may lie outside the radius; the caller performs
// the narrow-phase distance check. Shares the scratch buffer with
// Neighborhood.
func (g *Grid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol := int((cx - radius) * g.invCellSize)
	maxCol := int((cx + radius) * g.invCellSize)
	minRow := int((cy - radius) * g.invCellSize)
	maxRow := int((cy + radius) * g.invCellSize)

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}
	return g.scratch
}

// CellSize returns the configured cell size.
func (g *Grid) CellSize() float64 { return g.cellSize }

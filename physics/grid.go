package physics

// AABB is an axis-aligned bounding box.
type AABB struct {
	MinX, MinY, MaxX, MaxY float64
}

// Overlaps reports whether two boxes intersect (touching counts).
func (a AABB) Overlaps(b AABB) bool {
	return a.MinX <= b.MaxX && b.MinX <= a.MaxX && a.MinY <= b.MaxY && b.MinY <= a.MaxY
}

// Grow returns the box expanded by m on every side.
func (a AABB) Grow(m float64) AABB {
	return AABB{a.MinX - m, a.MinY - m, a.MaxX + m, a.MaxY + m}
}

// SpatialGrid buckets proxy indices into uniform cells over a bounded region.
// Positions outside the region clamp to the border cells.
type SpatialGrid struct {
	cellSize   float64
	originX    float64
	originY    float64
	cols, rows int
	cells      [][]int32

	// stamp dedupes proxies spanning several cells within one query
	stamp   []uint32
	queryID uint32
}

// NewSpatialGrid creates a grid covering [minX, minX+width] x [minY, minY+height].
func NewSpatialGrid(minX, minY, width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		originX:  minX,
		originY:  minY,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all proxies from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds proxy idx to every cell its box touches.
func (g *SpatialGrid) Insert(idx int32, box AABB) {
	c0, r0 := g.cellCoord(box.MinX, box.MinY)
	c1, r1 := g.cellCoord(box.MaxX, box.MaxY)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			i := r*g.cols + c
			g.cells[i] = append(g.cells[i], idx)
		}
	}
	if int(idx) >= len(g.stamp) {
		g.stamp = append(g.stamp, make([]uint32, int(idx)+1-len(g.stamp))...)
	}
}

// QueryInto appends every proxy whose cells intersect box to dst, once each,
// in cell order. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryInto(dst []int32, box AABB) []int32 {
	g.queryID++
	if g.queryID == 0 {
		for i := range g.stamp {
			g.stamp[i] = 0
		}
		g.queryID = 1
	}

	c0, r0 := g.cellCoord(box.MinX, box.MinY)
	c1, r1 := g.cellCoord(box.MaxX, box.MaxY)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			for _, idx := range g.cells[r*g.cols+c] {
				if g.stamp[idx] == g.queryID {
					continue
				}
				g.stamp[idx] = g.queryID
				dst = append(dst, idx)
			}
		}
	}
	return dst
}

// cellCoord returns the clamped cell column and row for a world position.
func (g *SpatialGrid) cellCoord(x, y float64) (col, row int) {
	col = int((x - g.originX) / g.cellSize)
	row = int((y - g.originY) / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

package tmp

// Geometry is the fixed pixel size of an isometric cell. Cell pixels are
// stored packed: only the diamond inscribed in the W×H box, row by row.
type Geometry struct {
	W, H int
}

var (
	RA2 = Geometry{60, 30}
	TS  = Geometry{48, 24}
)

// Pixels is the length of a packed diamond.
func (g Geometry) Pixels() int { return g.W * g.H / 2 }

// mirror folds rows below the midline onto the rows above it.
func (g Geometry) mirror(y int) int {
	if y > g.H/2-1 {
		return g.H - 2 - y
	}
	return y
}

// PixelsInRow is the run length of row y of the diamond.
func (g Geometry) PixelsInRow(y int) int {
	if y < 0 || y > g.H-2 {
		return 0
	}
	return 4 * (g.mirror(y) + 1)
}

// FirstPixelInRow is the column where row y's run starts, -1 for rows with
// no pixels.
func (g Geometry) FirstPixelInRow(y int) int {
	if y < 0 || y > g.H-2 {
		return -1
	}
	return g.H - 2*(g.mirror(y)+1)
}

// IndexOfPixel maps (x,y) to its position in the packed diamond, or -1
// outside the diamond.
func (g Geometry) IndexOfPixel(x, y int) int {
	first := g.FirstPixelInRow(y)
	if first < 0 || x < first || x >= g.W-first {
		return -1
	}
	idx := 0
	for r := 0; r < y; r++ {
		idx += g.PixelsInRow(r)
	}
	return idx + x - first
}

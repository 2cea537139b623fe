package tmp

import (
	"image"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/zbuf"
)

// Sheet is a decoded tile set: a sparse grid of tiles.
type Sheet struct {
	Name       string
	Cols, Rows int
	Geom       Geometry
	Cells      []*Tile // Cols*Rows, nil where the position table holds 0
}

// Decode parses a tile set. Geometry must be RA2 (60×30) or TS (48×24).
func Decode(name string, data []byte) (*Sheet, error) {
	c := binio.NewCursor(name, data)
	var hdr struct {
		Cols, Rows, W, H uint32
	}
	if err := c.Read(&hdr); err != nil {
		return nil, err
	}
	g := Geometry{int(hdr.W), int(hdr.H)}
	if g != RA2 && g != TS {
		return nil, binio.Formatf(name, 8, "cell size %dx%d is not %dx%d or %dx%d", g.W, g.H, RA2.W, RA2.H, TS.W, TS.H)
	}
	area := int64(hdr.Cols) * int64(hdr.Rows)
	if err := binio.Range(name, fileHeaderSize, area*4, int64(len(data))); err != nil {
		return nil, err
	}
	s := &Sheet{Name: name, Cols: int(hdr.Cols), Rows: int(hdr.Rows), Geom: g, Cells: make([]*Tile, area)}
	for i := range s.Cells {
		pos, err := c.U32()
		if err != nil {
			return nil, err
		}
		if pos == 0 {
			continue
		}
		t, err := decodeTile(name, data, int(pos), g)
		if err != nil {
			return nil, err
		}
		t.Cell = image.Pt(i%s.Cols, i/s.Cols)
		s.Cells[i] = t
	}
	return s, nil
}

// Tiles returns the populated cells in grid order.
func (s *Sheet) Tiles() []*Tile {
	var out []*Tile
	for _, t := range s.Cells {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// MaxHeight is the highest elevation of any tile.
func (s *Sheet) MaxHeight() int {
	m := 0
	for _, t := range s.Tiles() {
		if int(t.Height) > m {
			m = int(t.Height)
		}
	}
	return m
}

// lift is how far a tile is pushed down so every tile shares the top
// tile's elevation baseline.
func (s *Sheet) lift(t *Tile, maxH int) int {
	return (maxH - int(t.Height)) * s.Geom.H / 2
}

// Bounds is the sheet's pixel rectangle in tile coordinates: the union of
// every base diamond box and extra image, shifted by elevation. Its height
// is floored by the lowest-placed tile's origin plus one cell width (less
// its extra image's y when it has one).
func (s *Sheet) Bounds() image.Rectangle {
	tiles := s.Tiles()
	if len(tiles) == 0 {
		return image.Rectangle{}
	}
	maxH := s.MaxHeight()
	var r image.Rectangle
	first := true
	bigY := int32(-1 << 31)
	var floor int
	for _, t := range tiles {
		lift := s.lift(t, maxH)
		tr := image.Rect(int(t.X), int(t.Y)+lift, int(t.X)+s.Geom.W, int(t.Y)+lift+s.Geom.H)
		if t.HasExtra() {
			ey := int(t.ExtraY) + lift
			tr = tr.Union(image.Rect(int(t.ExtraX), ey, int(t.ExtraX)+int(t.ExtraW), ey+int(t.ExtraH)))
		}
		if first {
			r, first = tr, false
		} else {
			r = r.Union(tr)
		}
		if t.Y > bigY {
			bigY = t.Y
			floor = int(t.Y) + s.Geom.W + lift
			if t.HasExtra() {
				floor -= int(t.ExtraY)
			}
		}
	}
	if r.Dy() < floor {
		r.Max.Y = r.Min.Y + floor
	}
	return r
}

// Draw paints tile t onto dst with the tile origin at (ox,oy). Pixels with
// index 0 are skipped; z comes from the tile's z data, 0 without it.
func (t *Tile) Draw(dst *zbuf.Canvas, pal *palette.Palette, ox, oy int, damaged bool) error {
	if pal == nil {
		return binio.NotFound("tile", "palette")
	}
	pix := t.Pixels
	if damaged && t.Damaged != nil {
		pix = t.Damaged
	}
	g := t.Geom
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			i := g.IndexOfPixel(x, y)
			if i < 0 || pix[i] == 0 {
				continue
			}
			var z int32
			if t.ZData != nil {
				z = int32(t.ZData[i])
			}
			dst.Put(pal.At(pix[i]), ox+x, oy+y, z)
		}
	}
	if t.Extra == nil {
		return nil
	}
	er := t.ExtraRect()
	w := er.Dx()
	if len(t.Extra) < w*er.Dy() || (t.ExtraZ != nil && len(t.ExtraZ) < w*er.Dy()) {
		return binio.Inconsistentf("tile", 0, "extra image %v with %d bytes", er.Size(), len(t.Extra))
	}
	for y := 0; y < er.Dy(); y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if t.Extra[i] == 0 {
				continue
			}
			var z int32
			if t.ExtraZ != nil {
				z = int32(t.ExtraZ[i])
			}
			dst.Put(pal.At(t.Extra[i]), ox+er.Min.X+x, oy+er.Min.Y+y, z)
		}
	}
	return nil
}

// MaxImagePixels caps the canvas a tile or sheet image may allocate.
const MaxImagePixels = 1 << 24

func newCanvas(name string, b image.Rectangle) (*zbuf.Canvas, error) {
	if int64(b.Dx())*int64(b.Dy()) > MaxImagePixels {
		return nil, binio.Formatf(name, 0, "image bounds %v too large", b)
	}
	return zbuf.New(b.Dx(), b.Dy()), nil
}

// Image renders a single tile on a canvas sized to its Bounds.
func (t *Tile) Image(pal *palette.Palette) (*zbuf.Canvas, error) {
	b := t.Bounds()
	dst, err := newCanvas("tile", b)
	if err != nil {
		return nil, err
	}
	if err := t.Draw(dst, pal, -b.Min.X, -b.Min.Y, false); err != nil {
		return nil, err
	}
	return dst, nil
}

// Image renders every tile at its sheet position.
func (s *Sheet) Image(pal *palette.Palette) (*zbuf.Canvas, error) {
	b := s.Bounds()
	dst, err := newCanvas(s.Name, b)
	if err != nil {
		return nil, err
	}
	maxH := s.MaxHeight()
	for _, t := range s.Tiles() {
		ox := int(t.X) - b.Min.X
		oy := int(t.Y) + s.lift(t, maxH) - b.Min.Y
		if err := t.Draw(dst, pal, ox, oy, false); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// Package vxl decodes Westwood voxel bodies (.vxl) and their motion
// libraries (.hva) and meshes them into indexed triangle lists.
//
// A body is an 802-byte header, one 28-byte header per section, the span
// body, then one 92-byte tailer per section. Each section is a sparse grid
// stored as columns of z-spans: per column a skip count, a voxel count,
// that many (color, normal) pairs and the voxel count repeated.
package vxl

import (
	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/palette"
	log "github.com/sirupsen/logrus"
)

const (
	Magic             = "Voxel Animation"
	headerSize        = 802
	sectionHeaderSize = 28
	tailerSize        = 92
	emptySpan         = -1
)

// Header is the fixed body header after the magic.
type Header struct {
	PaletteCount uint32
	SectionCount uint32
	TailerCount  uint32
	BodySize     uint32
	RemapStart   uint8
	RemapEnd     uint8
}

// Tailer is the per-section record stored after the span body.
type Tailer struct {
	SpanStart   uint32 // column start table, relative to the body
	SpanEnd     uint32 // column end table
	SpanData    uint32 // span bytes
	Det         float32
	Transform   [12]float32 // row-major 3x4
	Min, Max    [3]float32
	XSize       uint8
	YSize       uint8
	ZSize       uint8
	NormalsMode uint8
}

// Voxel is one occupied cell.
type Voxel struct {
	X, Y, Z uint8
	Color   uint8
	Normal  uint8
}

// Section is one rigid part of a body.
type Section struct {
	Name   string
	Index  uint32
	Tailer Tailer
	Voxels []Voxel
	occ    []bool
}

// Size returns the grid dimensions.
func (s *Section) Size() (x, y, z int) {
	return int(s.Tailer.XSize), int(s.Tailer.YSize), int(s.Tailer.ZSize)
}

// Occupied reports whether the cell holds a voxel. Cells outside the grid
// are empty.
func (s *Section) Occupied(x, y, z int) bool {
	sx, sy, sz := s.Size()
	if x < 0 || y < 0 || z < 0 || x >= sx || y >= sy || z >= sz {
		return false
	}
	return s.occ[(z*sy+y)*sx+x]
}

// Body is a decoded voxel body.
type Body struct {
	Name     string
	Header   Header
	Palette  *palette.Palette // embedded 8-bit palette
	Sections []*Section
}

// Decode parses a .vxl file.
func Decode(name string, data []byte) (*Body, error) {
	c := binio.NewCursor(name, data)
	magic, err := c.CString(16)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, binio.Formatf(name, 0, "bad magic %q", magic)
	}
	b := &Body{Name: name}
	if err := c.Read(&b.Header); err != nil {
		return nil, err
	}
	pal, err := c.Bytes(palette.Size)
	if err != nil {
		return nil, err
	}
	b.Palette = palette.FromRGB8(name, pal)

	h := b.Header
	if h.SectionCount != h.TailerCount {
		return nil, binio.Inconsistentf(name, 20, "%d section headers but %d tailers", h.SectionCount, h.TailerCount)
	}
	n := int64(h.SectionCount)
	bodyStart := int64(headerSize) + n*sectionHeaderSize
	tailStart := bodyStart + int64(h.BodySize)
	if err := binio.Range(name, headerSize, tailStart+n*tailerSize-headerSize, int64(len(data))); err != nil {
		return nil, err
	}

	b.Sections = make([]*Section, n)
	for i := range b.Sections {
		s := &Section{}
		if s.Name, err = c.CString(16); err != nil {
			return nil, err
		}
		if s.Index, err = c.U32(); err != nil {
			return nil, err
		}
		c.Skip(8)
		b.Sections[i] = s
	}
	c.Seek(int(tailStart))
	for _, s := range b.Sections {
		if err := c.Read(&s.Tailer); err != nil {
			return nil, err
		}
	}
	body := data[bodyStart:tailStart]
	for _, s := range b.Sections {
		if err := s.decodeSpans(name, body); err != nil {
			return nil, err
		}
	}
	log.WithFields(log.Fields{"asset": name, "sections": n}).Debug("vxl: decoded")
	return b, nil
}

func (s *Section) decodeSpans(name string, body []byte) error {
	sx, sy, sz := s.Size()
	s.occ = make([]bool, sx*sy*sz)
	columns := sx * sy

	c := binio.NewCursor(name, body)
	if err := c.Seek(int(s.Tailer.SpanStart)); err != nil {
		return err
	}
	starts := make([]int32, columns)
	if err := c.Read(starts); err != nil {
		return err
	}
	for i, start := range starts {
		if start == emptySpan {
			continue
		}
		if err := c.Seek(int(s.Tailer.SpanData) + int(start)); err != nil {
			return err
		}
		x, y := i%sx, i/sx
		for z := 0; z < sz; {
			skip, err := c.U8()
			if err != nil {
				return err
			}
			count, err := c.U8()
			if err != nil {
				return err
			}
			if skip == 0 && count == 0 {
				return binio.Formatf(name, int64(c.Pos()-2), "section %q column %d,%d: empty span at z %d", s.Name, x, y, z)
			}
			z += int(skip)
			if z+int(count) > sz {
				return binio.Formatf(name, int64(c.Pos()), "section %q column %d,%d runs past z %d", s.Name, x, y, sz)
			}
			for k := 0; k < int(count); k++ {
				col, _ := c.U8()
				nrm, err := c.U8()
				if err != nil {
					return err
				}
				s.Voxels = append(s.Voxels, Voxel{X: uint8(x), Y: uint8(y), Z: uint8(z), Color: col, Normal: nrm})
				s.occ[(z*sy+y)*sx+x] = true
				z++
			}
			dup, err := c.U8()
			if err != nil {
				return err
			}
			if dup != count {
				return binio.Inconsistentf(name, int64(c.Pos()-1), "section %q column %d,%d: span count %d repeated as %d", s.Name, x, y, count, dup)
			}
		}
	}
	return nil
}

// Package shp decodes Tiberian Sun / Red Alert 2 SHP sprites.
//
// Layout: u16 zero, u16 width, u16 height, u16 frame count, then one 24-byte
// record per frame (u16 x, y, w, h; u32 compression; u32 reserved; u32 zero;
// u32 data offset). Frame pixels are either a flat w*h run or row RLE.
package shp

import (
	"encoding/binary"
	"sync"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	headerSize = 8
	recordSize = 24

	// CompressRLE selects row run-length encoding when set.
	CompressRLE = 0x02
)

// Frame is one entry of the frame table.
type Frame struct {
	X, Y          uint16
	Width, Height uint16
	Compression   uint32
	Reserved      uint32
	Zero          uint32
	Offset        uint32
}

// RLE reports whether the frame uses row run-length encoding.
func (f Frame) RLE() bool { return f.Compression&CompressRLE != 0 }

// frameCell memoises one frame's decoded indices. The sync.Once makes the
// first caller the only writer.
type frameCell struct {
	once sync.Once
	pix  []byte
	err  error
}

// Sprite is a decoded SHP header and frame table. Frame pixels are
// decompressed on first use and kept.
type Sprite struct {
	Name          string
	Width, Height int
	Frames        []Frame

	data  []byte
	cells []frameCell
}

// Decode parses the header and frame table. Frame data is not touched.
func Decode(name string, data []byte) (*Sprite, error) {
	c := binio.NewCursor(name, data)
	var hdr struct {
		Zero, Width, Height, Count uint16
	}
	if err := c.Read(&hdr); err != nil {
		return nil, err
	}
	if hdr.Zero != 0 {
		return nil, binio.Formatf(name, 0, "reserved field is %d, want 0", hdr.Zero)
	}
	if need := headerSize + recordSize*int(hdr.Count); len(data) < need {
		return nil, binio.Truncated(name, headerSize, int64(recordSize*int(hdr.Count)), int64(len(data)-headerSize))
	}
	s := &Sprite{
		Name:   name,
		Width:  int(hdr.Width),
		Height: int(hdr.Height),
		Frames: make([]Frame, hdr.Count),
		data:   data,
		cells:  make([]frameCell, hdr.Count),
	}
	for i := range s.Frames {
		if err := c.Read(&s.Frames[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sprite) Len() int { return len(s.Frames) }

// Pixels returns the palette indices of frame i, Width*Height bytes, row
// major. A corrupt frame fails on its own; other frames stay usable.
func (s *Sprite) Pixels(i int) ([]byte, error) {
	if i < 0 || i >= len(s.Frames) {
		return nil, binio.NotFound(s.Name, frameName(i))
	}
	cell := &s.cells[i]
	cell.once.Do(func() {
		cell.pix, cell.err = s.decodeFrame(i)
		if cell.err != nil {
			log.WithError(cell.err).WithFields(log.Fields{"asset": s.Name, "frame": i}).Debug("shp: frame failed")
		}
	})
	return cell.pix, cell.err
}

// Valid reports which frames decode without error.
func (s *Sprite) Valid() []bool {
	ok := make([]bool, len(s.Frames))
	for i := range s.Frames {
		_, err := s.Pixels(i)
		ok[i] = err == nil
	}
	return ok
}

func (s *Sprite) decodeFrame(i int) ([]byte, error) {
	f := s.Frames[i]
	w, h := int(f.Width), int(f.Height)
	if w == 0 || h == 0 {
		return []byte{}, nil
	}
	if f.Offset == 0 {
		// no data stored: the frame is blank
		return make([]byte, w*h), nil
	}
	off := int64(f.Offset)
	var (
		pix []byte
		err error
	)
	if f.RLE() {
		pix, err = DecodeRLE(s.data[min(int(off), len(s.data)):], w, h)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: frame %d at 0x%x", s.Name, i, off)
		}
	} else {
		if err := binio.Range(s.Name, off, int64(w*h), int64(len(s.data))); err != nil {
			return nil, err
		}
		pix = make([]byte, w*h)
		copy(pix, s.data[off:])
	}
	if len(pix) != w*h {
		return nil, binio.Inconsistentf(s.Name, off, "frame %d decoded to %d pixels, want %dx%d", i, len(pix), w, h)
	}
	return pix, nil
}

// DecodeRLE expands h rows of run-length encoded indices. Each row is a u16
// byte count (including itself) followed by literal nonzero indices and
// (0, n) pairs for n transparent pixels, n clamped to the row width.
func DecodeRLE(src []byte, w, h int) ([]byte, error) {
	out := make([]byte, 0, w*h)
	pos := 0
	for y := 0; y < h; y++ {
		if pos+2 > len(src) {
			return nil, binio.Truncated("rle", int64(pos), 2, int64(len(src)-pos))
		}
		count := int(binary.LittleEndian.Uint16(src[pos:])) - 2
		pos += 2
		x := 0
		for count > 0 {
			if pos >= len(src) {
				return nil, binio.Truncated("rle", int64(pos), 1, 0)
			}
			v := src[pos]
			pos++
			count--
			if v != 0 {
				out = append(out, v)
				x++
				continue
			}
			if pos >= len(src) {
				return nil, binio.Truncated("rle", int64(pos), 1, 0)
			}
			n := int(src[pos])
			pos++
			count--
			if n > w-x {
				n = w - x
			}
			if n < 0 {
				n = 0
			}
			for k := 0; k < n; k++ {
				out = append(out, 0)
			}
			x += n
		}
	}
	return out, nil
}

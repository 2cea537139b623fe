// Package tmp decodes Tiberian Sun / Red Alert 2 isometric tile sets
// (.tem, .sno, .urb, .ubn, .des, .lun and friends).
//
// Layout: u32 grid width, u32 grid height, u32 cell width, u32 cell height,
// then one u32 file offset per grid cell (0 = no tile). Each tile is a
// 52-byte header followed by its packed diamond and optional blocks:
//
//	i32 x, y, extra offset, z offset, extra-z offset
//	i32 extra x, extra y, extra width, extra height
//	u32 flags (1 extra, 2 z data, 4 damaged)
//	u8 height, terrain, ramp; rgb radar left, rgb radar right; 3 pad
package tmp

import (
	"image"
	"image/color"

	"github.com/1siamBot/ra2view/engine/binio"
)

const (
	fileHeaderSize = 16
	tileHeaderSize = 52

	FlagExtra   = 0x01
	FlagZData   = 0x02
	FlagDamaged = 0x04
)

// Header is the fixed tile record.
type Header struct {
	X, Y           int32
	ExtraOffset    int32
	ZOffset        int32
	ExtraZOffset   int32
	ExtraX, ExtraY int32
	ExtraW, ExtraH int32
	Flags          uint32
	Height         uint8
	Terrain        uint8
	Ramp           uint8
	RadarL, RadarR [3]uint8
	_              [3]uint8
}

func (h Header) HasExtra() bool   { return h.Flags&FlagExtra != 0 }
func (h Header) HasZ() bool       { return h.Flags&FlagZData != 0 }
func (h Header) HasDamaged() bool { return h.Flags&FlagDamaged != 0 }

// RadarLeft is the summary color of the tile's left half.
func (h Header) RadarLeft() color.RGBA {
	return color.RGBA{h.RadarL[0], h.RadarL[1], h.RadarL[2], 255}
}

// RadarRight is the summary color of the tile's right half.
func (h Header) RadarRight() color.RGBA {
	return color.RGBA{h.RadarR[0], h.RadarR[1], h.RadarR[2], 255}
}

// Tile is one populated grid cell.
type Tile struct {
	Header
	Cell    image.Point // grid position
	Geom    Geometry
	Pixels  []byte // packed diamond, Geom.Pixels() bytes
	Damaged []byte // packed diamond, nil unless HasDamaged
	ZData   []byte // packed diamond, nil unless HasZ
	Extra   []byte // ExtraW*ExtraH bytes, nil unless HasExtra
	ExtraZ  []byte // ExtraW*ExtraH bytes, nil unless HasExtra and HasZ
}

// ExtraRect is the extra image's rectangle relative to the tile origin.
func (t *Tile) ExtraRect() image.Rectangle {
	x, y := int(t.ExtraX)-int(t.X), int(t.ExtraY)-int(t.Y)
	return image.Rect(x, y, x+int(t.ExtraW), y+int(t.ExtraH))
}

// Bounds is the union of the diamond box and the extra image relative to
// the tile origin. It can start at negative coordinates.
func (t *Tile) Bounds() image.Rectangle {
	r := image.Rect(0, 0, t.Geom.W, t.Geom.H)
	if t.HasExtra() {
		r = r.Union(t.ExtraRect())
	}
	return r
}

func decodeTile(name string, data []byte, pos int, g Geometry) (*Tile, error) {
	size := int64(len(data))
	if err := binio.Range(name, int64(pos), int64(tileHeaderSize+g.Pixels()), size); err != nil {
		return nil, err
	}
	c := binio.NewCursor(name, data)
	c.Seek(pos)
	t := &Tile{Geom: g}
	if err := c.Read(&t.Header); err != nil {
		return nil, err
	}
	n := g.Pixels()
	t.Pixels, _ = c.Bytes(n)

	if t.HasDamaged() {
		b, err := c.Bytes(n)
		if err != nil {
			return nil, err
		}
		t.Damaged = b
	}
	block := func(off int32, length int) ([]byte, error) {
		start := int64(pos) + int64(off)
		if err := binio.Range(name, start, int64(length), size); err != nil {
			return nil, err
		}
		return data[start : start+int64(length)], nil
	}
	var err error
	if t.HasZ() {
		if t.ZData, err = block(t.ZOffset, n); err != nil {
			return nil, err
		}
	}
	if t.HasExtra() {
		if t.ExtraW < 0 || t.ExtraH < 0 {
			return nil, binio.Formatf(name, int64(pos), "extra image is %dx%d", t.ExtraW, t.ExtraH)
		}
		en64 := int64(t.ExtraW) * int64(t.ExtraH)
		if en64 > size {
			return nil, binio.Formatf(name, int64(pos), "extra image %dx%d larger than the file", t.ExtraW, t.ExtraH)
		}
		en := int(en64)
		if t.Extra, err = block(t.ExtraOffset, en); err != nil {
			return nil, err
		}
		if t.HasZ() && t.ExtraZOffset > 0 {
			if t.ExtraZ, err = block(t.ExtraZOffset, en); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

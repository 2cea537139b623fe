package maplib

import (
	"encoding/base64"
	"image/color"
	"strings"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/codec"
	"github.com/1siamBot/ra2view/engine/zbuf"
	log "github.com/sirupsen/logrus"
)

// CellSize is the byte length of one packed iso cell: u16 x, u16 y, i32
// tile, u8 subtile, u8 level, u8 ice growth.
const CellSize = 11

// Unpack decodes a base64 section body and inflates its LZO chunks.
func Unpack(name, packed string) ([]byte, codec.Stats, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(packed), ""))
	if err != nil {
		return nil, codec.Stats{}, binio.Formatf(name, 0, "base64: %v", err)
	}
	return codec.Decompress(name, raw)
}

// DecodeIsoMapPack decodes an [IsoMapPack5] body. A trailing partial cell
// is dropped with a warning.
func DecodeIsoMapPack(name, packed string) ([]Cell, error) {
	data, _, err := Unpack(name, packed)
	if err != nil {
		return nil, err
	}
	if rem := len(data) % CellSize; rem != 0 {
		log.WithFields(log.Fields{"asset": name, "bytes": rem}).Warn("maplib: trailing partial iso cell")
	}
	c := binio.NewCursor(name, data)
	cells := make([]Cell, len(data)/CellSize)
	for i := range cells {
		var rec struct {
			X, Y    uint16
			Tile    int32
			SubTile uint8
			Level   uint8
			Ice     uint8
		}
		if err := c.Read(&rec); err != nil {
			return nil, err
		}
		tile := rec.Tile
		if tile < 0 || tile == 0xffff {
			tile = 0
		}
		cells[i] = Cell{X: int(rec.X), Y: int(rec.Y), Tile: tile, SubTile: rec.SubTile, Level: rec.Level, Ice: rec.Ice}
	}
	return cells, nil
}

// Preview decodes the map's thumbnail: [Preview] Size gives its
// dimensions, [PreviewPack] holds RGB24 pixels.
func (tm *TileMap) Preview() (*zbuf.Canvas, error) {
	v, ok := tm.INI.Get("Preview", "Size")
	if !ok {
		return nil, binio.NotFound(tm.Name, "[Preview]")
	}
	r, err := parseRect(tm.Name, v)
	if err != nil {
		return nil, err
	}
	packed := PackedSection(tm.INI, "PreviewPack")
	if packed == "" {
		return nil, binio.NotFound(tm.Name, "[PreviewPack]")
	}
	data, _, err := Unpack(tm.Name, packed)
	if err != nil {
		return nil, err
	}
	w, h := r.Dx(), r.Dy()
	if len(data) != w*h*3 {
		return nil, binio.Inconsistentf(tm.Name, 0, "preview is %d bytes, want %dx%dx3", len(data), w, h)
	}
	cv := zbuf.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := (y*w + x) * 3
			cv.Put(color.RGBA{data[p], data[p+1], data[p+2], 255}, x, y, 0)
		}
	}
	return cv, nil
}

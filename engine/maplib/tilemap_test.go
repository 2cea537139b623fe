package maplib

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/codec/lzotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packSection base64-encodes an LZO stream into numbered lines, splitting
// it the way map editors do.
func packSection(name string, raw []byte) string {
	enc := base64.StdEncoding.EncodeToString(lzotest.Pack(raw))
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]\n", name)
	for i := 0; len(enc) > 0; i++ {
		n := 70
		if n > len(enc) {
			n = len(enc)
		}
		fmt.Fprintf(&sb, "%d=%s\n", i+1, enc[:n])
		enc = enc[n:]
	}
	return sb.String()
}

func isoCells(cells ...Cell) []byte {
	var buf bytes.Buffer
	for _, c := range cells {
		binary.Write(&buf, binary.LittleEndian, struct {
			X, Y    uint16
			Tile    int32
			Sub     uint8
			Level   uint8
			Ice     uint8
		}{uint16(c.X), uint16(c.Y), c.Tile, c.SubTile, c.Level, c.Ice})
	}
	return buf.Bytes()
}

func buildMap(extra string, cells ...Cell) []byte {
	var sb strings.Builder
	sb.WriteString("[Basic]\nName=Test Island\nAuthor=ra2view\n\n")
	sb.WriteString("[Map]\nSize=0,0,50,40\nLocalSize=2,4,46,32\nTheater=snow\n\n")
	sb.WriteString("[Waypoints]\n0=12034\n1=40010\n98=5005\n\n")
	if len(cells) > 0 {
		sb.WriteString(packSection("IsoMapPack5", isoCells(cells...)))
	}
	sb.WriteString(extra)
	return []byte(sb.String())
}

func TestDecodeMap(t *testing.T) {
	cells := make([]Cell, 0, 60)
	for i := 0; i < 60; i++ {
		cells = append(cells, Cell{X: 10 + i, Y: 20, Tile: int32(i % 7), SubTile: 1, Level: uint8(i % 3)})
	}
	cells = append(cells, Cell{X: 1, Y: 1, Tile: -1})

	tm, err := Decode("test.map", buildMap("", cells...))
	require.NoError(t, err)
	assert.Equal(t, "Test Island", tm.Name)
	assert.Equal(t, "ra2view", tm.Author)
	assert.Equal(t, "SNOW", tm.Theater)
	assert.Equal(t, image.Rect(0, 0, 50, 40), tm.Size)
	assert.Equal(t, image.Rect(2, 4, 48, 36), tm.LocalSize)
	assert.Equal(t, []StartPos{{0, 34, 12}, {1, 10, 40}}, tm.StartPositions)
	assert.Equal(t, 2, tm.MaxPlayers)

	require.Len(t, tm.Cells, 61)
	c := tm.At(15, 20)
	require.NotNil(t, c)
	assert.Equal(t, int32(5), c.Tile)
	assert.Equal(t, uint8(2), c.Level)
	assert.Equal(t, int32(0), tm.At(1, 1).Tile)
	assert.Nil(t, tm.At(0, 0))
	assert.True(t, tm.InBounds(10, 20))
}

func TestDecodeMapErrors(t *testing.T) {
	_, err := Decode("x.map", []byte("[Basic]\nName=x\n"))
	assert.True(t, errors.Is(err, binio.ErrNotFound))

	_, err = Decode("x.map", []byte("[Map]\nSize=1,2,3\n"))
	assert.True(t, errors.Is(err, binio.ErrFormat))

	_, err = Decode("x.map", []byte("[Map]\nSize=0,0,1,1\n[IsoMapPack5]\n1=!!!!\n"))
	assert.True(t, errors.Is(err, binio.ErrFormat))
}

func TestCellToScreen(t *testing.T) {
	tm := &TileMap{TileWidth: 60, TileHeight: 30}
	sx, sy := tm.CellToScreen(0, 0, 0)
	assert.Equal(t, 0, sx)
	assert.Equal(t, 0, sy)
	sx, sy = tm.CellToScreen(1, 0, 0)
	assert.Equal(t, 30, sx)
	assert.Equal(t, 15, sy)
	sx, sy = tm.CellToScreen(3, 1, 2)
	assert.Equal(t, 60, sx)
	assert.Equal(t, 30, sy)

	x, y := tm.ScreenToCell(60, 60)
	assert.InDelta(t, 3, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
}

func TestPreview(t *testing.T) {
	w, h := 4, 3
	rgb := make([]byte, w*h*3)
	for i := range rgb {
		rgb[i] = byte(i)
	}
	extra := "[Preview]\nSize=0,0,4,3\n" + packSection("PreviewPack", rgb)
	tm, err := Decode("p.map", buildMap(extra, Cell{X: 1, Y: 1}))
	require.NoError(t, err)

	cv, err := tm.Preview()
	require.NoError(t, err)
	assert.Equal(t, w, cv.W)
	assert.Equal(t, h, cv.H)
	assert.Equal(t, color.RGBA{0, 1, 2, 255}, cv.At(0, 0))
	assert.Equal(t, color.RGBA{33, 34, 35, 255}, cv.At(3, 2))

	bad, err := Decode("p.map", buildMap("[Preview]\nSize=0,0,5,3\n"+packSection("PreviewPack", rgb)))
	require.NoError(t, err)
	_, err = bad.Preview()
	assert.True(t, errors.Is(err, binio.ErrInconsistent))

	none, err := Decode("p.map", buildMap(""))
	require.NoError(t, err)
	_, err = none.Preview()
	assert.True(t, errors.Is(err, binio.ErrNotFound))
}

func TestJSONRoundTrip(t *testing.T) {
	tm, err := Decode("test.map", buildMap("", Cell{X: 3, Y: 4, Tile: 9}))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.json")
	require.NoError(t, tm.SaveJSON(path))
	back, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, tm.Name, back.Name)
	require.NotNil(t, back.At(3, 4))
	assert.Equal(t, int32(9), back.At(3, 4).Tile)
}

package tmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"testing"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/zbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiamondRows(t *testing.T) {
	g := RA2
	total := 0
	for y := 0; y < g.H; y++ {
		total += g.PixelsInRow(y)
	}
	assert.Equal(t, g.Pixels(), total)
	assert.Equal(t, 4, g.PixelsInRow(0))
	assert.Equal(t, 60, g.PixelsInRow(14))
	assert.Equal(t, 56, g.PixelsInRow(15))
	assert.Equal(t, 4, g.PixelsInRow(28))
	assert.Equal(t, 0, g.PixelsInRow(29))

	assert.Equal(t, 28, g.FirstPixelInRow(0))
	assert.Equal(t, 0, g.FirstPixelInRow(14))
	assert.Equal(t, 2, g.FirstPixelInRow(15))
	assert.Equal(t, -1, g.FirstPixelInRow(29))
}

func TestIndexOfPixelMask(t *testing.T) {
	for _, g := range []Geometry{RA2, TS} {
		next := 0
		for y := 0; y < g.H; y++ {
			first := g.FirstPixelInRow(y)
			n := g.PixelsInRow(y)
			for x := 0; x < g.W; x++ {
				got := g.IndexOfPixel(x, y)
				inside := first >= 0 && x >= first && x < first+n
				if !inside {
					if got != -1 {
						t.Fatalf("%v: IndexOfPixel(%d,%d) = %d, want -1", g, x, y, got)
					}
					continue
				}
				if got != next {
					t.Fatalf("%v: IndexOfPixel(%d,%d) = %d, want %d", g, x, y, got, next)
				}
				next++
			}
		}
		assert.Equal(t, g.Pixels(), next)
	}
	// corners of the box are outside the diamond
	assert.Equal(t, -1, RA2.IndexOfPixel(0, 0))
	assert.Equal(t, -1, RA2.IndexOfPixel(59, 0))
	assert.Equal(t, -1, RA2.IndexOfPixel(0, 28))
	assert.Equal(t, -1, RA2.IndexOfPixel(59, 29))
	assert.Equal(t, 0, RA2.IndexOfPixel(28, 0))
}

type testTile struct {
	hdr     Header
	pix     byte
	zdata   []byte
	extra   []byte
	extraZ  []byte
	damaged bool
}

// buildTMP writes a tile set; nil entries become empty cells.
func buildTMP(g Geometry, cols, rows int, tiles []*testTile) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint32{uint32(cols), uint32(rows), uint32(g.W), uint32(g.H)})
	tableAt := buf.Len()
	buf.Write(make([]byte, 4*len(tiles)))
	out := buf.Bytes()
	for i, tt := range tiles {
		if tt == nil {
			continue
		}
		pos := len(out)
		binary.LittleEndian.PutUint32(out[tableAt+4*i:], uint32(pos))

		var body bytes.Buffer
		body.Write(bytes.Repeat([]byte{tt.pix}, g.Pixels()))
		if tt.damaged {
			tt.hdr.Flags |= FlagDamaged
			body.Write(bytes.Repeat([]byte{tt.pix + 1}, g.Pixels()))
		}
		if tt.zdata != nil {
			tt.hdr.Flags |= FlagZData
			tt.hdr.ZOffset = int32(tileHeaderSize + body.Len())
			body.Write(tt.zdata)
		}
		if tt.extra != nil {
			tt.hdr.Flags |= FlagExtra
			tt.hdr.ExtraOffset = int32(tileHeaderSize + body.Len())
			body.Write(tt.extra)
			if tt.extraZ != nil {
				tt.hdr.ExtraZOffset = int32(tileHeaderSize + body.Len())
				body.Write(tt.extraZ)
			}
		}
		var hb bytes.Buffer
		binary.Write(&hb, binary.LittleEndian, tt.hdr)
		out = append(out, hb.Bytes()...)
		out = append(out, body.Bytes()...)
	}
	return out
}

func TestDecodeSparse(t *testing.T) {
	tiles := []*testTile{
		{hdr: Header{X: 0, Y: 0, Height: 1, Terrain: 3, RadarL: [3]uint8{1, 2, 3}}, pix: 7},
		nil,
		{hdr: Header{X: 30, Y: 15}, pix: 9, damaged: true},
	}
	s, err := Decode("clear01.tem", buildTMP(RA2, 3, 1, tiles))
	require.NoError(t, err)
	require.Len(t, s.Cells, 3)
	assert.Nil(t, s.Cells[1])
	assert.Len(t, s.Tiles(), 2)

	a := s.Cells[0]
	assert.Equal(t, uint8(3), a.Terrain)
	assert.Equal(t, uint8(1), a.Height)
	assert.Equal(t, uint8(2), a.RadarLeft().G)
	assert.Len(t, a.Pixels, 900)
	assert.Nil(t, a.Damaged)

	b := s.Cells[2]
	assert.Equal(t, image.Pt(2, 0), b.Cell)
	assert.True(t, b.HasDamaged())
	assert.Equal(t, byte(10), b.Damaged[0])
}

func TestDecodeRejectsGeometry(t *testing.T) {
	data := buildTMP(Geometry{64, 32}, 1, 1, []*testTile{nil})
	_, err := Decode("bad.tem", data)
	assert.True(t, errors.Is(err, binio.ErrFormat))

	_, err = Decode("ts.tem", buildTMP(TS, 1, 1, []*testTile{{pix: 1}}))
	assert.NoError(t, err)
}

func TestDecodeTruncated(t *testing.T) {
	data := buildTMP(RA2, 1, 1, []*testTile{{pix: 1}})
	_, err := Decode("cut.tem", data[:len(data)-100])
	assert.True(t, errors.Is(err, binio.ErrTruncated))

	_, err = Decode("cut.tem", data[:18])
	assert.True(t, errors.Is(err, binio.ErrTruncated))
}

func TestDecodeHostileExtraSize(t *testing.T) {
	// 65536*65537 wraps to 65536 in 32 bits
	tt := &testTile{hdr: Header{ExtraW: 65536, ExtraH: 65537}, pix: 1, extra: make([]byte, 65536)}
	_, err := Decode("huge.tem", buildTMP(RA2, 1, 1, []*testTile{tt}))
	assert.True(t, errors.Is(err, binio.ErrFormat))

	for _, hdr := range []Header{
		{ExtraW: 1 << 30, ExtraH: 1 << 30},
		{ExtraW: -1, ExtraH: -1},
		{ExtraW: 1<<31 - 1, ExtraH: 1},
	} {
		tt := &testTile{hdr: hdr, pix: 1, extra: []byte{1, 2}}
		_, err := Decode("huge.tem", buildTMP(RA2, 1, 1, []*testTile{tt}))
		assert.Error(t, err, "%dx%d", hdr.ExtraW, hdr.ExtraH)
	}
}

func TestImageRejectsHugeBounds(t *testing.T) {
	tiles := []*testTile{
		{hdr: Header{X: -1 << 31, Y: 0}, pix: 1},
		{hdr: Header{X: 1<<31 - 61, Y: 1<<31 - 31}, pix: 2},
	}
	s, err := Decode("far.tem", buildTMP(RA2, 2, 1, tiles))
	require.NoError(t, err)
	_, err = s.Image(palette.Grayscale())
	assert.True(t, errors.Is(err, binio.ErrFormat))

	// a hand-built tile whose extra bytes do not cover its rectangle
	tile := &Tile{Geom: RA2, Pixels: make([]byte, RA2.Pixels()), Extra: make([]byte, 4)}
	tile.Flags = FlagExtra
	tile.ExtraW, tile.ExtraH = 4, 4
	err = tile.Draw(zbuf.New(64, 64), palette.Grayscale(), 0, 0, false)
	assert.True(t, errors.Is(err, binio.ErrInconsistent))
}

func TestTileExtraAndZ(t *testing.T) {
	z := make([]byte, RA2.Pixels())
	for i := range z {
		z[i] = 5
	}
	tt := &testTile{
		hdr:    Header{X: 0, Y: 0, ExtraX: 10, ExtraY: -20, ExtraW: 4, ExtraH: 2},
		pix:    3,
		zdata:  z,
		extra:  []byte{0, 1, 1, 0, 2, 2, 2, 2},
		extraZ: []byte{9, 9, 9, 9, 1, 1, 1, 1},
	}
	s, err := Decode("cliff.tem", buildTMP(RA2, 1, 1, []*testTile{tt}))
	require.NoError(t, err)
	tile := s.Cells[0]
	require.NotNil(t, tile.ExtraZ)
	assert.Equal(t, image.Rect(10, -20, 14, -18), tile.ExtraRect())
	assert.Equal(t, image.Rect(0, -20, 60, 30), tile.Bounds())

	pal := palette.Grayscale()
	img, err := tile.Image(pal)
	require.NoError(t, err)
	assert.Equal(t, 60, img.W)
	assert.Equal(t, 50, img.H)
	// diamond top row starts at x=28, y=0 in tile space
	assert.Equal(t, pal.At(3), img.At(28, 20))
	assert.Equal(t, int32(5), img.ZAt(28, 20))
	// extra image, index 0 skipped
	assert.Equal(t, int32(-1<<31), img.ZAt(10, 0))
	assert.Equal(t, pal.At(1), img.At(11, 0))
	assert.Equal(t, int32(9), img.ZAt(11, 0))
	assert.Equal(t, pal.At(2), img.At(10, 1))
}

func TestSheetBoundsElevation(t *testing.T) {
	tiles := []*testTile{
		{hdr: Header{X: 0, Y: 0, Height: 2}, pix: 1},
		{hdr: Header{X: 30, Y: 15, Height: 0}, pix: 2},
	}
	s, err := Decode("ramp.tem", buildTMP(RA2, 2, 1, tiles))
	require.NoError(t, err)
	assert.Equal(t, 2, s.MaxHeight())

	// the low tile drops by (2-0)*30/2 = 30 rows: y 45..75
	b := s.Bounds()
	assert.Equal(t, 0, b.Min.X)
	assert.Equal(t, 0, b.Min.Y)
	assert.Equal(t, 90, b.Max.X)
	// union bottom is 75; the lowest tile floors the height at 15+60+30
	assert.Equal(t, 105, b.Max.Y)

	img, err := s.Image(palette.Grayscale())
	require.NoError(t, err)
	assert.Equal(t, b.Dx(), img.W)
	assert.Equal(t, b.Dy(), img.H)
	assert.Equal(t, palette.Grayscale().At(2), img.At(58, 45))
}

func TestSheetBoundsEmpty(t *testing.T) {
	s, err := Decode("none.tem", buildTMP(RA2, 1, 1, []*testTile{nil}))
	require.NoError(t, err)
	assert.Equal(t, image.Rectangle{}, s.Bounds())
}

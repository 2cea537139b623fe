package shp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"testing"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/zbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeRow builds one RLE row: a u16 byte count followed by body.
func encodeRow(body []byte) []byte {
	row := make([]byte, 2, 2+len(body))
	binary.LittleEndian.PutUint16(row, uint16(len(body)+2))
	return append(row, body...)
}

type testFrame struct {
	x, y, w, h  uint16
	compression uint32
	payload     []byte
	offset      uint32 // overrides the computed offset when nonzero
}

func buildSHP(w, h uint16, frames []testFrame) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint16{0, w, h, uint16(len(frames))})
	dataStart := headerSize + recordSize*len(frames)
	off := dataStart
	var body bytes.Buffer
	for _, f := range frames {
		o := uint32(off)
		if f.offset != 0 {
			o = f.offset
		}
		binary.Write(&buf, binary.LittleEndian, Frame{
			X: f.x, Y: f.y, Width: f.w, Height: f.h,
			Compression: f.compression, Offset: o,
		})
		body.Write(f.payload)
		off += len(f.payload)
	}
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func TestRLETransparentRun(t *testing.T) {
	const w = 12
	literal := []byte{7, 8, 9}
	for n := 0; n <= w; n++ {
		row := encodeRow(append([]byte{0, byte(n)}, literal...))
		got, err := DecodeRLE(row, w, 1)
		require.NoError(t, err, "n=%d", n)

		want := append(make([]byte, n), literal...)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

func TestRLEClampsRun(t *testing.T) {
	row := encodeRow([]byte{5, 0, 200})
	got, err := DecodeRLE(row, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 0, 0}, got)
}

func TestRLETruncated(t *testing.T) {
	row := encodeRow([]byte{1, 2, 3})
	_, err := DecodeRLE(row[:4], 3, 1)
	assert.True(t, errors.Is(err, binio.ErrTruncated))
	_, err = DecodeRLE(row, 3, 2)
	assert.True(t, errors.Is(err, binio.ErrTruncated))
}

func TestDecodeHeader(t *testing.T) {
	data := buildSHP(10, 8, []testFrame{{w: 2, h: 1, payload: []byte{1, 2}}})
	s, err := Decode("unit.shp", data)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Width)
	assert.Equal(t, 8, s.Height)
	assert.Equal(t, 1, s.Len())

	bad := append([]byte{}, data...)
	bad[0] = 1
	_, err = Decode("unit.shp", bad)
	assert.True(t, errors.Is(err, binio.ErrFormat))

	_, err = Decode("unit.shp", data[:headerSize+10])
	assert.True(t, errors.Is(err, binio.ErrTruncated))

	_, err = Decode("unit.shp", data[:4])
	assert.True(t, errors.Is(err, binio.ErrTruncated))
}

func TestFrameIsolation(t *testing.T) {
	rle := append(encodeRow([]byte{0, 1, 4}), encodeRow([]byte{3, 0, 1})...)
	frames := []testFrame{
		{w: 2, h: 2, payload: []byte{1, 2, 3, 4}},
		{w: 2, h: 2, offset: 0xffff},
		{w: 2, h: 2, compression: 3, payload: rle},
	}
	s, err := Decode("isolated.shp", buildSHP(2, 2, frames))
	require.NoError(t, err)

	pix, err := s.Pixels(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, pix)

	_, err = s.Pixels(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, binio.ErrTruncated))

	pix, err = s.Pixels(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 4, 3, 0}, pix)

	assert.Equal(t, []bool{true, false, true}, s.Valid())

	_, err = s.Pixels(3)
	assert.True(t, errors.Is(err, binio.ErrNotFound))
}

func TestFrameLengthMismatch(t *testing.T) {
	// one row of RLE for a two-row frame's worth of pixels
	rle := append(encodeRow([]byte{1}), encodeRow([]byte{2})...)
	s, err := Decode("short.shp", buildSHP(2, 2, []testFrame{{w: 2, h: 2, compression: CompressRLE, payload: rle}}))
	require.NoError(t, err)
	_, err = s.Pixels(0)
	assert.True(t, errors.Is(err, binio.ErrInconsistent))
}

func TestPixelsMemoised(t *testing.T) {
	s, err := Decode("m.shp", buildSHP(1, 1, []testFrame{{w: 1, h: 1, payload: []byte{9}}}))
	require.NoError(t, err)
	a, err := s.Pixels(0)
	require.NoError(t, err)
	b, err := s.Pixels(0)
	require.NoError(t, err)
	assert.True(t, &a[0] == &b[0], "second call decodes again")
}

func testPalette() *palette.Palette {
	raw := make([]byte, palette.Size)
	for i := 0; i < 256; i++ {
		raw[i*3] = byte(i % 64)
	}
	p, _ := palette.Decode("test.pal", raw)
	return p
}

func TestDrawFrame(t *testing.T) {
	frames := []testFrame{{x: 1, y: 1, w: 2, h: 2, payload: []byte{0, 5, 6, 7}}}
	s, err := Decode("d.shp", buildSHP(4, 4, frames))
	require.NoError(t, err)
	pal := testPalette()

	c, err := s.Frame(0, pal, false)
	require.NoError(t, err)
	assert.Equal(t, palette.TransparentMarker, c.At(1, 1))
	assert.Equal(t, pal.At(5), c.At(2, 1))
	assert.Equal(t, pal.At(6), c.At(1, 2))
	assert.Equal(t, color.RGBA{}, c.At(0, 0))

	flipped, err := s.Frame(0, pal, true)
	require.NoError(t, err)
	assert.Equal(t, pal.At(6), flipped.At(1, 1))
	assert.Equal(t, pal.At(5), flipped.At(2, 2))

	_, err = s.Frame(0, nil, false)
	assert.True(t, errors.Is(err, binio.ErrNotFound))
}

func TestAnchoredDraws(t *testing.T) {
	// a 2x2 frame sitting at (3,1) inside a 6x4 sprite
	frames := []testFrame{{x: 3, y: 1, w: 2, h: 2, payload: []byte{1, 2, 3, 4}}}
	s, err := Decode("a.shp", buildSHP(6, 4, frames))
	require.NoError(t, err)
	pal := testPalette()

	c := zbuf.New(8, 8)
	require.NoError(t, s.DrawTopLeft(c, 0, pal, 1, 1, 0))
	assert.Equal(t, pal.At(1), c.At(1, 1))
	assert.Equal(t, pal.At(4), c.At(2, 2))

	c = zbuf.New(8, 8)
	require.NoError(t, s.DrawCentered(c, 0, pal, 4, 4, 0))
	assert.Equal(t, pal.At(1), c.At(3, 3))
	assert.Equal(t, pal.At(4), c.At(4, 4))

	// bottom-left anchors on the frame height and does not mirror rows
	c = zbuf.New(8, 8)
	require.NoError(t, s.DrawBottomLeft(c, 0, pal, 0, 5, 0))
	assert.Equal(t, pal.At(1), c.At(0, 3))
	assert.Equal(t, pal.At(3), c.At(0, 4))
	assert.Equal(t, color.RGBA{}, c.At(0, 5))

	err = s.DrawCentered(c, 1, pal, 0, 0, 0)
	assert.True(t, errors.Is(err, binio.ErrNotFound))
}

func TestSheet(t *testing.T) {
	frames := []testFrame{
		{w: 2, h: 2, payload: []byte{1, 1, 1, 1}},
		{w: 2, h: 2, offset: 0xffff},
		{w: 2, h: 2, payload: []byte{2, 2, 2, 2}},
	}
	s, err := Decode("s.shp", buildSHP(2, 2, frames))
	require.NoError(t, err)
	sheet, failed, err := s.Sheet(testPalette(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 4, sheet.W)
	assert.Equal(t, 4, sheet.H)
	assert.Equal(t, testPalette().At(2), sheet.At(0, 2))
}

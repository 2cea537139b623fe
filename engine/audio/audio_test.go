package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSample struct {
	name  string
	flags uint32
	rate  uint32
	chunk uint32
	data  []byte
}

func buildBank(version uint32, samples ...testSample) (idx, bag []byte) {
	var ib, bb bytes.Buffer
	ib.WriteString(Magic)
	binary.Write(&ib, binary.LittleEndian, []uint32{version, uint32(len(samples))})
	for _, s := range samples {
		name := make([]byte, 16)
		copy(name, s.name)
		ib.Write(name)
		binary.Write(&ib, binary.LittleEndian, []uint32{uint32(bb.Len()), uint32(len(s.data)), s.rate, s.flags})
		if version == 2 {
			binary.Write(&ib, binary.LittleEndian, s.chunk)
		}
		bb.Write(s.data)
	}
	return ib.Bytes(), bb.Bytes()
}

func pcmBytes(v ...int16) []byte {
	out := make([]byte, 2*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(x))
	}
	return out
}

func TestOpenBank(t *testing.T) {
	idx, bag := buildBank(2,
		testSample{name: "gi_move1", flags: FlagPCM, rate: 22050, data: pcmBytes(1, -1, 300)},
		testSample{name: "ceva001", flags: FlagADPCM | FlagStereo, rate: 22050, chunk: 1024, data: make([]byte, 16)},
	)
	b, err := Open("audio.idx", idx, "audio.bag", bag)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), b.Version)
	assert.Equal(t, []string{"ceva001", "gi_move1"}, b.Names())

	s, err := b.Sample("GI_MOVE1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Channels())
	pcm, err := s.PCM16()
	require.NoError(t, err)
	assert.Equal(t, []int16{1, -1, 300}, pcm)

	st, err := b.Sample("ceva001")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Channels())
	assert.Equal(t, 1024, st.BlockAlign())

	_, err = b.Sample("nope")
	assert.True(t, errors.Is(err, binio.ErrNotFound))
}

func TestDecodeIndexV1AndErrors(t *testing.T) {
	idx, bag := buildBank(1, testSample{name: "a", flags: FlagADPCM, rate: 11025, data: make([]byte, 8)})
	b, err := Open("audio.idx", idx, "audio.bag", bag)
	require.NoError(t, err)
	assert.Equal(t, 512, b.Samples[0].BlockAlign())

	_, err = DecodeIndex("x.idx", []byte("GABB\x01\x00\x00\x00"))
	assert.True(t, errors.Is(err, binio.ErrFormat))
	_, err = DecodeIndex("x.idx", idx[:20])
	assert.True(t, errors.Is(err, binio.ErrTruncated))

	_, err = Open("audio.idx", idx, "audio.bag", bag[:4])
	assert.True(t, errors.Is(err, binio.ErrTruncated))

	_, err = DecodeIndex("x.idx", append([]byte("GABA\x03\x00\x00\x00"), make([]byte, 4)...))
	assert.True(t, errors.Is(err, binio.ErrFormat))
}

func TestIMAStep(t *testing.T) {
	st := imaState{}
	assert.Equal(t, int16(11), st.next(7))
	assert.Equal(t, 8, st.index)
	st = imaState{predictor: 5}
	assert.Equal(t, int16(5), st.next(0))
	assert.Equal(t, 0, st.index)
	st = imaState{predictor: 32760, index: 88}
	assert.Equal(t, int16(32767), st.next(7))
	st = imaState{predictor: 0}
	assert.Equal(t, int16(-11), st.next(15))
}

func TestDecodeIMAMono(t *testing.T) {
	block := []byte{100, 0, 0, 0, 0x70}
	pcm, err := DecodeIMA("a", block, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, []int16{100, 100, 111}, pcm)

	_, err = DecodeIMA("a", []byte{1, 2}, 1, 8)
	assert.True(t, errors.Is(err, binio.ErrTruncated))
	_, err = DecodeIMA("a", block, 3, 8)
	assert.True(t, errors.Is(err, binio.ErrFormat))
}

func TestDecodeIMAStereoInterleaves(t *testing.T) {
	block := []byte{
		10, 0, 0, 0, // left header
		20, 0, 0, 0, // right header
		0x70, 0, 0, 0, // left nibbles
		0, 0, 0, 0x70, // right nibbles
	}
	pcm, err := DecodeIMA("s", block, 2, len(block))
	require.NoError(t, err)
	require.Len(t, pcm, 2+16)
	assert.Equal(t, []int16{10, 20}, pcm[:2])
	// left: 10, then +11 on the second nibble
	assert.Equal(t, int16(10), pcm[2])
	assert.Equal(t, int16(21), pcm[4])
	// right only moves on its last nibble
	assert.Equal(t, int16(20), pcm[3])
	assert.Equal(t, int16(31), pcm[17])
	assert.Equal(t, SamplesPerBlock(len(block), 2), len(pcm)/2)
}

func TestWaveHeader(t *testing.T) {
	s := &Sample{Name: "x", Flags: FlagADPCM, SampleRate: 22050, Data: make([]byte, 1024)}
	w, err := s.WAV()
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(w[0:4]))
	assert.Equal(t, "WAVE", string(w[8:12]))
	assert.Equal(t, uint32(len(w)-8), binary.LittleEndian.Uint32(w[4:]))
	assert.Equal(t, uint32(20), binary.LittleEndian.Uint32(w[16:]))
	assert.Equal(t, uint16(FormatIMAADPCM), binary.LittleEndian.Uint16(w[20:]))
	assert.Equal(t, uint16(512), binary.LittleEndian.Uint16(w[32:]))
	assert.Equal(t, uint16(1017), binary.LittleEndian.Uint16(w[38:]))
	assert.Equal(t, "data", string(w[40:44]))
	assert.Equal(t, uint32(1024), binary.LittleEndian.Uint32(w[44:]))

	empty := &Sample{Name: "y"}
	_, err = empty.WAV()
	assert.True(t, errors.Is(err, binio.ErrNotFound))
}

func TestStream(t *testing.T) {
	s := &Sample{Name: "x", Flags: FlagPCM | FlagStereo, SampleRate: 22050, Data: pcmBytes(0, 16384, -16384, 0)}
	st, format, err := s.Stream()
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, beep.SampleRate(22050), format.SampleRate)
	assert.Equal(t, 2, format.NumChannels)
	assert.Equal(t, 2, st.Len())

	buf := make([][2]float64, 4)
	n, ok := st.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 0.5, buf[0][1], 1e-3)
	assert.InDelta(t, -0.5, buf[1][0], 1e-3)

	bad := &Sample{Name: "z", Flags: FlagStereo, Data: []byte{0, 0}}
	_, _, err = bad.Stream()
	assert.True(t, errors.Is(err, binio.ErrFormat))
}

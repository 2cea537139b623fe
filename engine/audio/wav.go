package audio

import (
	"bytes"
	"encoding/binary"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/pkg/errors"
)

const (
	FormatPCM      = 0x0001
	FormatIMAADPCM = 0x0011
)

// WaveFormat is the fmt chunk body.
type WaveFormat struct {
	Format     uint16
	Channels   uint16
	SampleRate uint32
	ByteRate   uint32
	BlockAlign uint16
	Bits       uint16
}

type riffChunk struct {
	ID   [4]byte
	Size uint32
}

// Format describes the sample's own encoding.
func (s *Sample) Format() WaveFormat {
	ch := uint16(s.Channels())
	if s.IsADPCM() {
		align := s.BlockAlign()
		spb := SamplesPerBlock(align, int(ch))
		return WaveFormat{
			Format:     FormatIMAADPCM,
			Channels:   ch,
			SampleRate: s.SampleRate,
			ByteRate:   uint32(int(s.SampleRate) * align / spb),
			BlockAlign: uint16(align),
			Bits:       4,
		}
	}
	return pcm16Format(ch, s.SampleRate)
}

func pcm16Format(ch uint16, rate uint32) WaveFormat {
	return WaveFormat{
		Format:     FormatPCM,
		Channels:   ch,
		SampleRate: rate,
		ByteRate:   rate * uint32(ch) * 2,
		BlockAlign: ch * 2,
		Bits:       16,
	}
}

// WaveHeader builds the RIFF header for dataSize bytes of sample data in
// format f. ADPCM formats carry the samples-per-block extension.
func WaveHeader(f WaveFormat, dataSize int) []byte {
	var fmtExt []byte
	if f.Format == FormatIMAADPCM {
		fmtExt = make([]byte, 4)
		binary.LittleEndian.PutUint16(fmtExt, 2)
		binary.LittleEndian.PutUint16(fmtExt[2:], uint16(SamplesPerBlock(int(f.BlockAlign), int(f.Channels))))
	}
	fmtSize := uint32(binary.Size(f) + len(fmtExt))

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, riffChunk{[4]byte{'R', 'I', 'F', 'F'}, 4 + 8 + fmtSize + 8 + uint32(dataSize)})
	buf.WriteString("WAVE")
	binary.Write(&buf, binary.LittleEndian, riffChunk{[4]byte{'f', 'm', 't', ' '}, fmtSize})
	binary.Write(&buf, binary.LittleEndian, f)
	buf.Write(fmtExt)
	binary.Write(&buf, binary.LittleEndian, riffChunk{[4]byte{'d', 'a', 't', 'a'}, uint32(dataSize)})
	return buf.Bytes()
}

func (s *Sample) checkData() error {
	if s.Data == nil {
		return binio.NotFound(s.Name, "sample data")
	}
	return nil
}

// WAV wraps the sample bytes, still in their own encoding, in a RIFF
// header.
func (s *Sample) WAV() ([]byte, error) {
	if err := s.checkData(); err != nil {
		return nil, err
	}
	return append(WaveHeader(s.Format(), len(s.Data)), s.Data...), nil
}

// PCM16 returns interleaved 16-bit samples.
func (s *Sample) PCM16() ([]int16, error) {
	if err := s.checkData(); err != nil {
		return nil, err
	}
	if s.IsADPCM() {
		return DecodeIMA(s.Name, s.Data, s.Channels(), s.BlockAlign())
	}
	if s.Flags&FlagPCM == 0 {
		return nil, binio.Formatf(s.Name, int64(s.Offset), "unknown encoding, flags %#x", s.Flags)
	}
	out := make([]int16, len(s.Data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(s.Data[2*i:]))
	}
	return out, nil
}

// PCMWAV returns the sample decoded to a 16-bit PCM WAV file.
func (s *Sample) PCMWAV() ([]byte, error) {
	pcm, err := s.PCM16()
	if err != nil {
		return nil, err
	}
	body := make([]byte, 2*len(pcm))
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(body[2*i:], uint16(v))
	}
	return append(WaveHeader(pcm16Format(uint16(s.Channels()), s.SampleRate), len(body)), body...), nil
}

// Stream decodes the sample into a beep streamer.
func (s *Sample) Stream() (beep.StreamSeekCloser, beep.Format, error) {
	data, err := s.PCMWAV()
	if err != nil {
		return nil, beep.Format{}, err
	}
	st, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, beep.Format{}, errors.Wrapf(err, "stream %s", s.Name)
	}
	return st, format, nil
}

// Package audio reads the sample bank the game ships as audio.idx (the
// index) plus audio.bag (the sample bytes) and turns samples into WAV data
// or beep streams.
package audio

import (
	"sort"
	"strings"

	"github.com/1siamBot/ra2view/engine/binio"
	log "github.com/sirupsen/logrus"
)

const (
	Magic = "GABA"

	FlagStereo = 0x01
	FlagPCM    = 0x02 // 16-bit PCM
	FlagADPCM  = 0x08 // IMA ADPCM
)

// Sample is one index entry. Data is nil until the bank is attached to its
// bag.
type Sample struct {
	Name       string
	Offset     uint32
	Size       uint32
	SampleRate uint32
	Flags      uint32
	ChunkSize  uint32 // ADPCM block size, 0 in version 1 indexes
	Data       []byte
}

func (s *Sample) Channels() int {
	if s.Flags&FlagStereo != 0 {
		return 2
	}
	return 1
}

func (s *Sample) IsADPCM() bool { return s.Flags&FlagADPCM != 0 }

// BlockAlign is the ADPCM block size in bytes.
func (s *Sample) BlockAlign() int {
	if s.ChunkSize != 0 {
		return int(s.ChunkSize)
	}
	return 512 * s.Channels()
}

// Bank is a decoded index.
type Bank struct {
	Name    string
	Version uint32
	Samples []*Sample
	byName  map[string]*Sample
}

// DecodeIndex parses an audio.idx file.
func DecodeIndex(name string, data []byte) (*Bank, error) {
	c := binio.NewCursor(name, data)
	magic, err := c.Bytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, binio.Formatf(name, 0, "bad magic %q", magic)
	}
	b := &Bank{Name: name, byName: make(map[string]*Sample)}
	if b.Version, err = c.U32(); err != nil {
		return nil, err
	}
	if b.Version != 1 && b.Version != 2 {
		return nil, binio.Formatf(name, 4, "unsupported version %d", b.Version)
	}
	count, err := c.U32()
	if err != nil {
		return nil, err
	}
	recSize := int64(32)
	if b.Version == 2 {
		recSize = 36
	}
	if err := binio.Range(name, int64(c.Pos()), int64(count)*recSize, int64(len(data))); err != nil {
		return nil, err
	}
	b.Samples = make([]*Sample, count)
	for i := range b.Samples {
		s := &Sample{}
		s.Name, _ = c.CString(16)
		s.Offset, _ = c.U32()
		s.Size, _ = c.U32()
		s.SampleRate, _ = c.U32()
		s.Flags, _ = c.U32()
		if b.Version == 2 {
			s.ChunkSize, _ = c.U32()
		}
		b.Samples[i] = s
		b.byName[strings.ToLower(s.Name)] = s
	}
	return b, nil
}

// Attach slices every sample's bytes out of the bag.
func (b *Bank) Attach(bagName string, bag []byte) error {
	for _, s := range b.Samples {
		if err := binio.Range(bagName, int64(s.Offset), int64(s.Size), int64(len(bag))); err != nil {
			return err
		}
		s.Data = bag[s.Offset : s.Offset+s.Size]
	}
	log.WithFields(log.Fields{"index": b.Name, "bag": bagName, "samples": len(b.Samples)}).Debug("audio: bag attached")
	return nil
}

// Open decodes an index and attaches its bag.
func Open(idxName string, idx []byte, bagName string, bag []byte) (*Bank, error) {
	b, err := DecodeIndex(idxName, idx)
	if err != nil {
		return nil, err
	}
	if err := b.Attach(bagName, bag); err != nil {
		return nil, err
	}
	return b, nil
}

// Sample looks a sample up by name, case-insensitively.
func (b *Bank) Sample(name string) (*Sample, error) {
	s, ok := b.byName[strings.ToLower(name)]
	if !ok {
		return nil, binio.NotFound(b.Name, name)
	}
	return s, nil
}

// Names returns sample names sorted.
func (b *Bank) Names() []string {
	out := make([]string, len(b.Samples))
	for i, s := range b.Samples {
		out[i] = s.Name
	}
	sort.Strings(out)
	return out
}

// Package codec inflates Westwood chunked LZO streams: a run of chunks, each
// a u16 packed size, a u16 unpacked size and an LZO1X payload.
package codec

import (
	"bytes"

	"github.com/1siamBot/ra2view/engine/binio"
	lzo "github.com/rasky/go-lzo"
	log "github.com/sirupsen/logrus"
)

const chunkHeaderSize = 4

// Stats reports what a Decompress call did with the stream.
type Stats struct {
	Chunks  int // chunks inflated
	Skipped int // chunks whose packed size overran the buffer
}

// Decompress inflates packed and concatenates the chunk outputs.
//
// A chunk whose packed size runs past the end of the buffer is skipped and
// the cursor still advances by the claimed size. Such chunks are counted in
// Stats.Skipped and logged, never returned as errors.
func Decompress(name string, packed []byte) ([]byte, Stats, error) {
	var (
		st  Stats
		out bytes.Buffer
	)
	offs := 0
	for offs < len(packed) {
		if offs+chunkHeaderSize > len(packed) {
			st.Skipped++
			log.WithFields(log.Fields{"asset": name, "offset": offs}).Warn("lzo: partial chunk header")
			break
		}
		c := binio.NewCursor(name, packed[offs:offs+chunkHeaderSize])
		inSize, _ := c.U16()
		outSize, _ := c.U16()
		offs += chunkHeaderSize

		if offs+int(inSize) > len(packed) {
			st.Skipped++
			log.WithFields(log.Fields{
				"asset":  name,
				"offset": offs,
				"packed": inSize,
				"left":   len(packed) - offs,
			}).Warn("lzo: chunk overruns buffer, skipped")
			offs += int(inSize)
			continue
		}

		chunk, err := DecompressChunk(packed[offs:offs+int(inSize)], int(outSize))
		if err != nil {
			return nil, st, binio.Inconsistentf(name, int64(offs), "lzo chunk %d: %v", st.Chunks, err)
		}
		if len(chunk) != int(outSize) {
			return nil, st, binio.Inconsistentf(name, int64(offs),
				"lzo chunk %d inflated to %d bytes, want %d", st.Chunks, len(chunk), outSize)
		}
		out.Write(chunk)
		st.Chunks++
		offs += int(inSize)
	}
	if st.Skipped > 0 {
		log.WithFields(log.Fields{"asset": name, "skipped": st.Skipped, "chunks": st.Chunks}).Info("lzo: stream had skipped chunks")
	}
	return out.Bytes(), st, nil
}

// DecompressChunk inflates one LZO1X block of known unpacked size.
func DecompressChunk(in []byte, outSize int) ([]byte, error) {
	return lzo.Decompress1X(bytes.NewReader(in), len(in), outSize)
}

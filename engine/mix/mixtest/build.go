// Package mixtest builds archive fixtures for tests.
package mixtest

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"sort"

	"github.com/1siamBot/ra2view/engine/mix"
)

// File is one archive member.
type File struct {
	Name string
	Data []byte
}

// Build lays files out as an unencrypted TS/RA2 archive, index sorted by
// signed ID. Duplicate names keep the last file.
func Build(checksum bool, files ...File) []byte {
	type record struct {
		id   uint32
		data []byte
	}
	byID := make(map[uint32]int)
	var recs []record
	for _, f := range files {
		id := mix.ID(f.Name)
		if i, ok := byID[id]; ok {
			recs[i].data = f.Data
			continue
		}
		byID[id] = len(recs)
		recs = append(recs, record{id, f.Data})
	}
	sort.Slice(recs, func(i, j int) bool { return int32(recs[i].id) < int32(recs[j].id) })

	var index, body bytes.Buffer
	for _, r := range recs {
		binary.Write(&index, binary.LittleEndian, []uint32{r.id, uint32(body.Len()), uint32(len(r.data))})
		body.Write(r.data)
	}
	var flags uint32
	if checksum {
		flags = mix.FlagChecksum
	}
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, flags)
	binary.Write(&out, binary.LittleEndian, uint16(len(recs)))
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(index.Bytes())
	out.Write(body.Bytes())
	if checksum {
		sum := sha1.Sum(body.Bytes())
		out.Write(sum[:])
	}
	return out.Bytes()
}

// Package lzotest builds chunked LZO streams for tests. Payloads are stored
// as literal-only LZO1X blocks, which every conforming decoder accepts.
package lzotest

import "encoding/binary"

// MaxLiteral is the largest run a single-byte literal opcode can carry.
const MaxLiteral = 238

// Block encodes data as one literal-only LZO1X block with its end marker.
func Block(data []byte) []byte {
	if len(data) == 0 || len(data) > MaxLiteral {
		panic("lzotest: block size out of range")
	}
	b := make([]byte, 0, len(data)+4)
	b = append(b, byte(17+len(data)))
	b = append(b, data...)
	return append(b, 0x11, 0, 0)
}

// Chunk prefixes an LZO block with its packed and unpacked sizes.
func Chunk(data []byte) []byte {
	blk := Block(data)
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[0:], uint16(len(blk)))
	binary.LittleEndian.PutUint16(hdr[2:], uint16(len(data)))
	return append(hdr[:], blk...)
}

// Pack splits data into MaxLiteral-sized chunks.
func Pack(data []byte) []byte {
	var out []byte
	for len(data) > 0 {
		n := len(data)
		if n > MaxLiteral {
			n = MaxLiteral
		}
		out = append(out, Chunk(data[:n])...)
		data = data[n:]
	}
	return out
}

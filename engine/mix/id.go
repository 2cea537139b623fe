package mix

import (
	"hash/crc32"
	"strings"
)

// HashFunc maps a file name to the 32-bit ID stored in a MIX index.
type HashFunc func(name string) uint32

// ID is the Tiberian Sun / Red Alert 2 name hash: CRC-32 of the upper-cased
// name, padded to a multiple of four bytes. The pad is the remainder length
// followed by copies of the first byte of the last partial word.
func ID(name string) uint32 {
	b := []byte(strings.ToUpper(name))
	l := len(b)
	if rem := l & 3; rem != 0 {
		a := l &^ 3
		b = append(b, byte(rem))
		for i := 0; i < 3-rem; i++ {
			b = append(b, b[a])
		}
	}
	return crc32.ChecksumIEEE(b)
}

// ClassicID is the Tiberian Dawn / Red Alert name hash: rotate left by one
// and add each little-endian word of the upper-cased name.
func ClassicID(name string) uint32 {
	b := []byte(strings.ToUpper(name))
	var id uint32
	for i := 0; i < len(b); {
		var a uint32
		for j := 0; j < 4; j++ {
			a >>= 8
			if i < len(b) {
				a |= uint32(b[i]) << 24
			}
			i++
		}
		id = (id<<1 | id>>31) + a
	}
	return id
}

// Package mix reads Westwood MIX archives and resolves file names across an
// ordered set of mounted archives.
//
// Layouts handled:
//
//	TD/RA:    u16 count, u32 body size, count × entry, body
//	TS/RA2:   u32 flags, u16 count, u32 body size, count × entry, body
//	encrypted TS/RA2: u32 flags, 80-byte key source, Blowfish index, body
//
// An entry is u32 id, u32 offset, u32 size; offsets are relative to the body.
// A checksummed archive carries a SHA-1 of the body after it.
package mix

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/codec"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	FlagChecksum  = 0x00010000
	FlagEncrypted = 0x00020000

	entrySize    = 12
	checksumSize = sha1.Size
)

// Entry locates one file inside an archive body.
type Entry struct {
	ID         uint32
	Offset     uint32
	Size       uint32
	Compressed bool
	Name       string // empty unless a name database or FromFiles supplied it
}

func (e Entry) String() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("%08X", e.ID)
}

// Archive is an opened MIX file.
type Archive struct {
	name      string
	r         io.ReaderAt
	closer    io.Closer
	size      int64
	key       identity
	flags     uint32
	classic   bool
	bodyStart int64
	bodySize  uint32
	hash      HashFunc
	entries   []Entry
	byID      map[uint32]int
}

// identity pins an archive to a byte range of its outermost file.
type identity struct {
	root string
	base int64
	size int64
}

// Option adjusts how an archive is opened.
type Option func(*Archive)

// WithHash overrides the name hash used for lookups. By default TD/RA
// headers use ClassicID and TS/RA2 headers use ID.
func WithHash(h HashFunc) Option {
	return func(a *Archive) { a.hash = h }
}

// OpenFile opens a MIX from disk. The file stays open until Close.
func OpenFile(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "mix: open")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mix: stat")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	a, err := open(filepath.Base(path), f, fi.Size(), identity{root: abs, size: fi.Size()}, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// Open parses a MIX held by r.
func Open(name string, r io.ReaderAt, size int64, opts ...Option) (*Archive, error) {
	return open(name, r, size, identity{root: name, size: size}, opts)
}

// OpenBytes parses a MIX held in memory.
func OpenBytes(name string, data []byte, opts ...Option) (*Archive, error) {
	return Open(name, bytes.NewReader(data), int64(len(data)), opts...)
}

func open(name string, r io.ReaderAt, size int64, key identity, opts []Option) (*Archive, error) {
	a := &Archive{name: name, r: r, size: size, key: key}
	for _, o := range opts {
		o(a)
	}
	if err := a.readIndex(); err != nil {
		return nil, err
	}
	if a.hash == nil {
		a.hash = ID
		if a.classic {
			a.hash = ClassicID
		}
	}
	a.loadNames()
	log.WithFields(log.Fields{"archive": name, "entries": len(a.entries), "flags": a.flags}).Debug("mix: opened")
	return a, nil
}

func (a *Archive) readAt(off int64, n int) ([]byte, error) {
	if err := binio.Range(a.name, off, int64(n), a.size); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := a.r.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "mix: %s: read at 0x%x", a.name, off)
	}
	return buf, nil
}

func (a *Archive) readIndex() error {
	head, err := a.readAt(0, 6)
	if err != nil {
		return err
	}
	var count uint16
	var table []byte

	switch {
	case binary.LittleEndian.Uint16(head) != 0:
		a.classic = true
		count = binary.LittleEndian.Uint16(head)
		a.bodySize = binary.LittleEndian.Uint32(head[2:])
		a.bodyStart = 6 + int64(count)*entrySize
		if table, err = a.readAt(6, int(count)*entrySize); err != nil {
			return err
		}
	default:
		a.flags = binary.LittleEndian.Uint32(head)
		if a.flags&FlagEncrypted != 0 {
			count, table, err = a.readEncryptedIndex()
			if err != nil {
				return err
			}
			break
		}
		hdr, err := a.readAt(4, 6)
		if err != nil {
			return err
		}
		count = binary.LittleEndian.Uint16(hdr)
		a.bodySize = binary.LittleEndian.Uint32(hdr[2:])
		a.bodyStart = 10 + int64(count)*entrySize
		if table, err = a.readAt(10, int(count)*entrySize); err != nil {
			return err
		}
	}
	return a.parseTable(count, table)
}

func (a *Archive) readEncryptedIndex() (uint16, []byte, error) {
	src, err := a.readAt(4, keySourceSize)
	if err != nil {
		return 0, nil, err
	}
	bf, err := newCipher(deriveKey(src))
	if err != nil {
		return 0, nil, binio.Formatf(a.name, 4, "blowfish key: %v", err)
	}

	start := int64(4 + keySourceSize)
	first, err := a.readAt(start, 8)
	if err != nil {
		return 0, nil, err
	}
	decryptECB(bf, first)
	count := binary.LittleEndian.Uint16(first)
	a.bodySize = binary.LittleEndian.Uint32(first[2:])

	n := 6 + int(count)*entrySize
	blocks := (n + 7) / 8
	raw, err := a.readAt(start, blocks*8)
	if err != nil {
		return 0, nil, err
	}
	decryptECB(bf, raw)
	a.bodyStart = start + int64(blocks*8)
	return count, raw[6:n], nil
}

func (a *Archive) parseTable(count uint16, table []byte) error {
	c := binio.NewCursor(a.name, table)
	a.entries = make([]Entry, count)
	a.byID = make(map[uint32]int, count)
	if a.bodyStart > a.size {
		return binio.Formatf(a.name, 0, "index of %d entries runs past end of file", count)
	}
	avail := a.size - a.bodyStart
	for i := range a.entries {
		var raw struct {
			ID, Offset, Size uint32
		}
		if err := c.Read(&raw); err != nil {
			return err
		}
		if int64(raw.Offset)+int64(raw.Size) > avail {
			return binio.Formatf(a.name, a.bodyStart-int64(len(a.entries)-i)*entrySize,
				"entry %08X [0x%x+%d] exceeds body of %d bytes", raw.ID, raw.Offset, raw.Size, avail)
		}
		a.entries[i] = Entry{ID: raw.ID, Offset: raw.Offset, Size: raw.Size}
		a.byID[raw.ID] = i
	}
	return nil
}

func (a *Archive) Name() string     { return a.name }
func (a *Archive) Flags() uint32    { return a.flags }
func (a *Archive) Encrypted() bool  { return a.flags&FlagEncrypted != 0 }
func (a *Archive) Classic() bool    { return a.classic }
func (a *Archive) BodySize() uint32 { return a.bodySize }
func (a *Archive) Len() int         { return len(a.entries) }

// Entries returns a copy of the index in file order.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *Archive) String() string { return a.name }

// Close releases the underlying file when the archive owns one.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Resolve looks name up and returns its entry.
func (a *Archive) Resolve(name string) (Entry, error) {
	if i, ok := a.byID[a.hash(name)]; ok {
		return a.entries[i], nil
	}
	return Entry{}, binio.NotFound(a.name, name)
}

func (a *Archive) Has(name string) bool {
	_, ok := a.byID[a.hash(name)]
	return ok
}

// Section returns the raw stored bytes of e as a reader.
func (a *Archive) Section(e Entry) *io.SectionReader {
	return io.NewSectionReader(a.r, a.bodyStart+int64(e.Offset), int64(e.Size))
}

// ExtractEntry reads e, inflating it when it is marked compressed.
func (a *Archive) ExtractEntry(e Entry) ([]byte, error) {
	data, err := a.readAt(a.bodyStart+int64(e.Offset), int(e.Size))
	if err != nil {
		return nil, err
	}
	if !e.Compressed {
		return data, nil
	}
	out, st, err := codec.Decompress(e.String(), data)
	if err != nil {
		return nil, err
	}
	if st.Skipped > 0 {
		log.WithFields(log.Fields{"archive": a.name, "entry": e.String(), "skipped": st.Skipped}).Warn("mix: entry inflated with skipped chunks")
	}
	return out, nil
}

// Extract returns the bytes of the named file.
func (a *Archive) Extract(name string) ([]byte, error) {
	e, err := a.Resolve(name)
	if err != nil {
		return nil, err
	}
	return a.ExtractEntry(e)
}

// Checksum returns the stored SHA-1 of the body, if the archive has one.
func (a *Archive) Checksum() ([]byte, bool) {
	if a.flags&FlagChecksum == 0 {
		return nil, false
	}
	sum, err := a.readAt(a.bodyStart+int64(a.bodySize), checksumSize)
	if err != nil {
		return nil, false
	}
	return sum, true
}

// VerifyChecksum compares the stored SHA-1 against the body.
func (a *Archive) VerifyChecksum() error {
	want, ok := a.Checksum()
	if !ok {
		return binio.NotFound(a.name, "checksum")
	}
	h := sha1.New()
	if _, err := io.Copy(h, io.NewSectionReader(a.r, a.bodyStart, int64(a.bodySize))); err != nil {
		return errors.Wrapf(err, "mix: %s: hash body", a.name)
	}
	if !bytes.Equal(h.Sum(nil), want) {
		return binio.Inconsistentf(a.name, a.bodyStart+int64(a.bodySize), "body checksum mismatch")
	}
	return nil
}

// OpenNested opens the named entry as an archive in its own right.
func (a *Archive) OpenNested(name string, opts ...Option) (*Archive, error) {
	e, err := a.Resolve(name)
	if err != nil {
		return nil, err
	}
	base := a.key.base + a.bodyStart + int64(e.Offset)
	key := identity{root: a.key.root, base: base, size: int64(e.Size)}
	if e.Compressed {
		data, err := a.ExtractEntry(e)
		if err != nil {
			return nil, err
		}
		return open(name, bytes.NewReader(data), int64(len(data)), key, opts)
	}
	return open(name, a.Section(e), int64(e.Size), key, opts)
}

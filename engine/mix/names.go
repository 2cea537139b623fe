package mix

import (
	"bytes"
	"sort"

	"github.com/1siamBot/ra2view/engine/binio"
	log "github.com/sirupsen/logrus"
)

// NameDatabase is the entry XCC Mixer adds to archives it writes, listing
// the original file names.
const NameDatabase = "local mix database.dat"

var lmdMagic = []byte("XCC by Olaf van der Spek\x1a\x04\x17\x27\x10\x19\x80\x00")

// ParseNameDatabase returns the file names listed in a local mix database.
func ParseNameDatabase(data []byte) ([]string, error) {
	c := binio.NewCursor(NameDatabase, data)
	magic, err := c.Bytes(len(lmdMagic))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, lmdMagic) {
		return nil, binio.Formatf(NameDatabase, 0, "bad magic")
	}
	var hdr struct {
		Size, Type, Version, Game, Count uint32
	}
	if err := c.Read(&hdr); err != nil {
		return nil, err
	}
	rest := data[c.Pos():]
	// every name ends in a NUL, so the remaining bytes bound the count
	n := hdr.Count
	if int64(n) > int64(len(rest)) {
		n = uint32(len(rest))
	}
	names := make([]string, 0, n)
	for i := uint32(0); i < hdr.Count; i++ {
		end := bytes.IndexByte(rest, 0)
		if end < 0 {
			return names, binio.Truncated(NameDatabase, int64(len(data)-len(rest)), 1, int64(len(rest)))
		}
		names = append(names, string(rest[:end]))
		rest = rest[end+1:]
	}
	return names, nil
}

func (a *Archive) loadNames() {
	if !a.Has(NameDatabase) {
		return
	}
	data, err := a.Extract(NameDatabase)
	if err == nil {
		var names []string
		names, err = ParseNameDatabase(data)
		a.AddNames(names...)
	}
	if err != nil {
		log.WithError(err).WithField("archive", a.name).Debug("mix: unreadable name database")
	}
}

// AddNames attaches known file names to matching entries.
func (a *Archive) AddNames(names ...string) int {
	n := 0
	for _, name := range names {
		if i, ok := a.byID[a.hash(name)]; ok {
			a.entries[i].Name = name
			n++
		}
	}
	return n
}

// File is an in-memory archive member.
type File struct {
	Name       string
	Data       []byte
	Compressed bool // Data is a chunked LZO stream
}

// FromFiles builds an archive whose body is the concatenation of files.
// Later files with the same name replace earlier ones.
func FromFiles(name string, files []File, opts ...Option) *Archive {
	a := &Archive{name: name, hash: ID, byID: make(map[uint32]int)}
	for _, o := range opts {
		o(a)
	}
	var body bytes.Buffer
	for _, f := range files {
		e := Entry{
			ID:         a.hash(f.Name),
			Offset:     uint32(body.Len()),
			Size:       uint32(len(f.Data)),
			Compressed: f.Compressed,
			Name:       f.Name,
		}
		body.Write(f.Data)
		if i, ok := a.byID[e.ID]; ok {
			a.entries[i] = e
			continue
		}
		a.byID[e.ID] = len(a.entries)
		a.entries = append(a.entries, e)
	}
	data := body.Bytes()
	a.r = bytes.NewReader(data)
	a.size = int64(len(data))
	a.bodySize = uint32(len(data))
	a.key = identity{root: name, size: a.size}
	return a
}

// Names returns the known entry names, sorted.
func (a *Archive) Names() []string {
	var out []string
	for _, e := range a.entries {
		if e.Name != "" {
			out = append(out, e.Name)
		}
	}
	sort.Strings(out)
	return out
}

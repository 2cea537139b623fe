// Package csf decodes compiled string tables (.csf): labelled UI strings
// stored as bit-inverted UTF-16LE.
package csf

import (
	"sort"
	"strings"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

const (
	magicFile   = " FSC"
	magicLabel  = " LBL"
	magicString = " RTS"
	magicWide   = "WRTS" // string followed by an extra ASCII value
)

// Language is the table's language id.
type Language uint32

const (
	English Language = iota
	British
	German
	French
	Spanish
	Italian
	Japanese
	Jabberwockie
	Korean
	Chinese
)

var languageNames = [...]string{"en-US", "en-GB", "de", "fr", "es", "it", "ja", "jabberwockie", "ko", "zh"}

func (l Language) String() string {
	if int(l) < len(languageNames) {
		return languageNames[l]
	}
	return "unknown"
}

// Header is the fixed table header after the magic.
type Header struct {
	Version  uint32
	Labels   uint32
	Strings  uint32
	Unused   uint32
	Language Language
}

// Entry is one label and its first value.
type Entry struct {
	Label string
	Value string
	Extra string
}

// Table is a decoded string table.
type Table struct {
	Name    string
	Header  Header
	entries map[string]*Entry
	order   []string
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Decode parses a string table.
func Decode(name string, data []byte) (*Table, error) {
	c := binio.NewCursor(name, data)
	if err := expect(c, magicFile); err != nil {
		return nil, err
	}
	t := &Table{Name: name, entries: make(map[string]*Entry)}
	if err := c.Read(&t.Header); err != nil {
		return nil, err
	}
	for i := uint32(0); i < t.Header.Labels; i++ {
		e, err := decodeLabel(c)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(e.Label)
		if _, dup := t.entries[key]; !dup {
			t.order = append(t.order, key)
		}
		t.entries[key] = e
	}
	return t, nil
}

func expect(c *binio.Cursor, magic string) error {
	off := c.Pos()
	b, err := c.Bytes(4)
	if err != nil {
		return err
	}
	if string(b) != magic {
		return binio.Formatf(c.Name(), int64(off), "found %q, want %q", b, magic)
	}
	return nil
}

func decodeLabel(c *binio.Cursor) (*Entry, error) {
	if err := expect(c, magicLabel); err != nil {
		return nil, err
	}
	pairs, err := c.U32()
	if err != nil {
		return nil, err
	}
	n, err := c.U32()
	if err != nil {
		return nil, err
	}
	label, err := c.Bytes(int(n))
	if err != nil {
		return nil, err
	}
	e := &Entry{Label: string(label)}
	for p := uint32(0); p < pairs; p++ {
		value, extra, err := decodeValue(c)
		if err != nil {
			return nil, err
		}
		if p == 0 {
			e.Value, e.Extra = value, extra
		}
	}
	return e, nil
}

func decodeValue(c *binio.Cursor) (value, extra string, err error) {
	off := c.Pos()
	kind, err := c.Bytes(4)
	if err != nil {
		return "", "", err
	}
	if string(kind) != magicString && string(kind) != magicWide {
		return "", "", binio.Formatf(c.Name(), int64(off), "found %q, want a string record", kind)
	}
	chars, err := c.U32()
	if err != nil {
		return "", "", err
	}
	raw, err := c.Bytes(int(chars) * 2)
	if err != nil {
		return "", "", err
	}
	if value, err = DecodeString(raw); err != nil {
		return "", "", errors.Wrapf(err, "%s at %d", c.Name(), off)
	}
	if string(kind) == magicWide {
		n, err := c.U32()
		if err != nil {
			return "", "", err
		}
		b, err := c.Bytes(int(n))
		if err != nil {
			return "", "", err
		}
		extra = string(b)
	}
	return value, extra, nil
}

// DecodeString inverts every byte and decodes the result as UTF-16LE.
func DecodeString(raw []byte) (string, error) {
	inv := make([]byte, len(raw))
	for i, b := range raw {
		inv[i] = ^b
	}
	out, err := utf16le.NewDecoder().Bytes(inv)
	return string(out), err
}

// EncodeString is the inverse of DecodeString.
func EncodeString(s string) ([]byte, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	for i := range b {
		b[i] = ^b[i]
	}
	return b, nil
}

func (t *Table) Len() int { return len(t.order) }

// Get looks up a label case-insensitively.
func (t *Table) Get(label string) (*Entry, error) {
	e, ok := t.entries[strings.ToLower(label)]
	if !ok {
		return nil, binio.NotFound(t.Name, label)
	}
	return e, nil
}

// Entries returns labels in file order.
func (t *Table) Entries() []*Entry {
	out := make([]*Entry, len(t.order))
	for i, k := range t.order {
		out[i] = t.entries[k]
	}
	return out
}

// Categories counts labels per prefix, the part before ':' ("GUI", "NAME").
func (t *Table) Categories() map[string]int {
	out := make(map[string]int)
	for _, e := range t.Entries() {
		cat := e.Label
		if i := strings.IndexByte(cat, ':'); i >= 0 {
			cat = cat[:i]
		}
		out[strings.ToUpper(cat)]++
	}
	return out
}

// CategoryNames returns Categories' keys sorted.
func (t *Table) CategoryNames() []string {
	cats := t.Categories()
	out := make([]string, 0, len(cats))
	for k := range cats {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Package ini reads the game's rules, art and map text files: sections of
// key=value lines with ';' comments. Section and key names are matched
// case-insensitively, lines that are not assignments are skipped and the
// last assignment of a key wins.
package ini

import (
	"strings"

	"github.com/1siamBot/ra2view/engine/binio"
	goini "gopkg.in/ini.v1"
)

var loadOptions = goini.LoadOptions{
	Insensitive:             true,
	SkipUnrecognizableLines: true,
	PreserveSurroundedQuote: true,
	IgnoreContinuation:      true,
	KeyValueDelimiters:      "=",
}

// File is a parsed text config.
type File struct {
	name string
	f    *goini.File
}

// Parse reads a config from memory.
func Parse(name string, data []byte) (*File, error) {
	f, err := goini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, binio.Formatf(name, 0, "%v", err)
	}
	return &File{name: name, f: f}, nil
}

// Empty returns a config with no sections, a base for Merge.
func Empty(name string) *File {
	return &File{name: name, f: goini.Empty(loadOptions)}
}

func (f *File) Name() string { return f.name }

// Sections lists section names in file order, lower-cased.
func (f *File) Sections() []string {
	var out []string
	for _, s := range f.f.SectionStrings() {
		if strings.EqualFold(s, goini.DefaultSection) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (f *File) Has(section string) bool { return f.f.HasSection(section) }

// Section returns the named section or nil.
func (f *File) Section(name string) *Section {
	s, err := f.f.GetSection(name)
	if err != nil {
		return nil
	}
	return &Section{s: s}
}

func (f *File) key(section, key string) *goini.Key {
	s, err := f.f.GetSection(section)
	if err != nil || !s.HasKey(key) {
		return nil
	}
	return s.Key(key)
}

// Get returns a raw value.
func (f *File) Get(section, key string) (string, bool) {
	k := f.key(section, key)
	if k == nil {
		return "", false
	}
	return k.String(), true
}

// GetString returns the value or def when absent.
func (f *File) GetString(section, key, def string) string {
	if v, ok := f.Get(section, key); ok {
		return v
	}
	return def
}

func (f *File) GetInt(section, key string, def int) int {
	if k := f.key(section, key); k != nil {
		return k.MustInt(def)
	}
	return def
}

func (f *File) GetBool(section, key string, def bool) bool {
	if k := f.key(section, key); k != nil {
		return k.MustBool(def)
	}
	return def
}

func (f *File) GetFloat(section, key string, def float64) float64 {
	if k := f.key(section, key); k != nil {
		return k.MustFloat64(def)
	}
	return def
}

// GetList splits a comma separated value, trimming each item.
func (f *File) GetList(section, key string) []string {
	if k := f.key(section, key); k != nil {
		return k.Strings(",")
	}
	return nil
}

// Keys lists a section's keys in file order.
func (f *File) Keys(section string) []string {
	if s := f.Section(section); s != nil {
		return s.Keys()
	}
	return nil
}

// Merge copies every assignment of other into f; other's values override.
func (f *File) Merge(other *File) {
	for _, name := range other.Sections() {
		src := other.f.Section(name)
		dst := f.f.Section(name)
		for _, k := range src.Keys() {
			dst.Key(k.Name()).SetValue(k.String())
		}
	}
}

// Section is one [name] block.
type Section struct {
	s *goini.Section
}

func (s *Section) Name() string { return s.s.Name() }

func (s *Section) Keys() []string { return s.s.KeyStrings() }

func (s *Section) Has(key string) bool { return s.s.HasKey(key) }

func (s *Section) Get(key string) (string, bool) {
	if !s.s.HasKey(key) {
		return "", false
	}
	return s.s.Key(key).String(), true
}

// Map returns every assignment of the section.
func (s *Section) Map() map[string]string { return s.s.KeysHash() }

// Values returns the values in key order, the layout of numbered lists
// such as [IsoMapPack5] or [VehicleTypes].
func (s *Section) Values() []string {
	keys := s.s.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

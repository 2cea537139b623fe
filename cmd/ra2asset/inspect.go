package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/1siamBot/ra2view/engine/assets"
	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/export"
	"github.com/1siamBot/ra2view/engine/mix"
	"github.com/1siamBot/ra2view/engine/vxl"
	"github.com/pkg/errors"
)

// archive opens name from disk when such a file exists, else from the
// mounted set.
func (s *session) archive(name string) (*mix.Archive, error) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return mix.OpenFile(name)
	}
	return s.loader.Archive(name)
}

func (s *session) list(w io.Writer, name string) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	defer tw.Flush()
	if name == "" {
		for i, a := range s.res.Archives() {
			fmt.Fprintf(tw, "%d\t%s\t%d entries\n", i, a.Name(), a.Len())
		}
		return nil
	}
	a, err := s.archive(name)
	if err != nil {
		return err
	}
	defer a.Close()
	for _, e := range a.Entries() {
		fmt.Fprintf(tw, "%08X\t%d\t%d\t%s\n", e.ID, e.Offset, e.Size, e.Name)
	}
	return nil
}

func describe(w io.Writer, a assets.Asset) {
	fmt.Fprintf(w, "%s: %s\n", a.Name(), a.Kind())
	switch v := a.(type) {
	case *assets.Sprite:
		sp := v.Sprite
		valid := 0
		for _, ok := range sp.Valid() {
			if ok {
				valid++
			}
		}
		fmt.Fprintf(w, "  %dx%d, %d frames, %d decode\n", sp.Width, sp.Height, sp.Len(), valid)
	case *assets.Tiles:
		sh := v.Sheet
		fmt.Fprintf(w, "  %dx%d cells of %dx%d, %d present, bounds %v\n",
			sh.Cols, sh.Rows, sh.Geom.W, sh.Geom.H, len(sh.Tiles()), sh.Bounds())
	case *assets.Archive:
		ar := v.Archive
		fmt.Fprintf(w, "  %d entries, body %d bytes, encrypted %t, classic %t\n",
			ar.Len(), ar.BodySize(), ar.Encrypted(), ar.Classic())
		if _, ok := ar.Checksum(); ok {
			fmt.Fprintf(w, "  checksum: %v\n", errString(ar.VerifyChecksum()))
		}
	case *assets.Voxel:
		for _, part := range []*vxl.Model{v.Model, v.Turret, v.Barrel} {
			if part == nil {
				continue
			}
			fmt.Fprintf(w, "  %s: %d sections, %d frames\n", part.Name(), len(part.Body.Sections), part.Frames())
			for _, sec := range part.Body.Sections {
				x, y, z := sec.Size()
				fmt.Fprintf(w, "    %s %dx%dx%d, %d voxels\n", sec.Name, x, y, z, len(sec.Voxels))
			}
		}
	case *assets.Motion:
		fmt.Fprintf(w, "  %d frames, sections %s\n", v.Motion.Frames, strings.Join(v.Motion.SectionNames, ", "))
	case *assets.Map:
		m := v.Map
		fmt.Fprintf(w, "  %q by %q, theater %s\n", m.Name, m.Author, m.Theater)
		fmt.Fprintf(w, "  size %v, local %v, %d cells, %d players\n", m.Size, m.LocalSize, len(m.Cells), m.MaxPlayers)
	case *assets.Strings:
		t := v.Table
		fmt.Fprintf(w, "  %s, %d labels\n", t.Header.Language, t.Len())
		for _, c := range t.CategoryNames() {
			fmt.Fprintf(w, "  %s: %d\n", c, t.Categories()[c])
		}
	case *assets.AudioIndex:
		fmt.Fprintf(w, "  version %d, %d samples, bag attached %t\n", v.Bank.Version, len(v.Bank.Samples), v.Attached)
	case *assets.AudioBag:
		fmt.Fprintf(w, "  %d bytes\n", len(v.Data))
	case *assets.Config:
		fmt.Fprintf(w, "  %d sections\n", len(v.File.Sections()))
	}
}

func errString(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}

func (s *session) printINI(w io.Writer, name, section, key string) error {
	a, err := s.loader.Load(name)
	if err != nil {
		return err
	}
	cfg, ok := a.(*assets.Config)
	if !ok {
		return errors.Errorf("%s is a %s, not a config file", a.Name(), a.Kind())
	}
	f := cfg.File
	switch {
	case section == "":
		for _, sec := range f.Sections() {
			fmt.Fprintln(w, sec)
		}
	case key == "":
		sec := f.Section(section)
		if sec == nil {
			return binio.NotFound(name, "["+section+"]")
		}
		for _, k := range sec.Keys() {
			v, _ := sec.Get(k)
			fmt.Fprintf(w, "%s=%s\n", k, v)
		}
	default:
		v, ok := f.Get(section, key)
		if !ok {
			return binio.NotFound(name, section+"."+key)
		}
		fmt.Fprintln(w, v)
	}
	return nil
}

func (s *session) printCSF(w io.Writer, name, label string) error {
	a, err := s.loader.Load(name)
	if err != nil {
		return err
	}
	st, ok := a.(*assets.Strings)
	if !ok {
		return errors.Errorf("%s is a %s, not a string table", a.Name(), a.Kind())
	}
	if label != "" {
		e, err := st.Table.Get(label)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, e.Value)
		return nil
	}
	for _, e := range st.Table.Entries() {
		fmt.Fprintf(w, "%s\t%q\n", e.Label, e.Value)
	}
	return nil
}

func (s *session) exportMap(name, jsonPath, previewPath string) error {
	a, err := s.loader.Load(name)
	if err != nil {
		return err
	}
	m, ok := a.(*assets.Map)
	if !ok {
		return errors.Errorf("%s is a %s, not a map", a.Name(), a.Kind())
	}
	if jsonPath != "" {
		if err := m.Map.SaveJSON(jsonPath); err != nil {
			return err
		}
	}
	if previewPath != "" {
		c, err := m.Map.Preview()
		if err != nil {
			return err
		}
		return export.Save(previewPath, c.Image(false))
	}
	return nil
}

package main

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/1siamBot/ra2view/engine/assets"
	"github.com/1siamBot/ra2view/engine/export"
	"github.com/1siamBot/ra2view/engine/mix"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type dumpStats struct {
	Written, Converted, Failed int64
}

// dump extracts every entry of an archive into dir. Entries without a
// known name are written as <ID>.bin. Entries that fail to read or convert
// are counted and skipped; a write failure stops the run.
func (s *session) dump(ctx context.Context, name, dir string, convert bool) (dumpStats, error) {
	var st dumpStats
	a, err := s.archive(name)
	if err != nil {
		return st, err
	}
	defer a.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	entries := make(chan mix.Entry)
	g.Go(func() error {
		defer close(entries)
		for _, e := range a.Entries() {
			select {
			case entries <- e:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	pal := s.palette()
	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			for e := range entries {
				out := e.Name
				if out == "" {
					out = e.String() + ".bin"
				}
				data, err := a.ExtractEntry(e)
				if err != nil {
					log.WithError(err).WithField("entry", e.String()).Warn("ra2asset: entry skipped")
					atomic.AddInt64(&st.Failed, 1)
					continue
				}
				if err := writeFile(filepath.Join(dir, out), data); err != nil {
					return err
				}
				atomic.AddInt64(&st.Written, 1)
				if !convert || e.Name == "" {
					continue
				}
				asset, err := assets.Decode(e.Name, data, nil)
				if err != nil {
					atomic.AddInt64(&st.Failed, 1)
					continue
				}
				img, err := render(asset, pal, renderOptions{Sheet: true, Cols: 8})
				if err != nil {
					continue
				}
				png := strings.TrimSuffix(out, filepath.Ext(out)) + ".png"
				if err := export.Save(filepath.Join(dir, png), img); err != nil {
					return err
				}
				atomic.AddInt64(&st.Converted, 1)
			}
			return nil
		})
	}
	err = g.Wait()
	return st, err
}

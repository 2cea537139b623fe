package assets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1siamBot/ra2view/engine/config"
	"github.com/1siamBot/ra2view/engine/mix"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Layout names the archives of a game install, each list in mount order
// (later entries shadow earlier ones).
type Layout struct {
	Dir        string
	Archives   []string // top-level files in Dir
	Nested     []string // archives inside Archives
	Expansions string   // glob in Dir mounted last, shadowing everything
}

// MountGame opens the top-level archives of an install and mounts the
// nested ones they contain. File names match case-insensitively and
// missing archives are skipped. It returns the number of archives mounted.
func MountGame(res *mix.Resolver, l Layout) (int, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return 0, errors.Wrap(err, "assets: game dir")
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files[strings.ToLower(e.Name())] = filepath.Join(l.Dir, e.Name())
		}
	}

	n, err := mountFiles(res, files, l.Archives)
	if err != nil {
		return n, err
	}
	m, err := res.MountAll(l.Nested)
	n += m
	if err != nil {
		return n, err
	}
	if l.Expansions != "" {
		var extra []string
		for lower := range files {
			if ok, _ := filepath.Match(strings.ToLower(l.Expansions), lower); ok {
				extra = append(extra, lower)
			}
		}
		sort.Strings(extra)
		m, err = mountFiles(res, files, extra)
		n += m
		if err != nil {
			return n, err
		}
	}
	log.WithFields(log.Fields{"dir": l.Dir, "archives": n}).Info("assets: game mounted")
	return n, nil
}

// mountFiles opens and mounts names in order. With a files map, names are
// looked up in it and missing ones skipped; without one they are paths.
func mountFiles(res *mix.Resolver, files map[string]string, names []string) (int, error) {
	n := 0
	for _, name := range names {
		path := name
		if files != nil {
			var ok bool
			if path, ok = files[strings.ToLower(name)]; !ok {
				log.WithField("archive", name).Debug("assets: not installed, skipped")
				continue
			}
		}
		a, err := mix.OpenFile(path)
		if err != nil {
			return n, err
		}
		if err := res.Mount(a); err != nil {
			a.Close()
			return n, err
		}
		n++
	}
	return n, nil
}

// Open mounts the install described by cfg, then each extra archive file
// on top, and returns a loader over the result. A game directory that
// cannot be read is logged and left unmounted so loose files and extra
// archives still work.
func Open(cfg *config.Config, extra ...string) (*Loader, error) {
	res := mix.NewResolver()
	if _, err := MountGame(res, Layout{
		Dir:        cfg.GameDir,
		Archives:   cfg.Archives,
		Nested:     cfg.Nested,
		Expansions: cfg.Expansions,
	}); err != nil {
		log.WithError(err).Warn("assets: game archives not mounted")
	}
	if _, err := mountFiles(res, nil, extra); err != nil {
		res.Close()
		return nil, err
	}
	opts := []LoaderOption{WithCacheSize(cfg.CacheBytes)}
	if cfg.LooseDir != "" {
		opts = append(opts, WithDir(cfg.LooseDir))
	}
	l, err := NewLoader(res, opts...)
	if err != nil {
		res.Close()
		return nil, err
	}
	return l, nil
}

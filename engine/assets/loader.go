package assets

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/mix"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/shp"
	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheBytes bounds the decoded-asset cache when no size is given.
const DefaultCacheBytes = 256 << 20

// Loader reads files from a loose directory and a mounted archive set and
// caches what it decodes.
//
// Cache keys hash the lower-cased name together with the resolved bytes, so
// mounting a patch archive that shadows a file never serves the stale
// decode. Concurrent loads of the same key share one decode.
type Loader struct {
	res   *mix.Resolver
	dir   string
	mu    sync.RWMutex
	loose map[string]string // lower-case name -> path

	cache *ristretto.Cache[uint64, Asset]
	group singleflight.Group
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	dir       string
	cacheSize int64
}

// WithDir searches dir for loose files before the archives.
func WithDir(dir string) LoaderOption {
	return func(c *loaderConfig) { c.dir = dir }
}

// WithCacheSize bounds the cache by the summed byte size of decoded files.
func WithCacheSize(n int64) LoaderOption {
	return func(c *loaderConfig) { c.cacheSize = n }
}

func NewLoader(res *mix.Resolver, opts ...LoaderOption) (*Loader, error) {
	cfg := loaderConfig{cacheSize: DefaultCacheBytes}
	for _, o := range opts {
		o(&cfg)
	}
	if res == nil {
		res = mix.NewResolver()
	}
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, Asset]{
		NumCounters: 1e5,
		MaxCost:     cfg.cacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "assets: cache")
	}
	l := &Loader{res: res, dir: cfg.dir, cache: cache}
	if cfg.dir != "" {
		if err := l.Rescan(); err != nil {
			cache.Close()
			return nil, err
		}
	}
	return l, nil
}

func (l *Loader) Resolver() *mix.Resolver { return l.res }

// Rescan re-reads the loose directory listing.
func (l *Loader) Rescan() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return errors.Wrap(err, "assets: scan loose files")
	}
	loose := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		loose[strings.ToLower(e.Name())] = filepath.Join(l.dir, e.Name())
	}
	l.mu.Lock()
	l.loose = loose
	l.mu.Unlock()
	return nil
}

// LoosePath returns the on-disk path of a loose file.
func (l *Loader) LoosePath(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.loose[strings.ToLower(name)]
	return p, ok
}

// Read returns the raw bytes of name, loose files first.
func (l *Loader) Read(name string) ([]byte, error) {
	if p, ok := l.LoosePath(name); ok {
		data, err := os.ReadFile(p)
		return data, errors.Wrapf(err, "assets: read %s", p)
	}
	return l.res.Extract(name)
}

// Has reports whether name can be read.
func (l *Loader) Has(name string) bool {
	if _, ok := l.LoosePath(name); ok {
		return true
	}
	return l.res.Has(name)
}

func cacheKey(name string, data []byte) uint64 {
	d := xxhash.New()
	d.WriteString(strings.ToLower(name))
	d.Write([]byte{0})
	d.Write(data)
	return d.Sum64()
}

// Load reads and decodes name, serving repeated requests from the cache.
func (l *Loader) Load(name string) (Asset, error) {
	data, err := l.Read(name)
	if err != nil {
		return nil, err
	}
	key := cacheKey(name, data)
	if a, ok := l.cache.Get(key); ok {
		return a, nil
	}
	v, err, shared := l.group.Do(strconv.FormatUint(key, 16), func() (interface{}, error) {
		if a, ok := l.cache.Get(key); ok {
			return a, nil
		}
		a, err := Decode(name, data, l.Read)
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, a, int64(len(data))+1)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.WithField("asset", name).Debug("assets: shared decode")
	}
	return v.(Asset), nil
}

func wrongKind(a Asset, want Kind) error {
	return binio.Formatf(a.Name(), 0, "is a %s, not a %s", a.Kind(), want)
}

// Palette loads a palette by name.
func (l *Loader) Palette(name string) (*palette.Palette, error) {
	a, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	p, ok := a.(*Palette)
	if !ok {
		return nil, wrongKind(a, KindPalette)
	}
	return p.Palette, nil
}

// Sprite loads a sprite by name.
func (l *Loader) Sprite(name string) (*shp.Sprite, error) {
	a, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	s, ok := a.(*Sprite)
	if !ok {
		return nil, wrongKind(a, KindSprite)
	}
	return s.Sprite, nil
}

// Archive opens a nested archive by name without mounting it.
func (l *Loader) Archive(name string) (*mix.Archive, error) {
	a, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	ar, ok := a.(*Archive)
	if !ok {
		return nil, wrongKind(a, KindArchive)
	}
	return ar.Archive, nil
}

// Voxel loads a voxel with its paired motion and sub-parts.
func (l *Loader) Voxel(name string) (*Voxel, error) {
	a, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	v, ok := a.(*Voxel)
	if !ok {
		return nil, wrongKind(a, KindVoxel)
	}
	return v, nil
}

// Wait blocks until pending cache writes are visible.
func (l *Loader) Wait() { l.cache.Wait() }

// Close drops the cache. The resolver is left to its owner.
func (l *Loader) Close() {
	l.cache.Close()
}

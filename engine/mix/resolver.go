package mix

import (
	"sync"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Lookup searches archives in order and returns the first that holds name.
func Lookup(archives []*Archive, name string) (*Archive, Entry, error) {
	for _, a := range archives {
		if e, err := a.Resolve(name); err == nil {
			return a, e, nil
		}
	}
	return nil, Entry{}, binio.NotFound("", name)
}

// Resolver is an ordered set of mounted archives. The most recently
// mounted archive is searched first, so patch archives shadow base ones.
type Resolver struct {
	mu      sync.RWMutex
	mounts  []*Archive
	mounted map[identity]string
}

func NewResolver() *Resolver {
	return &Resolver{mounted: make(map[identity]string)}
}

// Mount puts a in front of every archive mounted so far. Mounting the same
// byte range twice is reported as a cycle.
func (r *Resolver) Mount(a *Archive) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.mounted[a.key]; ok {
		return binio.Formatf(a.name, a.key.base, "archive cycle: already mounted as %s", prev)
	}
	r.mounted[a.key] = a.name
	r.mounts = append([]*Archive{a}, r.mounts...)
	log.WithFields(log.Fields{"archive": a.name, "depth": len(r.mounts)}).Debug("mix: mounted")
	return nil
}

// Archives returns the search order, most recent first.
func (r *Resolver) Archives() []*Archive {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Archive, len(r.mounts))
	copy(out, r.mounts)
	return out
}

func (r *Resolver) Resolve(name string) (*Archive, Entry, error) {
	return Lookup(r.Archives(), name)
}

func (r *Resolver) Has(name string) bool {
	_, _, err := r.Resolve(name)
	return err == nil
}

// Extract returns the bytes of name from the first archive holding it.
func (r *Resolver) Extract(name string) ([]byte, error) {
	a, e, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return a.ExtractEntry(e)
}

// MountNested finds name in the mounted archives, opens it as an archive
// and mounts it.
func (r *Resolver) MountNested(name string) (*Archive, error) {
	parent, _, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	child, err := parent.OpenNested(name)
	if err != nil {
		return nil, errors.Wrapf(err, "mix: open %s inside %s", name, parent.name)
	}
	if err := r.Mount(child); err != nil {
		return nil, err
	}
	return child, nil
}

// MountAll mounts each named nested archive in order. Names no mounted
// archive holds are skipped; any other failure stops the walk.
func (r *Resolver) MountAll(names []string) (int, error) {
	n := 0
	for _, name := range names {
		if _, err := r.MountNested(name); err != nil {
			if errors.Is(err, binio.ErrNotFound) {
				log.WithField("archive", name).Debug("mix: not present, skipped")
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// Close closes every mounted archive and empties the resolver.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for _, a := range r.mounts {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.mounts = nil
	r.mounted = make(map[identity]string)
	return first
}

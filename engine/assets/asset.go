package assets

import (
	"github.com/1siamBot/ra2view/engine/audio"
	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/csf"
	"github.com/1siamBot/ra2view/engine/ini"
	"github.com/1siamBot/ra2view/engine/maplib"
	"github.com/1siamBot/ra2view/engine/mix"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/render3d"
	"github.com/1siamBot/ra2view/engine/shp"
	"github.com/1siamBot/ra2view/engine/tmp"
	"github.com/1siamBot/ra2view/engine/vxl"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Asset is a decoded file. The concrete type is fixed by Kind.
type Asset interface {
	Kind() Kind
	Name() string
}

type Palette struct{ Palette *palette.Palette }

func (a *Palette) Kind() Kind   { return KindPalette }
func (a *Palette) Name() string { return a.Palette.Name() }

type Sprite struct{ Sprite *shp.Sprite }

func (a *Sprite) Kind() Kind   { return KindSprite }
func (a *Sprite) Name() string { return a.Sprite.Name }

type Tiles struct{ Sheet *tmp.Sheet }

func (a *Tiles) Kind() Kind   { return KindTiles }
func (a *Tiles) Name() string { return a.Sheet.Name }

type Archive struct{ Archive *mix.Archive }

func (a *Archive) Kind() Kind   { return KindArchive }
func (a *Archive) Name() string { return a.Archive.Name() }

// Voxel is a body with its motion and the optional turret and barrel
// parts loaded from <name>tur.vxl and <name>barl.vxl.
type Voxel struct {
	Model  *vxl.Model
	Turret *vxl.Model
	Barrel *vxl.Model
}

func (a *Voxel) Kind() Kind   { return KindVoxel }
func (a *Voxel) Name() string { return a.Model.Name() }

// Mesh composites every part for frame.
func (a *Voxel) Mesh(frame int, pal *palette.Palette) (*render3d.Mesh, error) {
	return vxl.Composite(frame, pal, a.Model, a.Turret, a.Barrel)
}

type Motion struct{ Motion *vxl.Motion }

func (a *Motion) Kind() Kind   { return KindMotion }
func (a *Motion) Name() string { return a.Motion.Name }

type Map struct{ Map *maplib.TileMap }

func (a *Map) Kind() Kind   { return KindMap }
func (a *Map) Name() string { return a.Map.Name }

type Strings struct{ Table *csf.Table }

func (a *Strings) Kind() Kind   { return KindStrings }
func (a *Strings) Name() string { return a.Table.Name }

// AudioIndex is a sample bank, attached to its bag when one was found.
type AudioIndex struct {
	Bank     *audio.Bank
	Attached bool
}

func (a *AudioIndex) Kind() Kind   { return KindAudioIndex }
func (a *AudioIndex) Name() string { return a.Bank.Name }

// AudioBag is raw sample storage; it has no structure without its index.
type AudioBag struct {
	name string
	Data []byte
}

func (a *AudioBag) Kind() Kind   { return KindAudioBag }
func (a *AudioBag) Name() string { return a.name }

type Config struct{ File *ini.File }

func (a *Config) Kind() Kind   { return KindConfig }
func (a *Config) Name() string { return a.File.Name() }

// Sibling fetches a companion file by name. It returns a NotFoundError when
// the file does not exist.
type Sibling func(name string) ([]byte, error)

// Decode runs the decoder selected by name's extension. sibling, when not
// nil, supplies paired files: motion and sub-parts for voxels, the bag for
// an audio index.
func Decode(name string, data []byte, sibling Sibling) (Asset, error) {
	switch KindOf(name) {
	case KindPalette:
		p, err := palette.Decode(name, data)
		if err != nil {
			return nil, err
		}
		return &Palette{p}, nil
	case KindSprite:
		s, err := shp.Decode(name, data)
		if err != nil {
			return nil, err
		}
		return &Sprite{s}, nil
	case KindTiles:
		s, err := tmp.Decode(name, data)
		if err != nil {
			return nil, err
		}
		return &Tiles{s}, nil
	case KindArchive:
		a, err := mix.OpenBytes(name, data)
		if err != nil {
			return nil, err
		}
		return &Archive{a}, nil
	case KindVoxel:
		return decodeVoxel(name, data, sibling)
	case KindMotion:
		m, err := vxl.DecodeMotion(name, data)
		if err != nil {
			return nil, err
		}
		return &Motion{m}, nil
	case KindMap:
		m, err := maplib.Decode(name, data)
		if err != nil {
			return nil, err
		}
		return &Map{m}, nil
	case KindStrings:
		t, err := csf.Decode(name, data)
		if err != nil {
			return nil, err
		}
		return &Strings{t}, nil
	case KindAudioIndex:
		return decodeAudioIndex(name, data, sibling)
	case KindAudioBag:
		return &AudioBag{name: name, Data: data}, nil
	case KindConfig:
		f, err := ini.Parse(name, data)
		if err != nil {
			return nil, err
		}
		return &Config{f}, nil
	}
	return nil, binio.Formatf(name, 0, "no decoder for this extension")
}

// fetch returns nil data without error when the sibling does not exist.
func fetch(sibling Sibling, name string) ([]byte, error) {
	if sibling == nil {
		return nil, nil
	}
	data, err := sibling(name)
	if errors.Is(err, binio.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

func loadModel(name string, data []byte, sibling Sibling) (*vxl.Model, error) {
	body, err := vxl.Decode(name, data)
	if err != nil {
		return nil, err
	}
	hvaName := swapExt(name, ".hva")
	hva, err := fetch(sibling, hvaName)
	if err != nil {
		return nil, err
	}
	var motion *vxl.Motion
	if hva != nil {
		if motion, err = vxl.DecodeMotion(hvaName, hva); err != nil {
			return nil, err
		}
	} else {
		log.WithField("asset", name).Debug("assets: voxel without motion")
	}
	return vxl.NewModel(body, motion)
}

func decodeVoxel(name string, data []byte, sibling Sibling) (Asset, error) {
	m, err := loadModel(name, data, sibling)
	if err != nil {
		return nil, err
	}
	v := &Voxel{Model: m}
	parts := []struct {
		suffix string
		dst    **vxl.Model
	}{{"tur", &v.Turret}, {"barl", &v.Barrel}}
	for _, p := range parts {
		partName := swapExt(name, p.suffix+".vxl")
		partData, err := fetch(sibling, partName)
		if err != nil {
			return nil, err
		}
		if partData == nil {
			continue
		}
		if *p.dst, err = loadModel(partName, partData, sibling); err != nil {
			return nil, errors.Wrapf(err, "%s part of %s", p.suffix, name)
		}
	}
	return v, nil
}

func decodeAudioIndex(name string, data []byte, sibling Sibling) (Asset, error) {
	b, err := audio.DecodeIndex(name, data)
	if err != nil {
		return nil, err
	}
	bagName := swapExt(name, ".bag")
	bag, err := fetch(sibling, bagName)
	if err != nil {
		return nil, err
	}
	if bag == nil {
		return &AudioIndex{Bank: b}, nil
	}
	if err := b.Attach(bagName, bag); err != nil {
		return nil, err
	}
	return &AudioIndex{Bank: b, Attached: true}, nil
}

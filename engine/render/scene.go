// Package render prepares decoded assets for the interactive viewer: a
// stepping frame source per asset and a pan/zoom camera.
package render

import (
	"image"
	"sync"

	"github.com/1siamBot/ra2view/engine/assets"
	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/export"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/render3d"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// VoxelScale is the pixel size of one voxel unit in voxel scenes.
const VoxelScale = 4

// Scene is a steppable sequence of images drawn from one asset. Rendered
// frames are kept until the palette changes.
type Scene struct {
	asset   assets.Asset
	pal     *palette.Palette
	frames  int
	current int
	yaw     float32

	mu    sync.Mutex
	cache map[int]image.Image
}

// NewScene wraps a. Sprites step through their frames, tile sets through
// the whole sheet and then each tile, voxels through their motion.
func NewScene(a assets.Asset, pal *palette.Palette) (*Scene, error) {
	if pal == nil {
		pal = palette.Grayscale()
	}
	s := &Scene{asset: a, pal: pal, frames: 1, yaw: render3d.DefaultYaw, cache: make(map[int]image.Image)}
	switch v := a.(type) {
	case *assets.Sprite:
		s.frames = v.Sprite.Len()
	case *assets.Tiles:
		s.frames = 1 + len(v.Sheet.Tiles())
	case *assets.Voxel:
		s.frames = v.Model.Frames()
	case *assets.Palette, *assets.Map:
	default:
		return nil, errors.Wrapf(binio.ErrFormat, "%s: a %s cannot be viewed", a.Name(), a.Kind())
	}
	if s.frames == 0 {
		return nil, binio.Formatf(a.Name(), 0, "nothing to show")
	}
	return s, nil
}

func (s *Scene) Name() string   { return s.asset.Name() }
func (s *Scene) Frames() int    { return s.frames }
func (s *Scene) Current() int   { return s.current }
func (s *Scene) Animated() bool { return s.frames > 1 }

// Step moves d frames, wrapping at both ends.
func (s *Scene) Step(d int) {
	s.current = ((s.current+d)%s.frames + s.frames) % s.frames
}

// SetPalette switches palettes and drops rendered frames.
func (s *Scene) SetPalette(p *palette.Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pal = p
	s.cache = make(map[int]image.Image)
}

// Rotate turns voxel scenes about their vertical axis.
func (s *Scene) Rotate(d float32) {
	if _, ok := s.asset.(*assets.Voxel); !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.yaw += d
	s.cache = make(map[int]image.Image)
}

// Image renders the current frame.
func (s *Scene) Image() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.cache[s.current]; ok {
		return img, nil
	}
	img, err := s.render(s.current)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"asset": s.Name(), "frame": s.current}).Debug("render: frame failed")
		return nil, err
	}
	s.cache[s.current] = img
	return img, nil
}

func (s *Scene) render(i int) (image.Image, error) {
	switch v := s.asset.(type) {
	case *assets.Palette:
		return export.Swatch(v.Palette, 16), nil
	case *assets.Sprite:
		c, err := v.Sprite.Frame(i, s.pal, false)
		if err != nil {
			return nil, err
		}
		return c.Image(true), nil
	case *assets.Tiles:
		if i == 0 {
			c, err := v.Sheet.Image(s.pal)
			if err != nil {
				return nil, err
			}
			return c.Image(true), nil
		}
		c, err := v.Sheet.Tiles()[i-1].Image(s.pal)
		if err != nil {
			return nil, err
		}
		return c.Image(true), nil
	case *assets.Map:
		c, err := v.Map.Preview()
		if err != nil {
			return nil, err
		}
		return c.Image(false), nil
	case *assets.Voxel:
		m, err := v.Mesh(i, s.pal)
		if err != nil {
			return nil, err
		}
		return render3d.Render(m, render3d.View(s.yaw, render3d.DefaultTilt), VoxelScale).Image(true), nil
	}
	return nil, binio.Formatf(s.Name(), 0, "cannot render a %s", s.asset.Kind())
}

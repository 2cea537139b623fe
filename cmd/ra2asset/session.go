package main

import (
	"image"

	"github.com/1siamBot/ra2view/engine/assets"
	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/config"
	"github.com/1siamBot/ra2view/engine/export"
	"github.com/1siamBot/ra2view/engine/mix"
	"github.com/1siamBot/ra2view/engine/palette"
	enginerender "github.com/1siamBot/ra2view/engine/render"
	"github.com/1siamBot/ra2view/engine/render3d"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// session is the mounted game shared by every command of one run.
type session struct {
	cfg    *config.Config
	res    *mix.Resolver
	loader *assets.Loader
}

func (s *session) open(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("game") {
		cfg.GameDir = c.String("game")
	}
	if c.IsSet("loose") {
		cfg.LooseDir = c.String("loose")
	}
	if c.IsSet("palette") {
		cfg.Palette = c.String("palette")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Log.Setup(); err != nil {
		return err
	}
	s.cfg = cfg

	s.loader, err = assets.Open(cfg, c.StringSlice("mix")...)
	if err != nil {
		return err
	}
	s.res = s.loader.Resolver()
	return nil
}

func (s *session) close() {
	if s.loader != nil {
		s.loader.Close()
	}
	if s.res != nil {
		s.res.Close()
	}
}

// palette returns the configured palette, grayscale when it cannot load.
func (s *session) palette() *palette.Palette {
	p, err := s.loader.Palette(s.cfg.Palette)
	if err != nil {
		log.WithError(err).WithField("palette", s.cfg.Palette).Warn("ra2asset: using grayscale")
		return palette.Grayscale()
	}
	return p
}

// renderOptions selects what render draws for multi-frame assets.
type renderOptions struct {
	Frame int
	Sheet bool
	Cols  int
}

// render turns a decoded asset into a picture. Voxels are drawn from the
// in-game view angle.
func render(a assets.Asset, pal *palette.Palette, o renderOptions) (image.Image, error) {
	switch v := a.(type) {
	case *assets.Palette:
		return export.Swatch(v.Palette, 16), nil
	case *assets.Sprite:
		if o.Sheet {
			c, failed, err := v.Sprite.Sheet(pal, o.Cols)
			if err != nil {
				return nil, err
			}
			if failed > 0 {
				log.WithFields(log.Fields{"asset": a.Name(), "failed": failed}).Warn("ra2asset: frames left blank")
			}
			return c.Image(true), nil
		}
		c, err := v.Sprite.Frame(o.Frame, pal, false)
		if err != nil {
			return nil, err
		}
		return c.Image(true), nil
	case *assets.Tiles:
		c, err := v.Sheet.Image(pal)
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
		m, err := v.Mesh(o.Frame, pal)
		if err != nil {
			return nil, err
		}
		view := render3d.View(render3d.DefaultYaw, render3d.DefaultTilt)
		return render3d.Render(m, view, enginerender.VoxelScale).Image(true), nil
	}
	return nil, errors.Wrapf(binio.ErrFormat, "%s: a %s has no image form", a.Name(), a.Kind())
}

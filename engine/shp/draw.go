package shp

import (
	"fmt"
	"image"
	"image/color"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/zbuf"
)

func frameName(i int) string { return fmt.Sprintf("frame %d", i) }

// DrawOptions places a frame on a canvas.
type DrawOptions struct {
	Origin image.Point // canvas position of the sprite's (0,0)
	Z      int32       // paint layer
	FlipY  bool        // mirror rows, for bottom-left origin consumers
}

// Draw paints frame i onto dst. Index 0 becomes the palette's transparent
// marker; the caller decides whether to key it out.
func (s *Sprite) Draw(dst *zbuf.Canvas, i int, pal *palette.Palette, o DrawOptions) error {
	if pal == nil {
		return binio.NotFound(s.Name, "palette")
	}
	pix, err := s.Pixels(i)
	if err != nil {
		return err
	}
	f := s.Frames[i]
	w, h := int(f.Width), int(f.Height)
	for y := 0; y < h; y++ {
		ty := int(f.Y) + y
		if o.FlipY {
			ty = int(f.Y) + h - 1 - y
		}
		row := pix[y*w : (y+1)*w]
		for x, v := range row {
			var c color.RGBA
			if v == 0 {
				c = palette.TransparentMarker
			} else {
				c = pal.At(v)
			}
			dst.Put(c, o.Origin.X+int(f.X)+x, o.Origin.Y+ty, o.Z)
		}
	}
	return nil
}

// Frame renders frame i on a canvas the size of the sprite header.
func (s *Sprite) Frame(i int, pal *palette.Palette, flip bool) (*zbuf.Canvas, error) {
	dst := zbuf.New(s.Width, s.Height)
	if err := s.Draw(dst, i, pal, DrawOptions{FlipY: flip}); err != nil {
		return nil, err
	}
	return dst, nil
}

// anchored draws frame i with its own box placed by at, ignoring the
// frame's offset inside the sprite canvas.
func (s *Sprite) anchored(dst *zbuf.Canvas, i int, pal *palette.Palette, z int32, at func(w, h int) image.Point) error {
	if i < 0 || i >= len(s.Frames) {
		return binio.NotFound(s.Name, frameName(i))
	}
	f := s.Frames[i]
	p := at(int(f.Width), int(f.Height))
	return s.Draw(dst, i, pal, DrawOptions{Origin: p.Sub(image.Pt(int(f.X), int(f.Y))), Z: z})
}

// DrawCentered paints frame i with the frame's centre at (x,y).
func (s *Sprite) DrawCentered(dst *zbuf.Canvas, i int, pal *palette.Palette, x, y int, z int32) error {
	return s.anchored(dst, i, pal, z, func(w, h int) image.Point { return image.Pt(x-w/2, y-h/2) })
}

// DrawTopLeft paints frame i with the frame's top-left corner at (x,y).
func (s *Sprite) DrawTopLeft(dst *zbuf.Canvas, i int, pal *palette.Palette, x, y int, z int32) error {
	return s.anchored(dst, i, pal, z, func(int, int) image.Point { return image.Pt(x, y) })
}

// DrawBottomLeft paints frame i with the frame's bottom-left corner at
// (x,y). Rows keep their order.
func (s *Sprite) DrawBottomLeft(dst *zbuf.Canvas, i int, pal *palette.Palette, x, y int, z int32) error {
	return s.anchored(dst, i, pal, z, func(_, h int) image.Point { return image.Pt(x, y-h) })
}

// Sheet lays every frame out in a grid of cols columns. Frames that fail to
// decode are left blank and counted.
func (s *Sprite) Sheet(pal *palette.Palette, cols int) (*zbuf.Canvas, int, error) {
	if pal == nil {
		return nil, 0, binio.NotFound(s.Name, "palette")
	}
	n := len(s.Frames)
	if cols <= 0 || cols > n {
		cols = n
	}
	if cols == 0 {
		return zbuf.New(0, 0), 0, nil
	}
	rows := (n + cols - 1) / cols
	sheet := zbuf.New(s.Width*cols, s.Height*rows)
	failed := 0
	for i := 0; i < n; i++ {
		origin := image.Pt((i%cols)*s.Width, (i/cols)*s.Height)
		if err := s.Draw(sheet, i, pal, DrawOptions{Origin: origin}); err != nil {
			failed++
		}
	}
	return sheet, failed, nil
}

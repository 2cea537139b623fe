package export

import (
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/shp"
	"github.com/pkg/errors"
)

// SpriteGIF writes every frame of s as an animated GIF, delay in 1/100 s.
// Index 0 is transparent. Frames that fail to decode are left empty.
func SpriteGIF(w io.Writer, s *shp.Sprite, pal *palette.Palette, delay int) (failed int, err error) {
	if pal == nil {
		return 0, binio.NotFound(s.Name, "palette")
	}
	if s.Len() == 0 {
		return 0, binio.Formatf(s.Name, 0, "no frames to animate")
	}
	cp := pal.ColorPalette()
	cp[0] = color.RGBA{}
	anim := &gif.GIF{}
	for i, f := range s.Frames {
		img := image.NewPaletted(image.Rect(0, 0, s.Width, s.Height), cp)
		pix, perr := s.Pixels(i)
		if perr != nil {
			failed++
		} else {
			fw := int(f.Width)
			for y := 0; y < int(f.Height); y++ {
				for x := 0; x < fw; x++ {
					img.SetColorIndex(int(f.X)+x, int(f.Y)+y, pix[y*fw+x])
				}
			}
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	return failed, errors.Wrap(gif.EncodeAll(w, anim), "export: gif")
}

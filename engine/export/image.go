// Package export writes decoded assets out as ordinary image files.
package export

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
)

type Format int

const (
	PNG Format = iota
	BMP
)

// FormatOf picks the encoder from path's extension, PNG when unrecognised.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".bmp") {
		return BMP
	}
	return PNG
}

func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case BMP:
		err = bmp.Encode(w, img)
	default:
		err = png.Encode(w, img)
	}
	return errors.Wrap(err, "export: encode")
}

// Save writes img to path, creating parent directories.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "export: mkdir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "export: create")
	}
	if err := Encode(f, img, FormatOf(path)); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "export: close")
}

// Filter selects the resampling kernel used by Scale.
type Filter int

const (
	Nearest Filter = iota
	Bilinear
	CatmullRom
)

// ParseFilter accepts "nearest", "bilinear" and "catmullrom".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "", "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	case "catmullrom":
		return CatmullRom, nil
	}
	return Nearest, errors.Errorf("export: unknown filter %q", s)
}

func (f Filter) scaler() xdraw.Scaler {
	switch f {
	case Bilinear:
		return xdraw.ApproxBiLinear
	case CatmullRom:
		return xdraw.CatmullRom
	}
	return xdraw.NearestNeighbor
}

// Scale resizes src by factor. Nearest keeps palette art crisp.
func Scale(src image.Image, factor float64, f Filter) *image.RGBA {
	b := src.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	f.scaler().Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// Swatch lays the 256 palette entries out as a 16x16 grid of cell-sized
// squares.
func Swatch(p *palette.Palette, cell int) *image.RGBA {
	if cell < 1 {
		cell = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, 16*cell, 16*cell))
	for i := 0; i < 256; i++ {
		c := p.At(uint8(i))
		r := image.Rect(i%16*cell, i/16*cell, (i%16+1)*cell, (i/16+1)*cell)
		xdraw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, xdraw.Src)
	}
	return img
}

// Paletted converts indexed pixels to an image.Paletted sharing p's colors.
func Paletted(pix []byte, w, h int, p *palette.Palette) (*image.Paletted, error) {
	if len(pix) != w*h {
		return nil, errors.Errorf("export: %d pixels for %dx%d", len(pix), w, h)
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), p.ColorPalette())
	copy(img.Pix, pix)
	return img, nil
}

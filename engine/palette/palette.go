// Package palette decodes Westwood .pal files: 256 RGB triples with 6-bit
// channels, 768 bytes in total.
package palette

import (
	"image/color"

	"github.com/1siamBot/ra2view/engine/binio"
)

// Size is the byte length of a .pal file.
const Size = 256 * 3

// TransparentMarker is what index 0 resolves to. It is an opaque color, not
// alpha; consumers key it out when they need real transparency.
var TransparentMarker = color.RGBA{255, 255, 255, 255}

// Palette is an immutable 256-entry index to RGBA table.
type Palette struct {
	name   string
	colors [256]color.RGBA
}

// Expand6 widens a 6-bit channel to 8 bits with rounding.
func Expand6(v byte) uint8 {
	v &= 0x3f
	return uint8((int(v)*255 + 31) / 63)
}

// Decode parses a 768-byte palette.
func Decode(name string, data []byte) (*Palette, error) {
	if len(data) != Size {
		return nil, binio.Formatf(name, 0, "palette is %d bytes, want %d", len(data), Size)
	}
	p := &Palette{name: name}
	for i := 1; i < 256; i++ {
		p.colors[i] = color.RGBA{
			R: Expand6(data[i*3]),
			G: Expand6(data[i*3+1]),
			B: Expand6(data[i*3+2]),
			A: 255,
		}
	}
	p.colors[0] = TransparentMarker
	return p, nil
}

// FromRGB8 builds a palette from 8-bit triples, the layout voxel files
// embed. Short input leaves the remaining entries black.
func FromRGB8(name string, data []byte) *Palette {
	p := &Palette{name: name}
	for i := 1; i < 256 && i*3+2 < len(data); i++ {
		p.colors[i] = color.RGBA{data[i*3], data[i*3+1], data[i*3+2], 255}
	}
	for i := 1; i < 256; i++ {
		p.colors[i].A = 255
	}
	p.colors[0] = TransparentMarker
	return p
}

// Grayscale is the fallback palette used when no real one is available.
func Grayscale() *Palette {
	p := &Palette{name: "grayscale"}
	for i := 1; i < 256; i++ {
		p.colors[i] = color.RGBA{uint8(i), uint8(i), uint8(i), 255}
	}
	p.colors[0] = TransparentMarker
	return p
}

func (p *Palette) Name() string { return p.name }

// At resolves a color index.
func (p *Palette) At(i uint8) color.RGBA { return p.colors[i] }

// Colors returns a copy of the table.
func (p *Palette) Colors() [256]color.RGBA { return p.colors }

// ColorPalette converts to an image/color palette for paletted image export.
func (p *Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, 256)
	for i, c := range p.colors {
		cp[i] = c
	}
	return cp
}

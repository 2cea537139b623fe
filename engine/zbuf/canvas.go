// Package zbuf is the pixel sink shared by the sprite, tile and map decoders:
// an RGBA canvas with an integer z channel that arbitrates 2D paint order.
package zbuf

import (
	"image"
	"image/color"
	"math"

	"github.com/1siamBot/ra2view/engine/palette"
)

// Unpainted is the z value of a pixel nothing has been drawn on.
const Unpainted = math.MinInt32

// Canvas is a W×H RGBA buffer with a z value per pixel.
type Canvas struct {
	W, H int
	Pix  []color.RGBA
	Z    []int32
}

func New(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{W: w, H: h, Pix: make([]color.RGBA, w*h), Z: make([]int32, w*h)}
	c.Clear()
	return c
}

// Clear resets every pixel to unpainted.
func (c *Canvas) Clear() {
	for i := range c.Z {
		c.Z[i] = Unpainted
		c.Pix[i] = color.RGBA{}
	}
}

func (c *Canvas) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.W && y < c.H
}

// Put paints col at (x,y) unless a higher z is already there.
// Writes outside the canvas are dropped.
func (c *Canvas) Put(col color.RGBA, x, y int, z int32) bool {
	if !c.InBounds(x, y) {
		return false
	}
	i := y*c.W + x
	if z < c.Z[i] {
		return false
	}
	c.Pix[i] = col
	c.Z[i] = z
	return true
}

func (c *Canvas) At(x, y int) color.RGBA {
	if !c.InBounds(x, y) {
		return color.RGBA{}
	}
	return c.Pix[y*c.W+x]
}

// ZAt returns the z value at (x,y), Unpainted outside the canvas.
func (c *Canvas) ZAt(x, y int) int32 {
	if !c.InBounds(x, y) {
		return Unpainted
	}
	return c.Z[y*c.W+x]
}

func (c *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, c.W, c.H) }

// Blit paints src onto c with its origin at (dx,dy), carrying src z values.
func (c *Canvas) Blit(src *Canvas, dx, dy int) {
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			i := y*src.W + x
			if src.Z[i] == Unpainted {
				continue
			}
			c.Put(src.Pix[i], dx+x, dy+y, src.Z[i])
		}
	}
}

// Image converts to an *image.RGBA. With keyMarker set, unpainted pixels and
// the palette's transparent marker come out fully transparent.
func (c *Canvas) Image(keyMarker bool) *image.RGBA {
	img := image.NewRGBA(c.Bounds())
	for i, p := range c.Pix {
		if keyMarker && (c.Z[i] == Unpainted || p == palette.TransparentMarker) {
			continue
		}
		o := i * 4
		img.Pix[o] = p.R
		img.Pix[o+1] = p.G
		img.Pix[o+2] = p.B
		img.Pix[o+3] = p.A
	}
	return img
}

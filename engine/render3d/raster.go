package render3d

import (
	"image/color"

	"github.com/1siamBot/ra2view/engine/zbuf"
	"github.com/chewxy/math32"
)

// Default angles of the three-quarter view the game draws voxels from.
const (
	DefaultYaw  = -math32.Pi / 4
	DefaultTilt = math32.Pi / 6
)

// View orients a z-up model for drawing: yaw about z, then tilt its top
// toward the viewer. In view space x is right, y up and z toward the eye.
func View(yaw, tilt float32) Mat4 {
	return Mat4RotateX(tilt - math32.Pi/2).Mul(Mat4RotateZ(yaw))
}

var lightDir = V3(-0.4, 0.6, 0.7).Normalize()

// Render draws m through view with flat lambert shading onto a canvas sized
// to the projected bounds, scale pixels per model unit.
func Render(m *Mesh, view Mat4, scale float32) *zbuf.Canvas {
	if len(m.Vertices) == 0 || scale <= 0 {
		return zbuf.New(0, 0)
	}
	vm := m.Transform(view)
	lo, hi := vm.Bounds()
	const pad = 1
	w := int(math32.Ceil((hi.X-lo.X)*scale)) + 2*pad
	h := int(math32.Ceil((hi.Y-lo.Y)*scale)) + 2*pad
	dst := zbuf.New(w, h)

	screen := func(p Vec3) Vec3 {
		return Vec3{(p.X-lo.X)*scale + pad, (hi.Y-p.Y)*scale + pad, p.Z}
	}
	for i := 0; i+2 < len(vm.Indices); i += 3 {
		a := vm.Vertices[vm.Indices[i]]
		b := vm.Vertices[vm.Indices[i+1]]
		c := vm.Vertices[vm.Indices[i+2]]
		fillTriangle(dst, screen(a.Pos), screen(b.Pos), screen(c.Pos), shade(a.Color, a.Normal))
	}
	return dst
}

func shade(c color.RGBA, n Vec3) color.RGBA {
	k := 0.45 + 0.55*math32.Max(0, n.Dot(lightDir))
	return color.RGBA{uint8(float32(c.R) * k), uint8(float32(c.G) * k), uint8(float32(c.B) * k), c.A}
}

func edge(a, b Vec3, x, y float32) float32 {
	return (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
}

// fillTriangle paints pixels whose centres fall inside abc, either winding,
// with depth interpolated into the canvas z channel.
func fillTriangle(dst *zbuf.Canvas, a, b, c Vec3, col color.RGBA) {
	area := edge(a, b, c.X, c.Y)
	if area == 0 {
		return
	}
	x0 := int(math32.Max(0, math32.Floor(math32.Min(a.X, math32.Min(b.X, c.X)))))
	y0 := int(math32.Max(0, math32.Floor(math32.Min(a.Y, math32.Min(b.Y, c.Y)))))
	x1 := int(math32.Min(float32(dst.W-1), math32.Ceil(math32.Max(a.X, math32.Max(b.X, c.X)))))
	y1 := int(math32.Min(float32(dst.H-1), math32.Ceil(math32.Max(a.Y, math32.Max(b.Y, c.Y)))))
	for y := y0; y <= y1; y++ {
		py := float32(y) + 0.5
		for x := x0; x <= x1; x++ {
			px := float32(x) + 0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.Z + w1*b.Z + w2*c.Z
			dst.Put(col, x, y, int32(z*64))
		}
	}
}

package vxl

import (
	"fmt"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/render3d"
)

func frameName(i int) string   { return fmt.Sprintf("frame %d", i) }
func sectionName(i int) string { return fmt.Sprintf("section %d", i) }

// Model pairs a body with its motion library.
type Model struct {
	Body   *Body
	Motion *Motion // nil uses each section's own transform
}

// NewModel checks that body and motion describe the same sections.
func NewModel(body *Body, motion *Motion) (*Model, error) {
	if motion != nil && motion.Sections() != len(body.Sections) {
		return nil, binio.Inconsistentf(motion.Name, 20, "%d sections in motion, %d in %s", motion.Sections(), len(body.Sections), body.Name)
	}
	return &Model{Body: body, Motion: motion}, nil
}

func (m *Model) Name() string { return m.Body.Name }

// Frames is the number of animation frames; a model without motion has one.
func (m *Model) Frames() int {
	if m.Motion == nil {
		return 1
	}
	return m.Motion.Frames
}

// SectionTransform is the section's placement in frame, with the
// translation scaled by the section's det factor.
func (m *Model) SectionTransform(frame, section int) (render3d.Mat4, error) {
	if section < 0 || section >= len(m.Body.Sections) {
		return render3d.Mat4{}, binio.NotFound(m.Body.Name, sectionName(section))
	}
	s := m.Body.Sections[section]
	var t render3d.Mat4
	if m.Motion == nil {
		if frame != 0 {
			return t, binio.NotFound(m.Body.Name, frameName(frame))
		}
		t = render3d.Mat4FromRows(s.Tailer.Transform)
	} else {
		var err error
		if t, err = m.Motion.Transform(frame, section); err != nil {
			return t, err
		}
	}
	return t.WithTranslation(t.Translation().Scale(s.Tailer.Det)), nil
}

// neighbour offsets in render3d face order
var faceStep = [6][3]int{
	{0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0},
}

// Scale is the size of one cell in model units.
func (s *Section) Scale() render3d.Vec3 {
	t := s.Tailer
	axis := func(i int, n uint8) float32 {
		if n == 0 {
			return 0
		}
		return (t.Max[i] - t.Min[i]) / float32(n)
	}
	return render3d.V3(axis(0, t.XSize), axis(1, t.YSize), axis(2, t.ZSize))
}

// AppendMesh adds one cube per voxel to dst, skipping faces shared with an
// occupied neighbour.
func (s *Section) AppendMesh(dst *render3d.Mesh, xf render3d.Mat4, pal *palette.Palette) {
	lo := render3d.V3(s.Tailer.Min[0], s.Tailer.Min[1], s.Tailer.Min[2])
	cell := s.Scale()
	for _, v := range s.Voxels {
		x, y, z := int(v.X), int(v.Y), int(v.Z)
		mask := 0
		for f, d := range faceStep {
			if !s.Occupied(x+d[0], y+d[1], z+d[2]) {
				mask |= 1 << f
			}
		}
		if mask == 0 {
			continue
		}
		origin := lo.Add(render3d.V3(float32(x), float32(y), float32(z)).Mul(cell))
		dst.AddCube(origin, cell, pal.At(v.Color), mask, xf)
	}
}

// Mesh builds the model's triangle mesh for frame. A nil palette falls back
// to the body's embedded one.
func (m *Model) Mesh(frame int, pal *palette.Palette) (*render3d.Mesh, error) {
	if frame < 0 || frame >= m.Frames() {
		return nil, binio.NotFound(m.Body.Name, frameName(frame))
	}
	if pal == nil {
		pal = m.Body.Palette
	}
	out := render3d.NewMesh()
	for i, s := range m.Body.Sections {
		xf, err := m.SectionTransform(frame, i)
		if err != nil {
			return nil, err
		}
		s.AppendMesh(out, xf, pal)
	}
	return out, nil
}

// Composite meshes several independently loaded parts (hull, turret,
// barrel) into one. Parts with fewer frames than requested wrap around;
// nil parts are skipped.
func Composite(frame int, pal *palette.Palette, parts ...*Model) (*render3d.Mesh, error) {
	var meshes []*render3d.Mesh
	for i, p := range parts {
		if p == nil {
			continue
		}
		if p.Frames() == 0 {
			return nil, binio.NotFound(p.Name(), frameName(frame))
		}
		f := frame
		if i > 0 {
			f = frame % p.Frames()
		}
		m, err := p.Mesh(f, pal)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return render3d.Composite(meshes...), nil
}

package vxl

import (
	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/render3d"
)

// Motion is a decoded .hva motion library: one 3x4 transform per section
// per frame.
type Motion struct {
	Name         string
	ID           string // name stored in the file
	Frames       int
	SectionNames []string
	transforms   []render3d.Mat4 // frame-major
}

// DecodeMotion parses a .hva file.
func DecodeMotion(name string, data []byte) (*Motion, error) {
	c := binio.NewCursor(name, data)
	id, err := c.CString(16)
	if err != nil {
		return nil, err
	}
	frames, err := c.U32()
	if err != nil {
		return nil, err
	}
	sections, err := c.U32()
	if err != nil {
		return nil, err
	}
	if frames > 1<<16 || sections > 1<<12 {
		return nil, binio.Formatf(name, 16, "%d frames of %d sections", frames, sections)
	}
	want := int64(sections)*16 + int64(frames)*int64(sections)*48
	if err := binio.Range(name, int64(c.Pos()), want, int64(len(data))); err != nil {
		return nil, err
	}
	m := &Motion{Name: name, ID: id, Frames: int(frames), SectionNames: make([]string, sections)}
	for i := range m.SectionNames {
		m.SectionNames[i], _ = c.CString(16)
	}
	m.transforms = make([]render3d.Mat4, int(frames)*int(sections))
	var rows [12]float32
	for i := range m.transforms {
		if err := c.Read(&rows); err != nil {
			return nil, err
		}
		m.transforms[i] = render3d.Mat4FromRows(rows)
	}
	return m, nil
}

func (m *Motion) Sections() int { return len(m.SectionNames) }

// Transform returns the transform of section in frame.
func (m *Motion) Transform(frame, section int) (render3d.Mat4, error) {
	if frame < 0 || frame >= m.Frames {
		return render3d.Mat4{}, binio.NotFound(m.Name, frameName(frame))
	}
	if section < 0 || section >= m.Sections() {
		return render3d.Mat4{}, binio.NotFound(m.Name, sectionName(section))
	}
	return m.transforms[frame*m.Sections()+section], nil
}

package render3d

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{255, 0, 0, 255}

func TestAddCubeMask(t *testing.T) {
	m := NewMesh()
	m.AddCube(V3(0, 0, 0), V3(1, 1, 1), red, AllFaces, Mat4Identity())
	assert.Equal(t, 24, m.VertexCount())
	assert.Equal(t, 12, m.TriangleCount())
	require.NoError(t, m.Validate())

	m = NewMesh()
	m.AddCube(V3(0, 0, 0), V3(1, 1, 1), red, 1<<FacePosX|1<<FaceNegY, Mat4Identity())
	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, FaceNormals[FacePosX], m.Vertices[0].Normal)
	for _, v := range m.Vertices[:4] {
		assert.Equal(t, float32(1), v.Pos.X)
	}
}

func TestCubeWindingFacesOutward(t *testing.T) {
	m := MakeBox(2, 2, 2, red)
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		c := m.Vertices[m.Indices[i+2]]
		n := b.Pos.Sub(a.Pos).Cross(c.Pos.Sub(a.Pos)).Normalize()
		assert.InDelta(t, 1, n.Dot(a.Normal), 1e-5, "triangle %d", i/3)
	}
}

func TestAppendRebasesIndices(t *testing.T) {
	a := MakeBox(1, 1, 1, red)
	b := NewMesh()
	b.AddCube(V3(3, 0, 0), V3(1, 1, 1), red, 1<<FacePosZ, Mat4Identity())
	v1, v2 := a.VertexCount(), b.VertexCount()
	i1 := len(a.Indices)

	c := Composite(a, nil, b)
	require.NoError(t, c.Validate())
	assert.Equal(t, v1+v2, c.VertexCount())
	for k, idx := range c.Indices[i1:] {
		assert.Equal(t, b.Indices[k]+uint32(v1), idx)
		assert.True(t, idx < uint32(v1+v2))
	}
	// inputs are untouched
	assert.Equal(t, v1, a.VertexCount())
}

func TestTransform(t *testing.T) {
	m := MakeBox(2, 2, 2, red)
	moved := m.Transform(Mat4Translate(10, 0, 0).Mul(Mat4RotateZ(math32.Pi / 2)))
	lo, hi := moved.Bounds()
	assert.InDelta(t, 9, lo.X, 1e-5)
	assert.InDelta(t, 11, hi.X, 1e-5)
	lo, _ = m.Bounds()
	assert.Equal(t, float32(-1), lo.X)
}

func TestMat4FromRows(t *testing.T) {
	m := Mat4FromRows([12]float32{
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
	})
	assert.Equal(t, V3(5, 6, 7), m.Translation())
	assert.Equal(t, V3(6, 8, 10), m.TransformPoint(V3(1, 2, 3)))
	assert.Equal(t, V3(1, 2, 3), m.TransformDir(V3(1, 2, 3)))
	assert.Equal(t, V3(1, 1, 1), m.WithTranslation(V3(1, 1, 1)).Translation())
}

func TestValidate(t *testing.T) {
	m := &Mesh{Vertices: make([]Vertex, 2), Indices: []uint32{0, 1, 2}}
	err := m.Validate()
	require.Error(t, err)
	assert.Equal(t, "mesh: index 2 references vertex 2 of 2", err.Error())
	m.Indices = []uint32{0, 1}
	assert.Error(t, m.Validate())
}

func TestWriteGLB(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGLB(&buf, MakeBox(1, 1, 1, red), "box"))
	require.True(t, buf.Len() > 12)
	assert.Equal(t, "glTF", buf.String()[:4])

	assert.Error(t, WriteGLB(&buf, NewMesh(), "empty"))
}

func TestRenderBox(t *testing.T) {
	c := Render(MakeBox(2, 2, 2, color.RGBA{200, 0, 0, 255}), Mat4Identity(), 4)
	assert.Equal(t, 2*4+2, c.W)
	assert.Equal(t, 2*4+2, c.H)

	// the +z face is nearest and faces the light partly
	mid := c.At(c.W/2, c.H/2)
	assert.True(t, mid.R > 0)
	assert.Equal(t, uint8(0), mid.G)
	assert.InDelta(t, 64, float64(c.ZAt(c.W/2, c.H/2)), 1)

	assert.Equal(t, 0, Render(NewMesh(), Mat4Identity(), 4).W)
}

func TestViewPutsZUp(t *testing.T) {
	v := View(0, 0)
	up := v.TransformDir(V3(0, 0, 1))
	assert.InDelta(t, 1, up.Y, 1e-5)
	away := v.TransformDir(V3(0, 1, 0))
	assert.InDelta(t, -1, away.Z, 1e-5)
}

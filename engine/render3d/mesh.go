// Package render3d holds the indexed triangle mesh that voxel models are
// meshed into, the float32 math around it and glTF export.
package render3d

import (
	"image/color"

	"github.com/pkg/errors"
)

// Vertex is a vertex with position, color, and normal
type Vertex struct {
	Pos    Vec3
	Color  color.RGBA
	Normal Vec3
}

// Mesh is a vertex list plus a triangle index list, three indices per
// triangle.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func NewMesh() *Mesh { return &Mesh{} }

func (m *Mesh) VertexCount() int   { return len(m.Vertices) }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

func (m *Mesh) AddVertex(v Vertex) uint32 {
	m.Vertices = append(m.Vertices, v)
	return uint32(len(m.Vertices) - 1)
}

func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// AddQuad adds four vertices wound counter-clockwise and two triangles.
func (m *Mesh) AddQuad(v0, v1, v2, v3 Vertex) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, v0, v1, v2, v3)
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// Transform returns a copy with positions and normals transformed by mat.
func (m *Mesh) Transform(mat Mat4) *Mesh {
	out := &Mesh{Vertices: make([]Vertex, len(m.Vertices)), Indices: append([]uint32(nil), m.Indices...)}
	for i, v := range m.Vertices {
		v.Pos = mat.TransformPoint(v.Pos)
		v.Normal = mat.TransformDir(v.Normal).Normalize()
		out.Vertices[i] = v
	}
	return out
}

// Append adds other's vertices and triangles to m. Other's indices are
// rebased by m's vertex count before they are copied.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, i := range other.Indices {
		m.Indices = append(m.Indices, i+base)
	}
}

// Composite concatenates meshes into a new one.
func Composite(meshes ...*Mesh) *Mesh {
	out := NewMesh()
	for _, m := range meshes {
		if m != nil {
			out.Append(m)
		}
	}
	return out
}

// Validate checks that indices form whole triangles over existing vertices.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return errors.Errorf("mesh: %d indices is not a whole number of triangles", len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for k, i := range m.Indices {
		if i >= n {
			return errors.Errorf("mesh: index %d references vertex %d of %d", k, i, n)
		}
	}
	return nil
}

// Bounds returns the axis-aligned box around every vertex.
func (m *Mesh) Bounds() (lo, hi Vec3) {
	for i, v := range m.Vertices {
		if i == 0 {
			lo, hi = v.Pos, v.Pos
			continue
		}
		lo = Vec3{min(lo.X, v.Pos.X), min(lo.Y, v.Pos.Y), min(lo.Z, v.Pos.Z)}
		hi = Vec3{max(hi.X, v.Pos.X), max(hi.Y, v.Pos.Y), max(hi.Z, v.Pos.Z)}
	}
	return lo, hi
}

// --- Cube faces ---

// Face identifies one side of a unit cube.
type Face int

const (
	FaceNegZ Face = iota
	FacePosZ
	FaceNegX
	FacePosX
	FacePosY
	FaceNegY
)

// AllFaces selects every face of a cube.
const AllFaces = 1<<6 - 1

var cubeCorners = [8]Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// corner indices per face, counter-clockwise seen from outside
var cubeFaces = [6][4]int{
	{3, 2, 1, 0},
	{4, 5, 6, 7},
	{0, 4, 7, 3},
	{1, 2, 6, 5},
	{3, 7, 6, 2},
	{0, 1, 5, 4},
}

// FaceNormals are the outward normals of the cube faces.
var FaceNormals = [6]Vec3{
	{0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0},
}

// AddCube adds the faces selected by mask of the box at origin with the
// given edge lengths, every corner mapped through xf.
func (m *Mesh) AddCube(origin, size Vec3, c color.RGBA, mask int, xf Mat4) {
	for fi, f := range cubeFaces {
		if mask&(1<<fi) == 0 {
			continue
		}
		n := xf.TransformDir(FaceNormals[fi]).Normalize()
		var q [4]Vertex
		for k, ci := range f {
			p := origin.Add(cubeCorners[ci].Mul(size))
			q[k] = Vertex{Pos: xf.TransformPoint(p), Color: c, Normal: n}
		}
		m.AddQuad(q[0], q[1], q[2], q[3])
	}
}

// MakeBox returns a centred w×h×d box.
func MakeBox(w, h, d float32, c color.RGBA) *Mesh {
	m := NewMesh()
	m.AddCube(V3(-w/2, -h/2, -d/2), V3(w, h, d), c, AllFaces, Mat4Identity())
	return m
}

package render3d

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Document builds a single-node glTF document with vertex colors and
// normals from m.
func Document(m *Mesh, name string) (*gltf.Document, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(m.Vertices) == 0 {
		return nil, errors.Errorf("mesh %q has no vertices", name)
	}
	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	colors := make([][4]float32, len(m.Vertices))
	hasAlpha := false
	for i, v := range m.Vertices {
		positions[i] = v.Pos.Array()
		normals[i] = v.Normal.Array()
		colors[i] = [4]float32{
			float32(v.Color.R) / 255, float32(v.Color.G) / 255,
			float32(v.Color.B) / 255, float32(v.Color.A) / 255,
		}
		if v.Color.A < 255 {
			hasAlpha = true
		}
	}
	indices := make([]uint32, len(m.Indices))
	copy(indices, m.Indices)

	doc := gltf.NewDocument()
	doc.Asset.Generator = "ra2view"

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices:  gltf.Index(uint32(indicesAccessor)),
		Material: gltf.Index(0),
	}
	material := &gltf.Material{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float32{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}}
	if hasAlpha {
		material.AlphaMode = gltf.AlphaBlend
	} else {
		material.AlphaMode = gltf.AlphaOpaque
	}
	doc.Materials = []*gltf.Material{material}
	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// WriteGLB encodes m as binary glTF.
func WriteGLB(w io.Writer, m *Mesh, name string) error {
	doc, err := Document(m, name)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return errors.Wrapf(enc.Encode(doc), "encode %s", name)
}

// SaveGLB writes m as a .glb file.
func SaveGLB(path string, m *Mesh, name string) error {
	doc, err := Document(m, name)
	if err != nil {
		return err
	}
	return errors.Wrapf(gltf.SaveBinary(doc, path), "save %s", path)
}

package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF loads the single mesh of a .gltf or .glb document. Primitives that are
// not triangle lists are skipped.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := fromGLTF(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func fromGLTF(doc *gltf.Document) (*Mesh, error) {
	if len(doc.Meshes) == 0 {
		return nil, ErrEmptyMesh
	}
	if len(doc.Meshes) > 1 {
		return nil, ErrMultipleObjects
	}

	m := &Mesh{}
	for _, primitive := range doc.Meshes[0].Primitives {
		if primitive.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := primitive.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var texCoords [][2]float32
		if texIdx, ok := primitive.Attributes[gltf.TEXCOORD_0]; ok {
			texCoords, err = modeler.ReadTextureCoord(doc, doc.Accessors[texIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("read texture coordinates: %w", err)
			}
		}

		var indices []uint32
		if primitive.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for k := range indices {
				indices[k] = uint32(k)
			}
		}
		if len(indices)%3 != 0 {
			return nil, ErrNotTriangulated
		}

		// Primitives share nothing, so offset their indices past what is already loaded
		base := len(m.Positions)
		uvBase := len(m.UVs)
		for i, p := range positions {
			v := mgl32.Vec3{p[0], p[1], p[2]}
			if !finite(v) {
				return nil, fmt.Errorf("%w: position %d %v", ErrNonFinite, i, v)
			}
			m.Positions = append(m.Positions, v)
		}
		hasUV := len(texCoords) == len(positions)
		if hasUV {
			// glTF puts the UV origin top-left; Mesh keeps the OBJ convention
			for _, uv := range texCoords {
				m.UVs = append(m.UVs, mgl32.Vec2{uv[0], 1 - uv[1]})
			}
		}

		for i := 0; i < len(indices); i += 3 {
			t := Triangle{T: [3]int{-1, -1, -1}}
			for k := 0; k < 3; k++ {
				idx := int(indices[i+k])
				if idx >= len(positions) {
					return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, len(positions))
				}
				t.V[k] = base + idx
				if hasUV {
					t.T[k] = uvBase + idx
				}
			}
			m.Triangles = append(m.Triangles, t)
		}
	}

	if len(m.Positions) == 0 {
		return nil, ErrEmptyMesh
	}
	return m, nil
}

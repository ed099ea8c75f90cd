package mesh

import (
	"github.com/fogleman/simplify"
	"github.com/go-gl/mathgl/mgl32"
)

// Simplify returns a decimated copy of m with roughly factor of its triangles.
// Texture coordinates do not survive decimation and normals must be recomputed.
func Simplify(m *Mesh, factor float64) *Mesh {
	triangles := make([]*simplify.Triangle, 0, len(m.Triangles))
	for i := range m.Triangles {
		a, b, c := m.Corners(i)
		triangles = append(triangles, simplify.NewTriangle(toSimplify(a), toSimplify(b), toSimplify(c)))
	}

	reduced := simplify.NewMesh(triangles).Simplify(factor)

	out := &Mesh{
		Positions: make([]mgl32.Vec3, 0, len(reduced.Triangles)),
		Triangles: make([]Triangle, 0, len(reduced.Triangles)),
	}
	index := make(map[simplify.Vector]int, len(reduced.Triangles))
	vertex := func(v simplify.Vector) int {
		if i, ok := index[v]; ok {
			return i
		}
		i := len(out.Positions)
		index[v] = i
		out.Positions = append(out.Positions, mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)})
		return i
	}
	for _, t := range reduced.Triangles {
		out.Triangles = append(out.Triangles, Triangle{
			V: [3]int{vertex(t.V1), vertex(t.V2), vertex(t.V3)},
			T: [3]int{-1, -1, -1},
		})
	}
	return out
}

func toSimplify(v mgl32.Vec3) simplify.Vector {
	return simplify.Vector{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

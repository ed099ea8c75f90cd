package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"meshviewer/internal/mesh"
)

// Vertex is the GPU vertex layout shared by every pipeline
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    [3]float32
	UV       [2]float32
}

var (
	red    = mgl32.Vec3{1, 0, 0}
	green  = mgl32.Vec3{0, 1, 0}
	blue   = mgl32.Vec3{0, 0, 1}
	yellow = mgl32.Vec3{1, 1, 0}
	cyan   = mgl32.Vec3{0, 1, 1}
	white  = mgl32.Vec3{1, 1, 1}
)

var cubeCorners = [8]mgl32.Vec3{
	{1, 1, 1}, {-1, 1, 1}, {-1, -1, 1}, {1, -1, 1},
	{1, 1, -1}, {-1, 1, -1}, {-1, -1, -1}, {1, -1, -1},
}

// cubeEdges index cubeCorners
var cubeEdges = [12][2]int{
	{1, 2}, {1, 0}, {2, 3}, {3, 0},
	{0, 4}, {4, 5}, {5, 1}, {2, 6},
	{3, 7}, {6, 7}, {6, 5}, {4, 7},
}

type quad struct {
	corners [4]mgl32.Vec3
	color   mgl32.Vec3
}

// cubeFaces wind counter-clockwise seen from outside the cube
var cubeFaces = [6]quad{
	{[4]mgl32.Vec3{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}, yellow},
	{[4]mgl32.Vec3{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}, red},
	{[4]mgl32.Vec3{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}, white},
	{[4]mgl32.Vec3{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}, blue},
	{[4]mgl32.Vec3{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}, green},
	{[4]mgl32.Vec3{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}, cyan},
}

var quadUVs = [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

func vertex(p, n, c mgl32.Vec3, uv mgl32.Vec2) Vertex {
	return Vertex{
		Position: [3]float32{p[0], p[1], p[2]},
		Normal:   [3]float32{n[0], n[1], n[2]},
		Color:    [3]float32{c[0], c[1], c[2]},
		UV:       [2]float32{uv[0], uv[1]},
	}
}

// CubePoints returns the eight cube corners
func CubePoints() []Vertex {
	out := make([]Vertex, 0, len(cubeCorners))
	for _, p := range cubeCorners {
		out = append(out, vertex(p, mgl32.Vec3{}, green, mgl32.Vec2{}))
	}
	return out
}

// CubeEdges returns the twelve cube edges as line-list vertex pairs
func CubeEdges() []Vertex {
	out := make([]Vertex, 0, 2*len(cubeEdges))
	for _, e := range cubeEdges {
		out = append(out,
			vertex(cubeCorners[e[0]], mgl32.Vec3{}, blue, mgl32.Vec2{}),
			vertex(cubeCorners[e[1]], mgl32.Vec3{}, blue, mgl32.Vec2{}),
		)
	}
	return out
}

// CubeFaces returns the six coloured faces split into twelve triangles
func CubeFaces() []Vertex {
	out := make([]Vertex, 0, 6*len(cubeFaces))
	for _, f := range cubeFaces {
		c := f.corners
		n := mesh.FaceNormal(c[0], c[1], c[2])
		for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
			out = append(out, vertex(c[i], n, f.color, quadUVs[i]))
		}
	}
	return out
}

// Axes returns the coordinate gizmo: unit X (red), Y (green) and Z (blue)
// segments from (-1, -1, 3)
func Axes() []Vertex {
	o := mgl32.Vec3{-1, -1, 3}
	return []Vertex{
		vertex(o, mgl32.Vec3{}, blue, mgl32.Vec2{}), vertex(o.Add(mgl32.Vec3{0, 0, 1}), mgl32.Vec3{}, blue, mgl32.Vec2{}),
		vertex(o, mgl32.Vec3{}, green, mgl32.Vec2{}), vertex(o.Add(mgl32.Vec3{0, 1, 0}), mgl32.Vec3{}, green, mgl32.Vec2{}),
		vertex(o, mgl32.Vec3{}, red, mgl32.Vec2{}), vertex(o.Add(mgl32.Vec3{1, 0, 0}), mgl32.Vec3{}, red, mgl32.Vec2{}),
	}
}

// MeshTriangles flattens a prepared mesh into a triangle list with flat face normals
func MeshTriangles(m *mesh.Mesh, color mgl32.Vec3) []Vertex {
	out := make([]Vertex, 0, 3*len(m.Triangles))
	textured := m.HasUVs()
	for i, t := range m.Triangles {
		var n mgl32.Vec3
		if i < len(m.Normals) {
			n = m.Normals[i]
		}
		for k := 0; k < 3; k++ {
			var uv mgl32.Vec2
			if textured {
				uv = m.UVs[t.T[k]]
				// Mesh UVs start bottom-left, textures are sampled from the top-left
				uv[1] = 1 - uv[1]
			}
			out = append(out, vertex(m.Positions[t.V[k]], n, color, uv))
		}
	}
	return out
}

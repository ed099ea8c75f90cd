package mesh

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"meshviewer/pkg/bounds"
)

var (
	ErrEmptyMesh          = errors.New("mesh has no vertices")
	ErrNotTriangulated    = errors.New("face is not a triangle")
	ErrMultipleObjects    = errors.New("mesh contains more than one object")
	ErrUnsupportedFormat  = errors.New("unsupported mesh format")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrMalformedStatement = errors.New("malformed statement")
	ErrNonFinite          = errors.New("coordinate is not finite")
)

// Triangle references three positions and, when present, three texture coordinates.
// T entries are -1 when the face carries no texture coordinates.
type Triangle struct {
	V [3]int
	T [3]int
}

// Mesh is a single-object triangle mesh
type Mesh struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Triangles []Triangle

	// Normals holds one face normal per triangle once ComputeFaceNormals has run
	Normals []mgl32.Vec3
}

// HasUVs reports whether every triangle carries texture coordinates
func (m *Mesh) HasUVs() bool {
	if len(m.UVs) == 0 || len(m.Triangles) == 0 {
		return false
	}
	for _, t := range m.Triangles {
		if t.T[0] < 0 || t.T[1] < 0 || t.T[2] < 0 {
			return false
		}
	}
	return true
}

// Corners returns the three positions of triangle i
func (m *Mesh) Corners(i int) (a, b, c mgl32.Vec3) {
	t := m.Triangles[i]
	return m.Positions[t.V[0]], m.Positions[t.V[1]], m.Positions[t.V[2]]
}

// Bounds returns the bounding box of all positions
func (m *Mesh) Bounds() bounds.Box {
	return bounds.Of(m.Positions)
}

// Stats summarises a prepared mesh
type Stats struct {
	Vertices     int
	Triangles    int
	TexCoords    bool
	Degenerate   int
	SourceBounds bounds.Box
	Bounds       bounds.Box
}

// Options controls Prepare
type Options struct {
	// SimplifyFactor in (0, 1) decimates the mesh to roughly that fraction of its
	// triangles. Zero or >= 1 leaves the mesh untouched.
	SimplifyFactor float64
}

// Prepare runs the load-time pipeline: optional decimation, normalization into
// the [-1, 1] cube and face normal computation.
func Prepare(m *Mesh, opts Options) (*Mesh, Stats, error) {
	if m == nil || len(m.Positions) == 0 {
		return nil, Stats{}, ErrEmptyMesh
	}
	if err := checkFinite(m.Positions); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{SourceBounds: m.Bounds()}

	if opts.SimplifyFactor > 0 && opts.SimplifyFactor < 1 {
		m = Simplify(m, opts.SimplifyFactor)
	}

	if err := Normalize(m); err != nil {
		return nil, Stats{}, err
	}
	stats.Degenerate = ComputeFaceNormals(m)

	stats.Vertices = len(m.Positions)
	stats.Triangles = len(m.Triangles)
	stats.TexCoords = m.HasUVs()
	stats.Bounds = m.Bounds()
	return m, stats, nil
}

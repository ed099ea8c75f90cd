package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"meshviewer/internal/mesh"
)

// State is the mutable per-session scene: render mode, cube rotation and the
// optional loaded mesh
type State struct {
	Mode Mode

	// Rotation holds degrees around X, Y and Z
	Rotation mgl32.Vec3

	// Textured is true when a texture image was loaded at startup
	Textured bool

	mesh         *mesh.Mesh
	meshColor    mgl32.Vec3
	meshVertices []Vertex
}

// NewState returns a state in the default render mode
func NewState() *State {
	return &State{
		Mode:      DefaultMode,
		meshColor: mgl32.Vec3{0.8, 0.8, 0.8},
	}
}

// SetMesh attaches a prepared mesh drawn in ModeMesh
func (s *State) SetMesh(m *mesh.Mesh, color mgl32.Vec3) {
	s.mesh = m
	s.meshColor = color
	s.meshVertices = nil
}

// HasMesh reports whether a mesh is attached
func (s *State) HasMesh() bool {
	return s.mesh != nil && len(s.mesh.Triangles) > 0
}

// MeshVertices returns the flattened mesh triangle list, built once
func (s *State) MeshVertices() []Vertex {
	if !s.HasMesh() {
		return nil
	}
	if s.meshVertices == nil {
		s.meshVertices = MeshTriangles(s.mesh, s.meshColor)
	}
	return s.meshVertices
}

// SetMode switches the render mode. Mesh mode is refused while no mesh is loaded.
func (s *State) SetMode(m Mode) bool {
	if m == ModeMesh && !s.HasMesh() {
		return false
	}
	s.Mode = m
	return true
}

// Rotate adds degrees around each axis, wrapped into [0, 360)
func (s *State) Rotate(dx, dy, dz float32) {
	d := mgl32.Vec3{dx, dy, dz}
	for i := range s.Rotation {
		s.Rotation[i] = float32(math.Mod(float64(s.Rotation[i]+d[i]), 360))
		if s.Rotation[i] < 0 {
			s.Rotation[i] += 360
		}
	}
}

// ResetRotation puts the cube back to its initial orientation
func (s *State) ResetRotation() {
	s.Rotation = mgl32.Vec3{}
}

// Model returns the object transform: rotation about X, then Y, then Z, applied
// in that call order
func (s *State) Model() mgl32.Mat4 {
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(s.Rotation[0]))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(s.Rotation[1]))
	rz := mgl32.HomogRotate3DZ(mgl32.DegToRad(s.Rotation[2]))
	return rx.Mul4(ry).Mul4(rz)
}

// Frame is everything the renderer draws for one frame
type Frame struct {
	Mode  Mode
	Model mgl32.Mat4

	// Axes are drawn with an identity model transform
	Axes []Vertex

	Points    []Vertex
	Lines     []Vertex
	Triangles []Vertex

	// DrawMesh asks the renderer to draw its uploaded mesh buffer
	DrawMesh bool

	Lit      bool
	Textured bool
}

// Build assembles the draw lists for the current mode
func (s *State) Build() Frame {
	f := Frame{
		Mode:  s.Mode,
		Model: s.Model(),
		Axes:  Axes(),
	}

	switch s.Mode {
	case ModePoints:
		f.Points = CubePoints()
	case ModeEdges:
		f.Lines = CubeEdges()
	case ModeFaces:
		f.Triangles = CubeFaces()
	case ModeTextured:
		f.Triangles = CubeFaces()
		f.Textured = true
	case ModeMesh:
		f.DrawMesh = true
		f.Lit = true
		f.Textured = s.Textured && s.mesh.HasUVs()
	}
	return f
}

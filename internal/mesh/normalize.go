package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ComputeFaceNormals sets one unit normal per triangle from the cross product of
// its two edges leaving the first corner. Degenerate triangles get the zero
// vector. It returns the number of degenerate triangles.
func ComputeFaceNormals(m *Mesh) int {
	if cap(m.Normals) >= len(m.Triangles) {
		m.Normals = m.Normals[:len(m.Triangles)]
	} else {
		m.Normals = make([]mgl32.Vec3, len(m.Triangles))
	}

	degenerate := 0
	for i := range m.Triangles {
		a, b, c := m.Corners(i)
		n := FaceNormal(a, b, c)
		if n == (mgl32.Vec3{}) {
			degenerate++
		}
		m.Normals[i] = n
	}
	return degenerate
}

// FaceNormal returns the unit normal of the counter-clockwise triangle a, b, c,
// or the zero vector when the triangle has no area.
func FaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l == 0 || l != l {
		return mgl32.Vec3{}
	}
	return n.Mul(1 / l)
}

// Normalize rescales the mesh in place so its bounding box is centred on the
// origin and its largest axis spans exactly [-1, 1]. Scaling is uniform. A mesh
// whose vertices all coincide is only moved to the origin. Positions must be
// finite.
func Normalize(m *Mesh) error {
	if len(m.Positions) == 0 {
		return ErrEmptyMesh
	}
	if err := checkFinite(m.Positions); err != nil {
		return err
	}

	// float64 so that extents near the float32 limit do not overflow
	box := m.Bounds()
	var center [3]float64
	for k := 0; k < 3; k++ {
		center[k] = (float64(box.Min[k]) + float64(box.Max[k])) / 2
	}

	scale := 1.0
	if extent := box.MaxExtent(); extent > 0 {
		scale = 2 / extent
	}

	for i, p := range m.Positions {
		var q mgl32.Vec3
		for k := 0; k < 3; k++ {
			v := (float64(p[k]) - center[k]) * scale
			// Rounding can leave the extreme vertices a hair outside the cube
			q[k] = float32(max(-1, min(1, v)))
		}
		m.Positions[i] = q
	}
	return nil
}

func checkFinite(positions []mgl32.Vec3) error {
	for i, p := range positions {
		if !finite(p) {
			return fmt.Errorf("%w: position %d %v", ErrNonFinite, i, p)
		}
	}
	return nil
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

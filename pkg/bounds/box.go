package bounds

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Empty returns a box that contains nothing; extending it with a point yields
// a box around that point
func Empty() Box {
	inf := float32(math.Inf(1))
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Of returns the bounding box of the given points
func Of(points []mgl32.Vec3) Box {
	b := Empty()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box contains no points
func (b Box) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend returns the box grown to include p
func (b Box) Extend(p mgl32.Vec3) Box {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Center returns the midpoint of the box
func (b Box) Center() mgl32.Vec3 {
	var c mgl32.Vec3
	for i := 0; i < 3; i++ {
		c[i] = float32((float64(b.Min[i]) + float64(b.Max[i])) / 2)
	}
	return c
}

// Size returns the extent of the box along each axis
func (b Box) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// MaxExtent returns the largest of the three axis extents. It is computed in
// float64 since the extent of a box of finite float32 corners may not fit a
// float32.
func (b Box) MaxExtent() float64 {
	if b.IsEmpty() {
		return 0
	}
	var e float64
	for i := 0; i < 3; i++ {
		e = max(e, float64(b.Max[i])-float64(b.Min[i]))
	}
	return e
}

// Contains reports whether p lies inside the box, allowing eps of slack
func (b Box) Contains(p mgl32.Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i]-eps || p[i] > b.Max[i]+eps {
			return false
		}
	}
	return true
}

func (b Box) String() string {
	if b.IsEmpty() {
		return "(empty)"
	}
	return fmt.Sprintf("(%.3f, %.3f, %.3f)..(%.3f, %.3f, %.3f)",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}

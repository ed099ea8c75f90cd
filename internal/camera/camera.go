package camera

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFOVY = 45.0
	DefaultNear = 0.1
	DefaultFar  = 100.0

	// DragLimit bounds the camera X/Y reachable by dragging
	DragLimit = 30.0

	// Step is the distance a single movement key moves the camera
	Step = 1.0
)

// DefaultPosition is where the camera starts
var DefaultPosition = mgl32.Vec3{5, 5, 10}

// Camera is a look-at camera aimed at the origin. Movement keys and drags move
// Target; the displayed Position follows it, eased by a spring when smoothing
// is on.
type Camera struct {
	// Target is the position the controls have asked for
	Target mgl32.Vec3

	// Position is the eye position used for rendering
	Position mgl32.Vec3

	Center mgl32.Vec3
	Up     mgl32.Vec3

	// Projection parameters (FOVY in degrees)
	FOVY float32
	Near float32
	Far  float32

	// Viewport dimensions
	ViewportWidth  int
	ViewportHeight int

	// DragSpeed converts cursor pixels to world units
	DragSpeed float32

	start    mgl32.Vec3
	smooth   bool
	spring   harmonica.Spring
	velocity [3]float64

	// State tracking
	isDragging bool
	lastDragX  float64
	lastDragY  float64
}

// NewCamera creates a camera at start looking at the origin
func NewCamera(start mgl32.Vec3, width, height int) *Camera {
	return &Camera{
		Target:         start,
		Position:       start,
		Up:             mgl32.Vec3{0, 1, 0},
		FOVY:           DefaultFOVY,
		Near:           DefaultNear,
		Far:            DefaultFar,
		ViewportWidth:  width,
		ViewportHeight: height,
		DragSpeed:      0.05,
		start:          start,
	}
}

// SetSmoothing turns eased movement on or off. fps is the expected frame rate
// Update is called at.
func (c *Camera) SetSmoothing(on bool, fps int) {
	c.smooth = on
	if fps <= 0 {
		fps = 60
	}
	c.spring = harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0)
	c.velocity = [3]float64{}
	if !on {
		c.Position = c.Target
	}
}

// SetViewport updates the viewport dimensions
func (c *Camera) SetViewport(width, height int) {
	c.ViewportWidth = width
	c.ViewportHeight = height
}

// Forward moves the camera one step toward -Z (zoom in)
func (c *Camera) Forward() { c.move(2, -Step) }

// Back moves the camera one step toward +Z (zoom out)
func (c *Camera) Back() { c.move(2, Step) }

// Left moves the camera one step toward -X
func (c *Camera) Left() { c.move(0, -Step) }

// Right moves the camera one step toward +X
func (c *Camera) Right() { c.move(0, Step) }

func (c *Camera) move(axis int, delta float32) {
	c.Target[axis] += delta
	if !c.smooth {
		c.Position = c.Target
	}
}

// Reset puts the camera back at its start position
func (c *Camera) Reset() {
	c.Target = c.start
	c.Position = c.start
	c.velocity = [3]float64{}
	c.isDragging = false
}

// StartDrag begins a drag operation
func (c *Camera) StartDrag(x, y float64) {
	c.isDragging = true
	c.lastDragX = x
	c.lastDragY = y
}

// Drag moves the camera in X/Y by the cursor delta. An axis whose new value
// would reach DragLimit in magnitude keeps its old value.
func (c *Camera) Drag(x, y float64) {
	if !c.isDragging {
		return
	}

	deltaX := float32(x-c.lastDragX) * c.DragSpeed
	deltaY := float32(y-c.lastDragY) * c.DragSpeed

	// Screen Y grows downward
	if nx := c.Target[0] + deltaX; abs32(nx) < DragLimit {
		c.Target[0] = nx
	}
	if ny := c.Target[1] - deltaY; abs32(ny) < DragLimit {
		c.Target[1] = ny
	}
	if !c.smooth {
		c.Position = c.Target
	}

	c.lastDragX = x
	c.lastDragY = y
}

// EndDrag ends a drag operation
func (c *Camera) EndDrag() {
	c.isDragging = false
}

// IsDragging returns whether a drag is in progress
func (c *Camera) IsDragging() bool {
	return c.isDragging
}

// Update advances the eased position one frame toward Target
func (c *Camera) Update() {
	if !c.smooth {
		c.Position = c.Target
		return
	}
	for i := 0; i < 3; i++ {
		pos, vel := c.spring.Update(float64(c.Position[i]), c.velocity[i], float64(c.Target[i]))
		c.Position[i] = float32(pos)
		c.velocity[i] = vel
	}
}

// Settled reports whether the displayed position has caught up with Target
func (c *Camera) Settled() bool {
	d := c.Position.Sub(c.Target)
	return abs32(d[0]) < 1e-3 && abs32(d[1]) < 1e-3 && abs32(d[2]) < 1e-3
}

// Aspect returns the viewport aspect ratio; a zero height counts as one
func (c *Camera) Aspect() float32 {
	h := c.ViewportHeight
	if h == 0 {
		h = 1
	}
	return float32(c.ViewportWidth) / float32(h)
}

// View returns the view matrix
func (c *Camera) View() mgl32.Mat4 {
	eye := c.Position
	dir := c.Center.Sub(eye)
	if dir.Len() < 1e-6 {
		// Eye on the look-at point; back off along +Z so the matrix stays finite
		eye = c.Center.Add(mgl32.Vec3{0, 0, 1e-3})
		dir = c.Center.Sub(eye)
	}
	up := c.Up
	if up.Len() == 0 || dir.Normalize().Cross(up.Normalize()).Len() < 1e-6 {
		up = mgl32.Vec3{0, 0, -1}
	}
	return mgl32.LookAtV(eye, c.Center, up)
}

// Projection returns the perspective projection for the current viewport
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOVY), c.Aspect(), c.Near, c.Far)
}

// ViewProjection returns Projection * View
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

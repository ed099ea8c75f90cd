package renderer

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms matches the shader's uniform block
type Uniforms struct {
	MVP      [16]float32
	Model    [16]float32
	Light    [4]float32
	Params   [4]float32
	Viewport [4]float32
}

// clipCorrection maps OpenGL clip depth (-1..1) to WebGPU's (0..1)
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// DrawParams are the per-draw inputs to NewUniforms
type DrawParams struct {
	ViewProjection mgl32.Mat4
	Model          mgl32.Mat4
	Light          mgl32.Vec3
	Lit            bool
	Textured       bool
	PointSize      float32
	Width, Height  uint32
}

// NewUniforms builds the uniform block for one draw
func NewUniforms(p DrawParams) Uniforms {
	u := Uniforms{
		MVP:      clipCorrection.Mul4(p.ViewProjection).Mul4(p.Model),
		Model:    p.Model,
		Light:    [4]float32{p.Light[0], p.Light[1], p.Light[2], 1},
		Viewport: [4]float32{float32(max(p.Width, 1)), float32(max(p.Height, 1)), 0, 0},
	}
	if p.Lit {
		u.Params[0] = 1
	}
	if p.Textured {
		u.Params[1] = 1
	}
	u.Params[2] = p.PointSize
	return u
}

// pointCorners are the two triangles of a point sprite in NDC units of one
// point diameter
var pointCorners = [][2]float32{
	{-1, -1}, {1, -1}, {1, 1},
	{-1, -1}, {1, 1}, {-1, 1},
}

// Checkerboard returns a size x size image of cells x cells alternating
// squares, shown in textured modes when no texture was loaded
func Checkerboard(size, cells int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 220, G: 220, B: 220, A: 255}
	dark := color.RGBA{R: 90, G: 90, B: 90, A: 255}
	cell := max(size/max(cells, 1), 1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, light)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img
}

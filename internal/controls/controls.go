// Package controls maps key presses to viewer state changes. It knows nothing
// about the windowing library; the app translates its key codes into Key.
package controls

import (
	"meshviewer/internal/camera"
	"meshviewer/internal/scene"
)

// Key is a printable key as its lower-case rune, or one of the special keys below
type Key rune

const (
	KeyEscape Key = -1 - iota
	KeyUp
	KeyDown
	KeyUnknown
)

// Command is something only the app can carry out. Camera and scene changes
// are applied directly and yield None; the app redraws every frame.
type Command int

const (
	None Command = iota
	Quit
	Fullscreen
	Windowed
)

func (c Command) String() string {
	switch c {
	case Quit:
		return "quit"
	case Fullscreen:
		return "fullscreen"
	case Windowed:
		return "windowed"
	}
	return "none"
}

// RotationStep is the degrees x, y and z rotate the cube by per press
const RotationStep = 1.0

// Apply handles one key press
func Apply(key Key, cam *camera.Camera, state *scene.State) Command {
	switch key {
	case KeyEscape:
		return Quit
	case KeyUp:
		return Fullscreen
	case KeyDown:
		return Windowed

	case 'v', 'e', 'f', 't', 'm':
		mode, _ := scene.ParseMode(rune(key))
		state.SetMode(mode)

	case 'w':
		cam.Forward()
	case 's':
		cam.Back()
	case 'a':
		cam.Left()
	case 'd':
		cam.Right()

	case 'x':
		state.Rotate(RotationStep, 0, 0)
	case 'y':
		state.Rotate(0, RotationStep, 0)
	case 'z':
		state.Rotate(0, 0, RotationStep)

	case 'r':
		state.ResetRotation()
		cam.Reset()
	}
	return None
}

// Help lists the key bindings for the CLI
const Help = `Controls:
  v / e / f     : Points / edges / faces
  t             : Textured faces
  m             : Loaded mesh
  w / s         : Zoom in / out
  a / d         : Move left / right
  Mouse drag    : Move camera
  x / y / z     : Rotate cube around X / Y / Z
  r             : Reset view
  Up / Down     : Fullscreen / 500x500 window
  Escape        : Exit`

package scene

import "fmt"

// Mode selects which primitive set a frame emits
type Mode byte

const (
	ModePoints   Mode = 'v'
	ModeEdges    Mode = 'e'
	ModeFaces    Mode = 'f'
	ModeTextured Mode = 't'
	ModeMesh     Mode = 'm'

	DefaultMode = ModeFaces
)

// ParseMode maps a mode character to its Mode
func ParseMode(r rune) (Mode, error) {
	switch m := Mode(r); m {
	case ModePoints, ModeEdges, ModeFaces, ModeTextured, ModeMesh:
		return m, nil
	}
	return 0, fmt.Errorf("unknown render mode %q", r)
}

func (m Mode) String() string {
	switch m {
	case ModePoints:
		return "points"
	case ModeEdges:
		return "edges"
	case ModeFaces:
		return "faces"
	case ModeTextured:
		return "textured"
	case ModeMesh:
		return "mesh"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

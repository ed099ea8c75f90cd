package mesh

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a supported mesh file format
type Format string

const (
	FormatOBJ  Format = "obj"
	FormatGLTF Format = "gltf"
	FormatGLB  Format = "glb"
)

// DetectFormat picks the format from the file extension
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return FormatOBJ, nil
	case ".gltf":
		return FormatGLTF, nil
	case ".glb":
		return FormatGLB, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load reads a mesh from disk, choosing the parser by extension
func Load(path string) (*Mesh, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatOBJ:
		return LoadOBJ(path)
	default:
		return LoadGLTF(path)
	}
}

package mesh

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// LoadOBJ reads a Wavefront OBJ file
func LoadOBJ(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := ReadOBJ(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadOBJ parses a triangulated single-object OBJ stream. Only positions, texture
// coordinates and triangle faces are kept; normals are recomputed per face.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, 1024),
	}
	objects := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Positions = append(m.Positions, mgl32.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.UVs = append(m.UVs, mgl32.Vec2{v[0], v[1]})
		case "f":
			t, err := parseFace(fields[1:], len(m.Positions), len(m.UVs))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Triangles = append(m.Triangles, t)
		case "o":
			objects++
			if objects > 1 {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrMultipleObjects)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(m.Positions) == 0 {
		return nil, ErrEmptyMesh
	}
	return m, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d components, got %d", ErrMalformedStatement, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedStatement, fields[i])
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %w: %q", ErrMalformedStatement, ErrNonFinite, fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFace accepts the v, v/vt, v//vn and v/vt/vn corner forms
func parseFace(args []string, numV, numT int) (Triangle, error) {
	t := Triangle{T: [3]int{-1, -1, -1}}
	if len(args) != 3 {
		return t, fmt.Errorf("%w: %d vertices", ErrNotTriangulated, len(args))
	}

	withUV := 0
	for i, arg := range args {
		parts := strings.Split(arg, "/")

		v, err := resolveIndex(parts[0], numV)
		if err != nil {
			return t, err
		}
		t.V[i] = v

		if len(parts) > 1 && parts[1] != "" {
			vt, err := resolveIndex(parts[1], numT)
			if err != nil {
				return t, err
			}
			t.T[i] = vt
			withUV++
		}
	}
	if withUV != 0 && withUV != 3 {
		t.T = [3]int{-1, -1, -1}
	}
	return t, nil
}

// resolveIndex turns a 1-based or negative (relative) OBJ index into a 0-based one
func resolveIndex(s string, length int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformedStatement, s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += length
	default:
		return 0, fmt.Errorf("%w: index 0", ErrIndexOutOfRange)
	}
	if i < 0 || i >= length {
		return 0, fmt.Errorf("%w: %s of %d", ErrIndexOutOfRange, s, length)
	}
	return i, nil
}

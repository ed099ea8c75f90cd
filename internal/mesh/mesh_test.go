package mesh

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const tetra = `# tetrahedron
o tetra
v 0 0 0
v 2 0 0
v 0 4 0
v 0 0 6
vt 0 0
vt 1 0
vt 0 1
f 1 3 2
f 1/1 2/2 4/3
f 1//1 4//1 3//1
f -3/-3/1 -2/-2/1 -1/-1/1
`

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestReadOBJ(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(tetra))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(m.Positions) != 4 || len(m.UVs) != 3 || len(m.Triangles) != 4 {
		t.Fatalf("positions=%d uvs=%d triangles=%d", len(m.Positions), len(m.UVs), len(m.Triangles))
	}
	if m.Triangles[0].V != [3]int{0, 2, 1} || m.Triangles[0].T != [3]int{-1, -1, -1} {
		t.Fatalf("triangle 0 = %+v", m.Triangles[0])
	}
	if m.Triangles[1].T != [3]int{0, 1, 2} {
		t.Fatalf("triangle 1 uv = %v", m.Triangles[1].T)
	}
	if m.Triangles[2].T != [3]int{-1, -1, -1} {
		t.Fatalf("v//vn face picked up uvs: %v", m.Triangles[2].T)
	}
	// Negative indices are relative to the records seen so far
	if m.Triangles[3].V != [3]int{1, 2, 3} || m.Triangles[3].T != [3]int{0, 1, 2} {
		t.Fatalf("relative triangle = %+v", m.Triangles[3])
	}
	if m.HasUVs() {
		t.Fatalf("HasUVs true with untextured faces")
	}
}

func TestReadOBJErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"quad", "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n", ErrNotTriangulated},
		{"line", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrNotTriangulated},
		{"out of range", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 9\n", ErrIndexOutOfRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 0 1 2\n", ErrIndexOutOfRange},
		{"bad float", "v 0 x 0\n", ErrMalformedStatement},
		{"short vertex", "v 0 0\n", ErrMalformedStatement},
		{"nan", "v nan 0 0\n", ErrNonFinite},
		{"inf", "v 0 -inf 0\n", ErrNonFinite},
		{"inf uv", "v 0 0 0\nvt inf 0\n", ErrNonFinite},
		{"float32 overflow", "v 1e39 0 0\n", ErrMalformedStatement},
		{"two objects", "o a\nv 0 0 0\no b\n", ErrMultipleObjects},
		{"empty", "# nothing here\n\n", ErrEmptyMesh},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(c.src))
			if !errors.Is(err, c.want) {
				t.Fatalf("err=%v, want %v", err, c.want)
			}
		})
	}
}

func TestReadOBJIgnoresOtherRecords(t *testing.T) {
	src := `mtllib tetra.mtl
o tetra
g body
s 1
usemtl stone
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vp 0.5
f 1//1 2//1 3//1
l 1 2
`
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(m.Positions) != 3 || len(m.UVs) != 0 || len(m.Triangles) != 1 {
		t.Fatalf("positions=%d uvs=%d triangles=%d", len(m.Positions), len(m.UVs), len(m.Triangles))
	}
	if m.Triangles[0].V != [3]int{0, 1, 2} {
		t.Fatalf("triangle=%+v", m.Triangles[0])
	}
}

func TestReadOBJReportsLine(t *testing.T) {
	_, err := ReadOBJ(strings.NewReader("v 0 0 0\n\nf 1 2 3\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("err=%v, want line 3", err)
	}
}

func TestFaceNormal(t *testing.T) {
	n := FaceNormal(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 2, 0})
	if n != (mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("normal=%v, want +Z", n)
	}
	n = FaceNormal(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0}, mgl32.Vec3{1, 0, 0})
	if n != (mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("clockwise normal=%v, want -Z", n)
	}
	n = FaceNormal(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 2, 2})
	if n != (mgl32.Vec3{}) {
		t.Fatalf("collinear normal=%v, want zero", n)
	}
}

func TestComputeFaceNormals(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(tetra))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if d := ComputeFaceNormals(m); d != 0 {
		t.Fatalf("degenerate=%d, want 0", d)
	}
	if len(m.Normals) != len(m.Triangles) {
		t.Fatalf("normals=%d triangles=%d", len(m.Normals), len(m.Triangles))
	}
	// f 1 3 2 winds clockwise seen from +Z
	if m.Normals[0] != (mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("normal[0]=%v", m.Normals[0])
	}
	for i, n := range m.Normals {
		if l := n.Len(); math.Abs(float64(l)-1) > 1e-5 {
			t.Fatalf("normal[%d] length=%v", i, l)
		}
	}
}

func TestNormalize(t *testing.T) {
	m := &Mesh{Positions: []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 4, 0}}}
	if err := Normalize(m); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []mgl32.Vec3{{-0.5, -1, 0}, {0.5, -1, 0}, {-0.5, 1, 0}}
	for i := range want {
		if m.Positions[i].Sub(want[i]).Len() > 1e-6 {
			t.Fatalf("position[%d]=%v, want %v", i, m.Positions[i], want[i])
		}
	}
}

func TestNormalizeLargestAxisSpansCube(t *testing.T) {
	m := &Mesh{Positions: []mgl32.Vec3{{-100, 7, 3}, {300, 9, 3.5}, {50, 8, 2}}}
	if err := Normalize(m); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	b := m.Bounds()
	if !near(b.Min[0], -1) || !near(b.Max[0], 1) {
		t.Fatalf("x range %v..%v, want -1..1", b.Min[0], b.Max[0])
	}
	if !near(b.Center()[1], 0) || !near(b.Center()[2], 0) {
		t.Fatalf("center=%v, want origin", b.Center())
	}
	if b.Size()[1] > 0.02 {
		t.Fatalf("y extent=%v, uniform scale broken", b.Size()[1])
	}
}

func TestNormalizeCoincident(t *testing.T) {
	m := &Mesh{Positions: []mgl32.Vec3{{3, 3, 3}, {3, 3, 3}}}
	if err := Normalize(m); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for i, p := range m.Positions {
		if p != (mgl32.Vec3{}) {
			t.Fatalf("position[%d]=%v, want origin", i, p)
		}
	}
	if err := Normalize(&Mesh{}); !errors.Is(err, ErrEmptyMesh) {
		t.Fatalf("empty err=%v", err)
	}
}

func TestNormalizeNearFloatLimit(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader("v 3e38 0 0\nv -3e38 0 0\nv 0 1 0\nf 1 2 3\n"))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	m, stats, err := Prepare(m, Options{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !near(m.Positions[0][0], 1) || !near(m.Positions[1][0], -1) {
		t.Fatalf("x extremes=%v, %v, want 1, -1", m.Positions[0], m.Positions[1])
	}
	if !near(stats.Bounds.Min[0], -1) || !near(stats.Bounds.Max[0], 1) {
		t.Fatalf("bounds=%v", stats.Bounds)
	}
}

func TestNormalizeRejectsNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	for _, p := range []mgl32.Vec3{{nan, 0, 0}, {0, inf, 0}, {0, 0, -inf}} {
		m := &Mesh{Positions: []mgl32.Vec3{{0, 0, 0}, p, {1, 1, 1}}}
		if err := Normalize(m); !errors.Is(err, ErrNonFinite) {
			t.Fatalf("Normalize(%v) err=%v", p, err)
		}
		if _, _, err := Prepare(m, Options{SimplifyFactor: 0.5}); !errors.Is(err, ErrNonFinite) {
			t.Fatalf("Prepare(%v) err=%v", p, err)
		}
	}
}

func TestPrepare(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(tetra))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	m, stats, err := Prepare(m, Options{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if stats.Vertices != 4 || stats.Triangles != 4 || stats.Degenerate != 0 {
		t.Fatalf("stats=%+v", stats)
	}
	if stats.SourceBounds.Max != (mgl32.Vec3{2, 4, 6}) {
		t.Fatalf("source bounds=%v", stats.SourceBounds)
	}
	for i, p := range m.Positions {
		for k := 0; k < 3; k++ {
			if p[k] < -1 || p[k] > 1 {
				t.Fatalf("position[%d]=%v outside [-1, 1]", i, p)
			}
		}
	}
	if !near(stats.Bounds.Max[2], 1) || !near(stats.Bounds.Min[2], -1) {
		t.Fatalf("z range=%v, want -1..1", stats.Bounds)
	}
	if len(m.Normals) != len(m.Triangles) {
		t.Fatalf("normals=%d", len(m.Normals))
	}

	if _, _, err := Prepare(&Mesh{}, Options{}); !errors.Is(err, ErrEmptyMesh) {
		t.Fatalf("empty err=%v", err)
	}
}

func grid(n int) *Mesh {
	m := &Mesh{}
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			z := float32(math.Sin(float64(x)) * math.Cos(float64(y)))
			m.Positions = append(m.Positions, mgl32.Vec3{float32(x), float32(y), z})
		}
	}
	row := n + 1
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*row + x
			m.Triangles = append(m.Triangles,
				Triangle{V: [3]int{i, i + 1, i + row}, T: [3]int{-1, -1, -1}},
				Triangle{V: [3]int{i + 1, i + row + 1, i + row}, T: [3]int{-1, -1, -1}},
			)
		}
	}
	return m
}

func TestPrepareSimplify(t *testing.T) {
	src := grid(12)
	before := len(src.Triangles)
	m, stats, err := Prepare(src, Options{SimplifyFactor: 0.5})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if stats.Triangles == 0 || stats.Triangles > before {
		t.Fatalf("triangles %d -> %d", before, stats.Triangles)
	}
	if m.HasUVs() {
		t.Fatalf("simplified mesh kept uvs")
	}
	for i, tri := range m.Triangles {
		for _, v := range tri.V {
			if v < 0 || v >= len(m.Positions) {
				t.Fatalf("triangle %d index %d out of range", i, v)
			}
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.obj"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err=%v, want not-exist", err)
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.OBJ")
	if err := os.WriteFile(path, []byte(tetra), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Triangles) != 4 {
		t.Fatalf("triangles=%d", len(m.Triangles))
	}
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]Format{"a.obj": FormatOBJ, "b.GLTF": FormatGLTF, "c.glb": FormatGLB} {
		got, err := DetectFormat(path)
		if err != nil || got != want {
			t.Fatalf("DetectFormat(%q)=%q, %v", path, got, err)
		}
	}
	if _, err := DetectFormat("d.stl"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("stl err=%v", err)
	}
}

func TestFromGLTF(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: gltf.Attribute{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
		}},
	}}

	m, err := fromGLTF(doc)
	if err != nil {
		t.Fatalf("fromGLTF: %v", err)
	}
	if len(m.Positions) != 4 || len(m.Triangles) != 2 {
		t.Fatalf("positions=%d triangles=%d", len(m.Positions), len(m.Triangles))
	}
	if m.Triangles[1].V != [3]int{0, 2, 3} {
		t.Fatalf("triangle 1=%v", m.Triangles[1].V)
	}
	if !m.HasUVs() {
		t.Fatalf("uvs lost")
	}

	if _, err := fromGLTF(gltf.NewDocument()); !errors.Is(err, ErrEmptyMesh) {
		t.Fatalf("empty doc err=%v", err)
	}
}

func TestFromGLTFSkipsNonTriangles(t *testing.T) {
	doc := gltf.NewDocument()
	linePos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {5, 5, 5}})
	triPos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Primitives: []*gltf.Primitive{
			{Mode: gltf.PrimitiveLines, Attributes: gltf.Attribute{gltf.POSITION: linePos}},
			{Attributes: gltf.Attribute{gltf.POSITION: triPos}},
		},
	}}

	m, err := fromGLTF(doc)
	if err != nil {
		t.Fatalf("fromGLTF: %v", err)
	}
	if len(m.Positions) != 3 || len(m.Triangles) != 1 {
		t.Fatalf("positions=%d triangles=%d", len(m.Positions), len(m.Triangles))
	}
	if m.Triangles[0].V != [3]int{0, 1, 2} || m.HasUVs() {
		t.Fatalf("triangle=%+v", m.Triangles[0])
	}
}

func TestFromGLTFErrors(t *testing.T) {
	triangle := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	cases := []struct {
		name  string
		build func(doc *gltf.Document)
		want  error
	}{
		{"two meshes", func(doc *gltf.Document) {
			pos := modeler.WritePosition(doc, triangle)
			prim := &gltf.Primitive{Attributes: gltf.Attribute{gltf.POSITION: pos}}
			doc.Meshes = []*gltf.Mesh{
				{Primitives: []*gltf.Primitive{prim}},
				{Primitives: []*gltf.Primitive{prim}},
			}
		}, ErrMultipleObjects},
		{"index count", func(doc *gltf.Document) {
			pos := modeler.WritePosition(doc, triangle)
			indices := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0})
			doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(indices),
				Attributes: gltf.Attribute{gltf.POSITION: pos},
			}}}}
		}, ErrNotTriangulated},
		{"index out of range", func(doc *gltf.Document) {
			pos := modeler.WritePosition(doc, triangle)
			indices := modeler.WriteIndices(doc, []uint16{0, 1, 7})
			doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(indices),
				Attributes: gltf.Attribute{gltf.POSITION: pos},
			}}}}
		}, ErrIndexOutOfRange},
		{"nan position", func(doc *gltf.Document) {
			nan := float32(math.NaN())
			pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {nan, 0, 0}, {0, 1, 0}})
			doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
				Attributes: gltf.Attribute{gltf.POSITION: pos},
			}}}}
		}, ErrNonFinite},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc := gltf.NewDocument()
			c.build(doc)
			if _, err := fromGLTF(doc); !errors.Is(err, c.want) {
				t.Fatalf("err=%v, want %v", err, c.want)
			}
		})
	}
}

func TestFromGLTFBadTexCoords(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	// A VEC3 accessor cannot hold texture coordinates
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
		Attributes: gltf.Attribute{gltf.POSITION: pos, gltf.TEXCOORD_0: pos},
	}}}}

	_, err := fromGLTF(doc)
	if err == nil || !strings.Contains(err.Error(), "texture coordinates") {
		t.Fatalf("err=%v, want a texture coordinate read error", err)
	}
}

package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"meshviewer/internal/mesh"
	"meshviewer/pkg/bounds"
)

// Server shares a directory of meshes and textures over HTTP so other viewers
// can load them by URL
type Server struct {
	root   string
	port   int
	server *http.Server
}

// NewServer creates a server for the files under root
func NewServer(root string, port int) *Server {
	return &Server{
		root: root,
		port: port,
	}
}

// Handler returns the server's routes:
//
//	GET /asset/{path}  raw file
//	GET /info/{path}   mesh statistics as JSON
//	GET /health        liveness
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /asset/{path...}", s.handleAsset)
	mux.HandleFunc("GET /info/{path...}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	fmt.Printf("Asset server serving %s on port %d\n", s.root, s.port)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// resolve maps a request path to a file under root, refusing anything that
// would escape it
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	rel := filepath.FromSlash(r.PathValue("path"))
	if !filepath.IsLocal(rel) {
		http.Error(w, "Invalid asset path", http.StatusBadRequest)
		return "", false
	}
	p := filepath.Join(s.root, rel)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return "", false
	}
	return p, true
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	p, ok := s.resolve(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "max-age=86400")
	http.ServeFile(w, r, p)
}

// BoxInfo is a bounding box in JSON form
type BoxInfo struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

func boxInfo(b bounds.Box) BoxInfo {
	return BoxInfo{Min: b.Min, Max: b.Max}
}

// MeshInfo describes a mesh served by /info
type MeshInfo struct {
	Path       string      `json:"path"`
	Format     mesh.Format `json:"format"`
	Vertices   int         `json:"vertices"`
	Triangles  int         `json:"triangles"`
	TexCoords  bool        `json:"tex_coords"`
	Degenerate int         `json:"degenerate"`
	Bounds     BoxInfo     `json:"bounds"`
	Normalized BoxInfo     `json:"normalized"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	p, ok := s.resolve(w, r)
	if !ok {
		return
	}

	format, err := mesh.DetectFormat(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}
	m, err := mesh.Load(p)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		http.Error(w, fmt.Sprintf("Failed to load mesh: %v", err), status)
		return
	}
	_, stats, err := mesh.Prepare(m, mesh.Options{})
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to prepare mesh: %v", err), http.StatusUnprocessableEntity)
		return
	}

	data, err := json.Marshal(MeshInfo{
		Path:       r.PathValue("path"),
		Format:     format,
		Vertices:   stats.Vertices,
		Triangles:  stats.Triangles,
		TexCoords:  stats.TexCoords,
		Degenerate: stats.Degenerate,
		Bounds:     boxInfo(stats.SourceBounds),
		Normalized: boxInfo(stats.Bounds),
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode mesh info: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

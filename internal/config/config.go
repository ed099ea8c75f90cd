package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// DefaultPath is the configuration file read when none is given
const DefaultPath = "meshviewer.json"

// Config holds application configuration
type Config struct {
	Window    Window    `json:"window"`
	Camera    Camera    `json:"camera"`
	Rendering Rendering `json:"rendering"`
	Assets    Assets    `json:"assets"`
}

// Window contains window parameters
type Window struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// FullScreen starts the viewer on the primary monitor
	FullScreen bool `json:"full_screen"`
}

// Camera contains camera parameters
type Camera struct {
	Position [3]float32 `json:"position"`
	FOVY     float32    `json:"fov_y"`
	Near     float32    `json:"near"`
	Far      float32    `json:"far"`

	// DragSpeed converts cursor pixels to world units while dragging
	DragSpeed float32 `json:"drag_speed"`

	// Smooth eases camera moves instead of snapping
	Smooth bool `json:"smooth"`
}

// Rendering contains rendering parameters
type Rendering struct {
	// Mode is the initial render mode character (v, e, f, t or m)
	Mode string `json:"mode"`

	PointSize     float32    `json:"point_size"`
	LightPosition [3]float32 `json:"light_position"`
	MeshColor     [3]float32 `json:"mesh_color"`

	// MaxTextureSize caps the texture's larger side in pixels
	MaxTextureSize int `json:"max_texture_size"`
}

// Assets names what to load at startup
type Assets struct {
	// Mesh and Texture are file paths or http(s) URLs; empty means none
	Mesh    string `json:"mesh"`
	Texture string `json:"texture"`

	// SimplifyFactor in (0, 1) decimates the mesh after loading
	SimplifyFactor float64 `json:"simplify_factor"`

	// CacheDir stores downloaded assets
	CacheDir string `json:"cache_dir"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: Window{
			Title:  "Mesh Viewer",
			Width:  500,
			Height: 500,
		},
		Camera: Camera{
			Position:  [3]float32{5, 5, 10},
			FOVY:      45,
			Near:      0.1,
			Far:       100,
			DragSpeed: 0.05,
			Smooth:    true,
		},
		Rendering: Rendering{
			Mode:           "f",
			PointSize:      5,
			LightPosition:  [3]float32{0, 2, 4},
			MeshColor:      [3]float32{0.8, 0.8, 0.8},
			MaxTextureSize: 2048,
		},
		Assets: Assets{
			CacheDir: ".asset_cache",
		},
	}
}

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		instance = loadDefault(DefaultPath)
	})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// loadDefault reads the optional configuration file at path. A missing file
// gives the defaults; a malformed one is reported and ignored.
func loadDefault(path string) *Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		fmt.Printf("Warning: ignoring %s: %v\n", path, err)
		return DefaultConfig()
	}
	return cfg
}

// Load merges a configuration file over the defaults and makes it the global
// instance
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	Set(cfg)
	return cfg, nil
}

// Set replaces the global instance
func Set(cfg *Config) {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// Save saves the global configuration to a file
func Save(path string) error {
	cfg := Get()

	mu.RLock()
	data, err := json.MarshalIndent(cfg, "", "  ")
	mu.RUnlock()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the viewer cannot run with
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip range %v..%v is invalid", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.FOVY <= 0 || c.Camera.FOVY >= 180 {
		return fmt.Errorf("camera fov %v out of range", c.Camera.FOVY)
	}
	if len(c.Rendering.Mode) != 1 {
		return fmt.Errorf("render mode %q must be a single character", c.Rendering.Mode)
	}
	if c.Rendering.PointSize <= 0 {
		return fmt.Errorf("point size %v must be positive", c.Rendering.PointSize)
	}
	if c.Rendering.MaxTextureSize <= 0 {
		return fmt.Errorf("max texture size %d must be positive", c.Rendering.MaxTextureSize)
	}
	if c.Assets.SimplifyFactor < 0 || c.Assets.SimplifyFactor > 1 {
		return fmt.Errorf("simplify factor %v must be within [0, 1]", c.Assets.SimplifyFactor)
	}
	return nil
}

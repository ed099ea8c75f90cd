package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Camera.Position != [3]float32{5, 5, 10} {
		t.Fatalf("camera start=%v", cfg.Camera.Position)
	}
	if cfg.Window.Width != 500 || cfg.Window.Height != 500 {
		t.Fatalf("window=%dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Rendering.Mode != "f" {
		t.Fatalf("mode=%q", cfg.Rendering.Mode)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	src := `{"window": {"width": 800}, "assets": {"mesh": "bunny.obj", "simplify_factor": 0.25}}`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 500 {
		t.Fatalf("window=%dx%d, want 800x500", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Assets.Mesh != "bunny.obj" || cfg.Assets.SimplifyFactor != 0.25 {
		t.Fatalf("assets=%+v", cfg.Assets)
	}
	if cfg.Camera.FOVY != 45 {
		t.Fatalf("fov lost default: %v", cfg.Camera.FOVY)
	}
	if Get() != cfg {
		t.Fatalf("Load did not replace the global instance")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("missing file err=%v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"window": `), 0644)
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("bad json err=%v", err)
	}

	invalid := filepath.Join(dir, "invalid.json")
	os.WriteFile(invalid, []byte(`{"rendering": {"mode": "fv"}}`), 0644)
	if _, err := Load(invalid); err == nil || !strings.Contains(err.Error(), "single character") {
		t.Fatalf("invalid mode err=%v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.05 }},
		{"fov", func(c *Config) { c.Camera.FOVY = 180 }},
		{"point size", func(c *Config) { c.Rendering.PointSize = 0 }},
		{"texture size", func(c *Config) { c.Rendering.MaxTextureSize = -1 }},
		{"simplify", func(c *Config) { c.Assets.SimplifyFactor = 1.5 }},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		c.modify(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: accepted", c.name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rendering.Mode = "e"
	cfg.Assets.Texture = "crate.png"
	Set(cfg)

	path := filepath.Join(t.TempDir(), "out.json")
	if err := Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Rendering.Mode != "e" || got.Assets.Texture != "crate.png" {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	if cfg := loadDefault(filepath.Join(dir, "missing.json")); cfg.Window.Width != 500 {
		t.Fatalf("missing file width=%d", cfg.Window.Width)
	}

	good := filepath.Join(dir, "good.json")
	os.WriteFile(good, []byte(`{"window": {"width": 800}}`), 0644)
	if cfg := loadDefault(good); cfg.Window.Width != 800 {
		t.Fatalf("width=%d, want 800", cfg.Window.Width)
	}

	// A type error still fills the fields decoded before it
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"window": {"width": 800, "height": "tall"}}`), 0644)
	cfg := loadDefault(bad)
	if cfg.Window.Width != 500 || cfg.Window.Height != 500 {
		t.Fatalf("malformed file leaked into config: %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
}

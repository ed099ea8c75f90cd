package main

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"meshviewer/internal/app"
	"meshviewer/internal/assets"
	"meshviewer/internal/config"
	"meshviewer/internal/controls"
	"meshviewer/internal/mesh"
	"meshviewer/internal/scene"
)

var (
	configPath string
	meshRef    string
	textureRef string
	modeFlag   string
	simplify   float64
	noSmooth   bool
	fullscreen bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "meshviewer [mesh.obj|mesh.gltf|mesh.glb]",
		Short: "WebGPU cube and mesh viewer",
		Long: `meshviewer - WebGPU cube and mesh viewer

Shows a unit cube as points, edges, coloured faces or textured faces, and an
optional OBJ/glTF mesh normalized into the cube's space. Mesh and texture may
be local paths or http(s) URLs.

` + controls.Help,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Assets.Mesh = args[0]
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultPath, "Configuration file")
	flags.StringVar(&meshRef, "mesh", "", "Mesh file or URL (OBJ, glTF, GLB)")
	flags.Float64Var(&simplify, "simplify", 0, "Keep this fraction of the mesh's triangles (0 or 1 = all)")
	cmd.Flags().StringVar(&textureRef, "texture", "", "Texture image file or URL (PNG, JPEG, GIF)")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Initial render mode: v, e, f, t or m")
	cmd.Flags().BoolVar(&noSmooth, "no-smooth", false, "Move the camera without easing")
	cmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "Start on the primary monitor")

	cmd.AddCommand(newInfoCommand(), newConfigCommand(), newServeCommand())

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies command-line overrides.
// A missing file is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if cmd.Flags().Changed("config") {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Get()
	}

	flags := cmd.Flags()
	if flags.Changed("mesh") {
		cfg.Assets.Mesh = meshRef
	}
	if flags.Changed("texture") {
		cfg.Assets.Texture = textureRef
	}
	if flags.Changed("mode") {
		cfg.Rendering.Mode = modeFlag
	}
	if flags.Changed("simplify") {
		cfg.Assets.SimplifyFactor = simplify
	}
	if noSmooth {
		cfg.Camera.Smooth = false
	}
	if fullscreen {
		cfg.Window.FullScreen = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	mode, err := scene.ParseMode([]rune(cfg.Rendering.Mode)[0])
	if err != nil {
		return err
	}

	cache, err := assets.NewCache(cfg.Assets.CacheDir)
	if err != nil {
		return err
	}
	paths, err := cache.LoadAll(ctx, cfg.Assets.Mesh, cfg.Assets.Texture)
	if err != nil {
		return err
	}
	meshPath, texturePath := paths[0], paths[1]

	state := scene.NewState()

	if meshPath != "" {
		m, stats, err := loadMesh(meshPath, cfg.Assets.SimplifyFactor)
		if err != nil {
			return fmt.Errorf("load mesh %s: %w", cfg.Assets.Mesh, err)
		}
		state.SetMesh(m, mgl32.Vec3(cfg.Rendering.MeshColor))
		fmt.Printf("Loaded mesh %s: %d vertices, %d triangles\n", cfg.Assets.Mesh, stats.Vertices, stats.Triangles)
		if stats.Degenerate > 0 {
			fmt.Printf("Warning: %d degenerate triangles have no normal\n", stats.Degenerate)
		}
	}

	var texture image.Image
	if texturePath != "" {
		img, err := assets.LoadImage(texturePath, cfg.Rendering.MaxTextureSize)
		if err != nil {
			return fmt.Errorf("load texture %s: %w", cfg.Assets.Texture, err)
		}
		texture = img
		state.Textured = true
	}

	if !state.SetMode(mode) {
		fmt.Printf("No mesh loaded; starting in %s mode\n", state.Mode)
	}

	fmt.Println("Mesh Viewer - WebGPU")
	fmt.Println(controls.Help)
	fmt.Println()

	application, err := app.New(cfg, state, texture)
	if err != nil {
		return err
	}
	defer application.Cleanup()

	return application.Run()
}

func loadMesh(path string, simplifyFactor float64) (*mesh.Mesh, mesh.Stats, error) {
	m, err := mesh.Load(path)
	if err != nil {
		return nil, mesh.Stats{}, err
	}
	return mesh.Prepare(m, mesh.Options{SimplifyFactor: simplifyFactor})
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"meshviewer/internal/assets"
	"meshviewer/internal/config"
	"meshviewer/internal/mesh"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <mesh.obj|mesh.gltf|mesh.glb>",
		Short: "Display mesh information",
		Long:  "Display the format, vertex and triangle counts, and bounding box of a mesh before and after normalization.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cache, err := assets.NewCache(cfg.Assets.CacheDir)
			if err != nil {
				return err
			}
			path, err := cache.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return runInfo(cmd.OutOrStdout(), args[0], path, cfg)
		},
	}
}

func runInfo(w io.Writer, ref, path string, cfg *config.Config) error {
	format, err := mesh.DetectFormat(path)
	if err != nil {
		return err
	}
	_, stats, err := loadMesh(path, cfg.Assets.SimplifyFactor)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "File:        %s\n", ref)
	fmt.Fprintf(w, "Format:      %s\n", format)
	fmt.Fprintf(w, "Vertices:    %d\n", stats.Vertices)
	fmt.Fprintf(w, "Triangles:   %d\n", stats.Triangles)
	fmt.Fprintf(w, "Tex coords:  %t\n", stats.TexCoords)
	if stats.Degenerate > 0 {
		fmt.Fprintf(w, "Degenerate:  %d\n", stats.Degenerate)
	}
	fmt.Fprintf(w, "Bounds:      %s\n", stats.SourceBounds)
	fmt.Fprintf(w, "Normalized:  %s\n", stats.Bounds)
	if f := cfg.Assets.SimplifyFactor; f > 0 && f < 1 {
		fmt.Fprintf(w, "Simplified:  factor %.2f\n", f)
	}
	return nil
}

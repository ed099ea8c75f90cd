package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"meshviewer/internal/config"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "Write the effective configuration",
		Long:  "Write the configuration that would be used, after merging the config file and flags, as JSON. The default path is " + config.DefaultPath + ".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}

			config.Set(cfg)
			if err := config.Save(path); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}

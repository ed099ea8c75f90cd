package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"meshviewer/internal/assets"
)

func newServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Share a directory of meshes and textures over HTTP",
		Long: `Serve the files under <dir> so other viewers can load them by URL:

  meshviewer http://host:port/asset/models/bunny.obj

/info/<path> returns a mesh's statistics as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			srv := assets.NewServer(args[0], port)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			go func() {
				<-stop
				srv.Stop()
			}()

			return srv.Start()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	return cmd
}

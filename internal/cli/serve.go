package cli

import (
	"github.com/spf13/cobra"

	"github.com/Two-Screen/multicon/pkg/engine/httpengine"
	"github.com/Two-Screen/multicon/pkg/engine/raster"
)

// serveCommand creates the serve command, which exposes the builtin
// rasterizer as an HTTP render service for "--engine http" clients.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Example: `  multicon serve --addr :8080
  multicon build icons/ --engine http --engine-url http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			handler := httpengine.NewHandler(raster.New(), logger)
			logger.Info("render service listening", "addr", addr)
			return httpengine.ListenAndServe(cmd.Context(), addr, handler)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Two-Screen/multicon/pkg/engine/process"
	"github.com/Two-Screen/multicon/pkg/engine/raster"
)

// engineCommand creates the engine command, the worker behind the
// "process" render engine.
func (c *CLI) engineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engine",
		Short: "Run the render worker on stdin/stdout",
		Long: `Run the render worker on stdin/stdout.

The worker prints a ready frame, then answers one JSON render request per
line until stdin is closed. The default "process" render engine starts it;
it is not meant to be run by hand.`,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return process.Serve(cmd.Context(), os.Stdin, os.Stdout, "builtin", raster.New())
		},
	}
}

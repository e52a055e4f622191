// Package cli implements the multicon command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Two-Screen/multicon/pkg/buildinfo"
	"github.com/Two-Screen/multicon/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = config.AppName

	// defaultAddr is where "multicon serve" listens.
	defaultAddr = ":8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag; empty loads multicon.toml if present.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Multicon renders SVG icons to PNG and CSS",
		Long: `Multicon turns a folder of SVG icons into PNG rasters at one or more scales
and three stylesheets per scale: SVG data URIs, PNG data URIs, and plain PNG
URLs for fallback.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default multicon.toml when present)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.engineCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration named by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "engine", cfg.Engine.Kind, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// interactive reports whether decorative output (the spinner) should be
// shown: stderr is a terminal and debug logging is off.
func (c *CLI) interactive() bool {
	return isTerminal(stderrFd()) && c.Logger.GetLevel() > log.DebugLevel
}

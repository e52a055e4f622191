package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Two-Screen/multicon/pkg/config"
	"github.com/Two-Screen/multicon/pkg/errors"
	"github.com/Two-Screen/multicon/pkg/pipeline"
)

// buildOpts holds flag values for the build command. Only flags the user
// actually set override the loaded configuration.
type buildOpts struct {
	dest      string
	baseDir   string
	scales    []float64
	prefix    string
	pngFolder string
	engine    string
	engineURL string
	timeout   time.Duration
	noCache   bool
	refresh   bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [svg files, directories or globs...]",
		Short: "Render SVG icons to PNG variants and stylesheets",
		Long: `Render SVG icons to PNG variants and stylesheets.

Sources come from the arguments, or from "src" in the config file when no
arguments are given. Directories are searched recursively for .svg files.
When the only argument is a directory and no base directory is configured,
that directory is used as the base directory.`,
		Example: `  # Render every icon in icons/ at 1x and 2x into public/
  multicon build icons/ -o public --scales 1,2

  # Use multicon.toml for everything
  multicon build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyBuildFlags(cmd, &cfg, opts)

			patterns := args
			if len(patterns) == 0 {
				patterns = cfg.Src
			}
			if len(patterns) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "no sources: pass SVG files or set src in %s", config.DefaultFile)
			}
			if dir, ok := soleDir(patterns); ok && cfg.BaseDir == "" {
				cfg.BaseDir = dir
			}
			return c.runBuild(cmd, cfg, patterns, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.dest, "output", "o", "", "output directory (dest)")
	f.StringVar(&opts.baseDir, "basedir", "", "prefix stripped from source names")
	f.Float64SliceVar(&opts.scales, "scales", nil, "scale factors, e.g. 1,2")
	f.StringVar(&opts.prefix, "prefix", "", "CSS class prefix (cssprefix)")
	f.StringVar(&opts.pngFolder, "png-folder", "", "raster folder below the output directory")
	f.StringVar(&opts.engine, "engine", "", "render engine: builtin, process, rsvg or http")
	f.StringVar(&opts.engineURL, "engine-url", "", "render service URL for --engine http")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-render timeout (0 keeps the configured value)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	f.BoolVar(&opts.refresh, "refresh", false, "re-render everything and refresh the cache")

	return cmd
}

// applyBuildFlags overlays explicitly set flags onto cfg.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config, opts buildOpts) {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Dest = opts.dest
	}
	if f.Changed("basedir") {
		cfg.BaseDir = opts.baseDir
	}
	if f.Changed("scales") {
		cfg.Scales = opts.scales
	}
	if f.Changed("prefix") {
		cfg.CSSPrefix = opts.prefix
	}
	if f.Changed("png-folder") {
		cfg.PNGFolder = opts.pngFolder
	}
	if f.Changed("engine") {
		cfg.Engine.Kind = opts.engine
	}
	if f.Changed("engine-url") {
		cfg.Engine.URL = opts.engineURL
	}
	if f.Changed("timeout") {
		cfg.Engine.Timeout = opts.timeout
	}
	if opts.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
}

func (c *CLI) runBuild(cmd *cobra.Command, cfg config.Config, patterns []string, opts buildOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if err := cfg.Validate(); err != nil {
		return err
	}
	sources, err := resolveSources(patterns)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve sources")
	}
	logger.Debug("resolved sources", "patterns", len(patterns), "files", len(sources))

	renderCache, err := cfg.OpenCache(ctx, logger)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, renderCache, nil, logger)
	runner.Refresh = opts.refresh
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering icons...")
	if c.interactive() {
		runner.Progress = func(done, total int) {
			spinner.SetMessage(fmt.Sprintf("Rendering icons... %d/%d", done, total))
		}
		spinner.Start()
	}

	result, err := runner.Execute(ctx, cfg, sources)
	spinner.Stop()
	if err != nil {
		if result != nil && len(result.Report.Written) > 0 {
			printWarning("%d files were written before the failure", len(result.Report.Written))
		}
		return err
	}

	prog.done(fmt.Sprintf("Built %d icons", result.Stats.Sources))
	printSuccess("Rendered %d variants of %d icons", result.Stats.Variants, result.Stats.Sources)
	printStats(result.Stats)
	for _, s := range result.Sheets {
		printFile(s.Name)
	}
	printDetail("Output: %s", cfg.Dest)
	return nil
}

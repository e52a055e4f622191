package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Two-Screen/multicon/pkg/artifact"
	"github.com/Two-Screen/multicon/pkg/cache"
	"github.com/Two-Screen/multicon/pkg/config"
	"github.com/Two-Screen/multicon/pkg/engine"
	"github.com/Two-Screen/multicon/pkg/observability"
	"github.com/Two-Screen/multicon/pkg/stylesheet"
	"github.com/Two-Screen/multicon/pkg/variant"
)

// Runner executes batches with an engine, a render cache and a logger.
//
// The Runner holds no per-batch state; one Runner may execute several
// batches in sequence.
type Runner struct {
	// Engine renders variants. Nil selects the engine named by the batch
	// configuration.
	Engine engine.Engine

	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Refresh bypasses cache lookups.
	Refresh bool

	// Progress, if set, receives render progress.
	Progress func(done, total int)
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(eng engine.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine: eng,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs collect, render, sheets and write for one batch.
//
// A failure before the write stage returns the partial Result (for
// inspection) and the error; nothing has been written in that case. Write
// failures are returned as Result.Report.Err().
func (r *Runner) Execute(ctx context.Context, cfg config.Config, sources []string) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	eng := r.Engine
	if eng == nil {
		var err error
		if eng, err = cfg.NewEngine(r.Logger); err != nil {
			return nil, err
		}
	}

	result := &Result{BatchID: uuid.NewString()}
	logger := r.Logger.With("batch", result.BatchID[:8])
	hooks := observability.Pipeline()

	// Stage 1: Collect
	collectStart := time.Now()
	variants, err := variant.Expand(sources, cfg.VariantOptions())
	result.Stats.CollectTime = time.Since(collectStart)
	result.Stats.Sources = countSources(variants)
	result.Stats.Variants = len(variants)
	hooks.OnCollect(ctx, result.Stats.Sources, len(variants), result.Stats.CollectTime, err)
	if err != nil {
		return result, fmt.Errorf("collect: %w", err)
	}
	result.Variants = variants

	logger.Info("collected sources",
		"sources", result.Stats.Sources,
		"variants", len(variants),
		"scales", cfg.Scales)
	if len(variants) == 0 {
		logger.Warn("no SVG sources matched")
	}

	// Stage 2: Render
	renderStart := time.Now()
	stats, err := Render(ctx, eng, variants, RenderOptions{
		Timeout:  cfg.Engine.Timeout,
		Cache:    r.Cache,
		Keyer:    r.Keyer,
		CacheTTL: cfg.Cache.TTL,
		Refresh:  r.Refresh,
		Progress: r.Progress,
		Logger:   logger,
	})
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.Rendered = stats.Rendered
	result.Stats.Cached = stats.Cached
	if err != nil {
		return result, fmt.Errorf("render: %w", err)
	}

	logger.Info(fmt.Sprintf("Rendered %d SVGs.", len(variants)),
		"engine", eng.Name(),
		"cached", stats.Cached,
		"duration", result.Stats.RenderTime)

	// Stage 3: Sheets
	sheets, err := stylesheet.Generate(variants, cfg.SheetNames())
	if err != nil {
		return result, fmt.Errorf("stylesheets: %w", err)
	}
	result.Sheets = sheets

	// Stage 4: Write
	writeStart := time.Now()
	result.Report = artifact.Writer{Dest: cfg.Dest}.Write(ctx, variants, sheets)
	result.Stats.WriteTime = time.Since(writeStart)
	if err := result.Report.Err(); err != nil {
		logger.Error("write failed",
			"failed", len(result.Report.Failed),
			"written", len(result.Report.Written))
		return result, fmt.Errorf("write: %w", err)
	}

	logger.Info("Generated icon stylesheets.",
		"sheets", len(sheets),
		"dest", cfg.Dest,
		"duration", result.Stats.WriteTime)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func countSources(variants []*variant.Variant) int {
	seen := make(map[string]bool)
	for _, v := range variants {
		seen[v.SourcePath] = true
	}
	return len(seen)
}

package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Two-Screen/multicon/pkg/cache"
	"github.com/Two-Screen/multicon/pkg/engine"
	"github.com/Two-Screen/multicon/pkg/errors"
	"github.com/Two-Screen/multicon/pkg/observability"
	"github.com/Two-Screen/multicon/pkg/variant"
)

// cacheKeyType labels render cache events for observability hooks.
const cacheKeyType = "raster"

// RenderOptions tunes the render stage. The zero value renders without
// cache and without a per-render timeout.
type RenderOptions struct {
	// Timeout bounds each render. Zero disables the bound.
	Timeout time.Duration

	// Cache and Keyer enable the render cache. A nil Cache disables it; a
	// nil Keyer selects cache.DefaultKeyer.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration

	// Refresh skips cache lookups but still stores fresh renders.
	Refresh bool

	// Progress, if set, is called after each variant with the number done.
	Progress func(done, total int)

	Logger *log.Logger
}

// RenderStats counts where rasters came from.
type RenderStats struct {
	Rendered int
	Cached   int
}

// Render rasterizes variants in order, one request at a time, storing each
// result on its variant.
//
// One engine session serves the whole batch. It is opened when the first
// variant misses the cache and closed before Render returns, on every path.
// The first failure stops the batch: later variants are not attempted and
// the error names the failing source and scale.
//
// Errors:
//   - ENGINE_STARTUP: the engine could not be opened
//   - RENDER_FAILED: the engine rejected a variant, crashed, or returned an
//     empty result
//   - TIMEOUT: a render exceeded opts.Timeout
//   - ctx.Err(): the caller cancelled
func Render(ctx context.Context, eng engine.Engine, variants []*variant.Variant, opts RenderOptions) (RenderStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keyer := opts.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	hooks := observability.Pipeline()

	var (
		stats   RenderStats
		session engine.Session
	)
	defer func() {
		if session != nil {
			_ = session.Close()
			hooks.OnEngineClose(ctx, eng.Name())
		}
	}()

	for i, v := range variants {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		src, scale := v.SourcePath, float64(v.Scale)
		hooks.OnRenderStart(ctx, src, scale)
		start := time.Now()

		var key string
		if opts.Cache != nil {
			key = keyer.RasterKey(eng.Name(), cache.Hash(v.SVG), scale)
			if !opts.Refresh && applyCached(ctx, opts.Cache, key, v, logger) {
				stats.Cached++
				hooks.OnRenderComplete(ctx, src, scale, true, time.Since(start), nil)
				logger.Debug("cached", "source", src, "scale", v.Scale)
				progress(opts.Progress, i+1, len(variants))
				continue
			}
		}

		if session == nil {
			openStart := time.Now()
			s, err := eng.Open(ctx)
			hooks.OnEngineOpen(ctx, eng.Name(), time.Since(openStart), err)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return stats, ctxErr
				}
				return stats, errors.Wrap(errors.ErrCodeEngineStartup, err, "start %s engine", eng.Name())
			}
			session = s
			logger.Debug("engine ready", "engine", eng.Name(), "duration", time.Since(openStart))
		}

		res, err := renderOne(ctx, session, v, opts.Timeout)
		hooks.OnRenderComplete(ctx, src, scale, false, time.Since(start), err)
		if err != nil {
			return stats, err
		}
		v.SetRaster(res.PNG, res.Width, res.Height)
		stats.Rendered++
		logger.Debug("rendered", "source", src, "scale", v.Scale,
			"width", res.Width, "height", res.Height, "duration", time.Since(start))

		if opts.Cache != nil {
			storeCached(ctx, opts.Cache, key, res, opts.CacheTTL, logger)
		}
		progress(opts.Progress, i+1, len(variants))
	}
	return stats, nil
}

// renderOne sends a single request and classifies the outcome.
func renderOne(ctx context.Context, s engine.Session, v *variant.Variant, timeout time.Duration) (engine.Result, error) {
	rctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := s.Render(rctx, engine.Request{SVG: v.SVG, Scale: float64(v.Scale)})
	switch {
	case err == nil:
		if len(res.PNG) == 0 || res.Width <= 0 || res.Height <= 0 {
			return engine.Result{}, errors.New(errors.ErrCodeRender,
				"render %s at scale %s: engine returned an empty result", v.SourcePath, v.Scale)
		}
		return res, nil
	case ctx.Err() != nil:
		return engine.Result{}, ctx.Err()
	case stderrors.Is(err, context.DeadlineExceeded):
		return engine.Result{}, errors.Wrap(errors.ErrCodeTimeout, err,
			"render %s at scale %s: no answer within %s", v.SourcePath, v.Scale, timeout)
	default:
		return engine.Result{}, errors.Wrap(errors.ErrCodeRender, err,
			"render %s at scale %s", v.SourcePath, v.Scale)
	}
}

// applyCached sets v's raster from the cache. Lookup and decode errors are
// logged and count as misses.
func applyCached(ctx context.Context, c cache.Cache, key string, v *variant.Variant, logger *log.Logger) bool {
	hooks := observability.Cache()
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		logger.Warn("render cache lookup failed", "source", v.SourcePath, "error", err)
		return false
	}
	if !hit {
		hooks.OnCacheMiss(ctx, cacheKeyType)
		return false
	}
	r, err := cache.DecodeRaster(data)
	if err != nil {
		logger.Debug("discarding cache entry", "source", v.SourcePath, "error", err)
		_ = c.Delete(ctx, key)
		hooks.OnCacheMiss(ctx, cacheKeyType)
		return false
	}
	hooks.OnCacheHit(ctx, cacheKeyType)
	v.SetRaster(r.PNG, r.Width, r.Height)
	return true
}

func storeCached(ctx context.Context, c cache.Cache, key string, res engine.Result, ttl time.Duration, logger *log.Logger) {
	data, err := cache.EncodeRaster(cache.Raster{PNG: res.PNG, Width: res.Width, Height: res.Height})
	if err == nil {
		err = c.Set(ctx, key, data, ttl)
	}
	if err != nil {
		logger.Warn("render cache store failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

func progress(fn func(done, total int), done, total int) {
	if fn != nil {
		fn(done, total)
	}
}

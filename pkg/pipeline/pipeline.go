// Package pipeline runs icon batches.
//
// A batch has four stages:
//
//  1. Collect: expand sources and scales into variants (pkg/variant)
//  2. Render: rasterize every variant through one engine session
//  3. Sheets: derive the svg, png and fallback stylesheets (pkg/stylesheet)
//  4. Write: persist rasters and sheets (pkg/artifact)
//
// Any error in the first three stages aborts the batch before anything is
// written. Write failures are reported per file.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, cache, nil, logger)
//	result, err := runner.Execute(ctx, cfg, sources)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(result.Report.Written), "files written")
//
// The render stage can also be driven directly:
//
//	variants, _ := variant.Expand(sources, opts)
//	stats, err := pipeline.Render(ctx, raster.NewEngine(), variants, pipeline.RenderOptions{})
package pipeline

import (
	"time"

	"github.com/Two-Screen/multicon/pkg/artifact"
	"github.com/Two-Screen/multicon/pkg/stylesheet"
	"github.com/Two-Screen/multicon/pkg/variant"
)

// Result holds everything a batch produced.
type Result struct {
	// BatchID identifies the batch in logs.
	BatchID string

	// Variants in collection order. After a render failure, variants before
	// the failing one carry raster data and the rest do not.
	Variants []*variant.Variant

	Sheets []stylesheet.Sheet

	Report artifact.Report

	Stats Stats
}

// Stats contains counts and stage timings.
type Stats struct {
	Sources  int
	Variants int
	Rendered int // rendered by the engine
	Cached   int // taken from the render cache

	CollectTime time.Duration
	RenderTime  time.Duration
	WriteTime   time.Duration
}

// Package pkg holds the multicon libraries.
//
// # Overview
//
// Multicon turns SVG icons into PNG rasters at one or more scale factors and
// writes three stylesheets per scale. The packages are layered:
//
//  1. [variant] - source discovery, class names and output paths
//  2. [engine] - the render session contract and its implementations
//  3. [cache] - rendered rasters keyed by engine, content and scale
//  4. [stylesheet] - CSS rules and sheet assembly
//  5. [artifact] - writing rasters and sheets to disk
//  6. [pipeline] - orchestration (collect → render → generate → write)
//  7. [config] - TOML and environment configuration
//
// # Data Flow
//
//	SVG files
//	    ↓
//	[variant] Expand (one variant per source and scale)
//	    ↓
//	[pipeline] Render (cache lookup, then one engine session)
//	    ↓
//	[stylesheet] Generate (svg, png and fallback sheets per scale)
//	    ↓
//	[artifact] Write
//
// # Quick Start
//
//	cfg := config.Default()
//	cfg.Engine.Kind = config.EngineBuiltin // the default re-executes "multicon engine"
//	cfg.Scales = []float64{1, 2}
//	cfg.Dest = "public"
//
//	runner := pipeline.NewRunner(nil, cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//	result, err := runner.Execute(ctx, cfg, []string{"icons/star.svg"})
//
// [variant]: github.com/Two-Screen/multicon/pkg/variant
// [engine]: github.com/Two-Screen/multicon/pkg/engine
// [cache]: github.com/Two-Screen/multicon/pkg/cache
// [stylesheet]: github.com/Two-Screen/multicon/pkg/stylesheet
// [artifact]: github.com/Two-Screen/multicon/pkg/artifact
// [pipeline]: github.com/Two-Screen/multicon/pkg/pipeline
// [config]: github.com/Two-Screen/multicon/pkg/config
package pkg

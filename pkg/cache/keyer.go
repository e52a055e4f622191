package cache

import "strconv"

// Keyer derives cache keys. Implementations must return different keys
// whenever any of the inputs differ.
type Keyer interface {
	// RasterKey identifies the raster produced by engine for the SVG whose
	// content hash is svgHash, at the given scale.
	RasterKey(engine, svgHash string, scale float64) string
}

// DefaultKeyer produces keys of the form "raster:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RasterKey hashes the engine name, content hash and scale together.
func (DefaultKeyer) RasterKey(engine, svgHash string, scale float64) string {
	return hashKey("raster", engine, svgHash, strconv.FormatFloat(scale, 'f', -1, 64))
}

var _ Keyer = DefaultKeyer{}

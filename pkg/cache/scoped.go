package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share one
// Redis or Mongo cache without seeing each other's entries.
//
// Example usage:
//
//	// Per-project namespace on a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "site-assets:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RasterKey generates a prefixed raster key.
func (k *ScopedKeyer) RasterKey(engine, svgHash string, scale float64) string {
	return k.prefix + k.inner.RasterKey(engine, svgHash, scale)
}

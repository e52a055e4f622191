package cache

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Raster is the cached form of one render result.
type Raster struct {
	PNG    []byte  `json:"png"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EncodeRaster serializes r for storage.
func EncodeRaster(r Raster) ([]byte, error) {
	if len(r.PNG) == 0 {
		return nil, errors.New("cache: empty raster")
	}
	return json.Marshal(r)
}

// DecodeRaster parses a stored raster. Entries with missing data are
// reported as ErrCorrupt so callers can treat them as misses.
func DecodeRaster(data []byte) (Raster, error) {
	var r Raster
	if err := json.Unmarshal(data, &r); err != nil {
		return Raster{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(r.PNG) == 0 || r.Width <= 0 || r.Height <= 0 {
		return Raster{}, ErrCorrupt
	}
	return r, nil
}

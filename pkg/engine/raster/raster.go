// Package raster rasterizes SVG markup into PNG in-process.
//
// The intrinsic size of an icon comes from the width and height attributes
// of its root <svg> element; an icon without both cannot be rendered. The
// output is Scale times that size, rounded up to whole pixels, and encoding
// is deterministic: the same markup and scale always give the same bytes.
package raster

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/Two-Screen/multicon/pkg/engine"
)

// Errors returned by Render. Both wrap engine.ErrRenderFailed.
var (
	ErrMissingSize = fmt.Errorf("%w: missing intrinsic size", engine.ErrRenderFailed)
	ErrMalformed   = fmt.Errorf("%w: malformed svg", engine.ErrRenderFailed)
)

// maxPixels bounds the canvas of a single render.
const maxPixels = 1 << 26

// Rasterizer renders SVG markup to PNG.
type Rasterizer struct {
	// Compression is the PNG compression level. Zero means png.BestCompression.
	Compression png.CompressionLevel
}

// New returns a Rasterizer with best PNG compression.
func New() *Rasterizer {
	return &Rasterizer{Compression: png.BestCompression}
}

// Render rasterizes svg at scale times its intrinsic size.
func (r *Rasterizer) Render(svg []byte, scale float64) (engine.Result, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return engine.Result{}, engine.Failed("invalid scale %v", scale)
	}

	w, h, err := IntrinsicSize(svg)
	if err != nil {
		return engine.Result{}, err
	}

	width, height := w*scale, h*scale
	// Bound in float space: huge sizes overflow int conversion.
	if width > maxPixels || height > maxPixels || math.Ceil(width)*math.Ceil(height) > maxPixels {
		return engine.Result{}, engine.Failed("canvas %gx%g too large", width, height)
	}
	pw, ph := int(math.Ceil(width)), int(math.Ceil(height))

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return engine.Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.X, icon.ViewBox.Y, icon.ViewBox.W, icon.ViewBox.H = 0, 0, w, h
	}
	icon.SetTarget(0, 0, width, height)

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1.0)

	level := r.Compression
	if level == 0 {
		level = png.BestCompression
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(level)); err != nil {
		return engine.Result{}, fmt.Errorf("encode png: %w", err)
	}

	return engine.Result{PNG: buf.Bytes(), Width: width, Height: height}, nil
}

// IntrinsicSize reads the width and height attributes of the root <svg>
// element. Values are parsed like CSS lengths: a leading number with an
// optional unit. Percentages and non-positive sizes are rejected.
func IntrinsicSize(svg []byte) (width, height float64, err error) {
	dec := xml.NewDecoder(bytes.NewReader(svg))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return 0, 0, fmt.Errorf("%w: no root element", ErrMalformed)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return 0, 0, fmt.Errorf("%w: root element is <%s>", ErrMalformed, start.Name.Local)
		}

		var ws, hs string
		for _, attr := range start.Attr {
			if attr.Name.Space != "" {
				continue
			}
			switch attr.Name.Local {
			case "width":
				ws = attr.Value
			case "height":
				hs = attr.Value
			}
		}
		if width, err = parseLength(ws); err != nil {
			return 0, 0, fmt.Errorf("%w: width: %v", ErrMissingSize, err)
		}
		if height, err = parseLength(hs); err != nil {
			return 0, 0, fmt.Errorf("%w: height: %v", ErrMissingSize, err)
		}
		return width, height, nil
	}
}

// parseLength parses the leading number of a length attribute ("20",
// "20px", "19.5pt").
func parseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("attribute not set")
	}
	if strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("relative length %q", s)
	}

	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && (s[end] == '+' || s[end] == '-'))) {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive length %q", s)
	}
	return v, nil
}

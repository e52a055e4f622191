// Package stylesheet derives the three icon stylesheets from rendered
// variants.
//
// Every scale that has at least one variant yields three sheets:
//
//   - svg: background-image is a base64 data URI of the source markup
//   - png: background-image is a base64 data URI of the rendered raster
//   - fallback: background-image is the raster's relative URL
//
// Rule order follows variant order. Nothing is sorted, so unchanged input
// produces byte-identical sheets.
package stylesheet

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/Two-Screen/multicon/pkg/errors"
	"github.com/Two-Screen/multicon/pkg/variant"
)

// Kind identifies one of the three sheet flavors.
type Kind string

// Sheet kinds, in the order they are emitted for each scale.
const (
	KindSVG      Kind = "svg"
	KindPNG      Kind = "png"
	KindFallback Kind = "fallback"
)

// Kinds lists every sheet kind in emission order.
var Kinds = []Kind{KindSVG, KindPNG, KindFallback}

// Default base names. The ".css" extension and scale suffix are added by
// Names.For.
const (
	DefaultSVGName      = "icons.data.svg"
	DefaultPNGName      = "icons.data.png"
	DefaultFallbackName = "icons.fallback"
)

const cssExt = ".css"

// Names holds the base file name of each sheet kind. Empty fields select
// the defaults.
type Names struct {
	SVG      string
	PNG      string
	Fallback string
}

// For returns the file name of the sheet of kind k at scale s.
//
//	Names{}.For(KindSVG, 1)   // "icons.data.svg.css"
//	Names{}.For(KindSVG, 2)   // "icons.data.svg.x2.css"
func (n Names) For(k Kind, s variant.Scale) string {
	var name string
	switch k {
	case KindSVG:
		name = orDefault(n.SVG, DefaultSVGName)
	case KindPNG:
		name = orDefault(n.PNG, DefaultPNGName)
	default:
		name = orDefault(n.Fallback, DefaultFallbackName)
	}
	if !strings.HasSuffix(name, cssExt) {
		name += cssExt
	}
	return variant.WithScale(name, s)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Sheet is the rule list of one (kind, scale) pair.
type Sheet struct {
	Kind  Kind
	Scale variant.Scale
	Name  string // file name relative to the output directory
	Rules []string
}

// Text joins the rules with a blank line, the on-disk form of the sheet.
func (s Sheet) Text() string {
	return strings.Join(s.Rules, "\n\n")
}

// Generate builds the sheets for a batch of rendered variants. Sheets are
// ordered by first appearance of their scale, then by kind. Scales with no
// variants produce no sheets.
//
// Every variant must have been rendered; an unrendered variant is an
// INVALID_INPUT error.
func Generate(variants []*variant.Variant, names Names) ([]Sheet, error) {
	var scales []variant.Scale
	byScale := make(map[variant.Scale][]*variant.Variant)
	for _, v := range variants {
		if !v.Rendered() {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"%s at scale %s has not been rendered", v.SourcePath, v.Scale)
		}
		if _, ok := byScale[v.Scale]; !ok {
			scales = append(scales, v.Scale)
		}
		byScale[v.Scale] = append(byScale[v.Scale], v)
	}

	sheets := make([]Sheet, 0, len(scales)*len(Kinds))
	for _, s := range scales {
		for _, k := range Kinds {
			group := byScale[s]
			rules := make([]string, 0, len(group))
			for _, v := range group {
				rules = append(rules, Rule(k, v))
			}
			sheets = append(sheets, Sheet{
				Kind:  k,
				Scale: s,
				Name:  names.For(k, s),
				Rules: rules,
			})
		}
	}
	return sheets, nil
}

// Rule renders the CSS rule of kind k for one variant.
func Rule(k Kind, v *variant.Variant) string {
	var url, size string
	switch k {
	case KindSVG:
		url = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(v.SVG)
		if v.Scale != 1 {
			size = SizeDeclaration(v.Width, v.Height)
		}
	case KindPNG:
		url = "data:image/png;base64," + base64.StdEncoding.EncodeToString(v.PNG)
	default:
		url = v.RelPath
	}

	var b strings.Builder
	b.WriteByte('.')
	b.WriteString(v.ClassName)
	b.WriteString(" { background-image: url(")
	b.WriteString(url)
	b.WriteString("); background-repeat: no-repeat; ")
	b.WriteString(size)
	b.WriteByte('}')
	return b.String()
}

// SizeDeclaration returns "background-size: Wpx; " for square sizes and
// "background-size: Wpx Hpx; " otherwise, including the trailing space.
func SizeDeclaration(width, height float64) string {
	w := strconv.FormatFloat(width, 'f', -1, 64) + "px"
	if width == height {
		return "background-size: " + w + "; "
	}
	return "background-size: " + w + " " + strconv.FormatFloat(height, 'f', -1, 64) + "px; "
}

// ByName indexes sheets by file name.
func ByName(sheets []Sheet) map[string]Sheet {
	m := make(map[string]Sheet, len(sheets))
	for _, s := range sheets {
		m[s.Name] = s
	}
	return m
}

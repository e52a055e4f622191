package variant

import (
	"path"
	"strconv"
	"strings"
)

// Scale is a magnification factor applied to a source's intrinsic size.
type Scale float64

// String formats the scale with the shortest exact decimal ("2", "1.5").
func (s Scale) String() string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// Suffix returns the file name suffix for a scale: empty for 1, ".x{s}" otherwise.
func Suffix(s Scale) string {
	if s == 1 {
		return ""
	}
	return ".x" + s.String()
}

// WithScale inserts the scale suffix immediately before the final extension
// of name. Directory components are left untouched.
//
//	WithScale("png/star.png", 2)          // "png/star.x2.png"
//	WithScale("icons.data.svg.css", 1.5)  // "icons.data.svg.x1.5.css"
//	WithScale("star", 2)                  // "star.x2"
func WithScale(name string, s Scale) string {
	suffix := Suffix(s)
	if suffix == "" {
		return name
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + suffix + ext
}

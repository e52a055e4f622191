package variant

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Two-Screen/multicon/pkg/errors"
)

const (
	// SourceExt is the only extension recognized as a vector source.
	SourceExt = ".svg"

	// RasterExt is the extension of rendered variants.
	RasterExt = ".png"

	// DefaultCSSPrefix is prepended to every class name.
	DefaultCSSPrefix = "icon-"

	// DefaultPNGFolder is the folder (below Dest) that receives rasters.
	DefaultPNGFolder = "png/"
)

// DefaultScales is used when no scales are configured.
var DefaultScales = []Scale{1}

// Variant is one (source, scale) rendering unit.
//
// SVG is read once during expansion and never modified. The raster fields
// are set together by SetRaster after a successful render.
type Variant struct {
	SourcePath string // originating vector file, as given
	Scale      Scale
	ClassName  string // shared by all scales of a source
	RelPath    string // slash-separated, relative to the output folder; used in URLs
	DestPath   string // absolute (or Dest-relative) file system path
	SVG        []byte

	PNG    []byte
	Width  float64
	Height float64

	rendered bool
}

// SetRaster stores a render result on the variant. Raster bytes and both
// dimensions are always populated together.
func (v *Variant) SetRaster(png []byte, width, height float64) {
	v.PNG = png
	v.Width = width
	v.Height = height
	v.rendered = true
}

// Rendered reports whether SetRaster has been called.
func (v *Variant) Rendered() bool {
	return v.rendered
}

// Options configures Expand. Zero values select the defaults.
type Options struct {
	BaseDir   string  // prefix stripped from source names
	Dest      string  // output directory
	PNGFolder string  // folder below Dest for rasters
	CSSPrefix string  // class name prefix
	Scales    []Scale // one variant per scale per source

	// ReadFile reads a source. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

func (o Options) withDefaults() Options {
	if o.PNGFolder == "" {
		o.PNGFolder = DefaultPNGFolder
	}
	if o.CSSPrefix == "" {
		o.CSSPrefix = DefaultCSSPrefix
	}
	if len(o.Scales) == 0 {
		o.Scales = DefaultScales
	}
	if o.ReadFile == nil {
		o.ReadFile = os.ReadFile
	}
	return o
}

// Expand turns sources and scales into variants, source-major, scale-minor.
//
// Entries without the .svg extension are dropped silently. Duplicate sources
// and duplicate scales are collapsed. Every source is read exactly once; the
// first read failure aborts expansion with a COLLECTION_FAILED error.
func Expand(sources []string, opts Options) ([]*Variant, error) {
	opts = opts.withDefaults()

	scales, err := uniqueScales(opts.Scales)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateRelPath(filepath.ToSlash(opts.PNGFolder)); err != nil {
		return nil, err
	}
	if err := errors.ValidateClassPrefix(opts.CSSPrefix); err != nil {
		return nil, err
	}

	base := normalizeBase(opts.BaseDir)
	classOwner := make(map[string]string)
	pathOwner := make(map[string]string)
	seen := make(map[string]bool)

	var variants []*Variant
	for _, src := range sources {
		if !strings.HasSuffix(src, SourceExt) || seen[src] {
			continue
		}
		seen[src] = true

		rel := RelName(src, base)
		if rel == "" || rel == "." {
			return nil, errors.New(errors.ErrCodeCollection, "source %q has an empty name", src)
		}
		if err := errors.ValidateRelPath(rel); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCollection, err,
				"source %q resolves outside the output folder; set a base directory that contains it", src)
		}

		className := opts.CSSPrefix + Slugify(rel)
		if other, ok := classOwner[className]; ok {
			return nil, errors.New(errors.ErrCodeCollection,
				"sources %q and %q both map to class %q", other, src, className)
		}
		classOwner[className] = src

		data, err := opts.ReadFile(src)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCollection, err, "read %s", src)
		}

		for _, s := range scales {
			relPath := path.Join(filepath.ToSlash(opts.PNGFolder), WithScale(rel+RasterExt, s))
			if other, ok := pathOwner[relPath]; ok {
				return nil, errors.New(errors.ErrCodeCollection,
					"sources %q and %q both map to output %q", other, src, relPath)
			}
			pathOwner[relPath] = src

			variants = append(variants, &Variant{
				SourcePath: src,
				Scale:      s,
				ClassName:  className,
				RelPath:    relPath,
				DestPath:   filepath.Join(opts.Dest, filepath.FromSlash(relPath)),
				SVG:        data,
			})
		}
	}
	return variants, nil
}

// RelName strips the extension and, when present, the base directory
// prefix from a source path. base must already be normalized with a
// trailing slash (or be empty). The result is slash-separated and never
// starts with '/', so absolute sources outside base are named as if base
// were the filesystem root.
func RelName(src, base string) string {
	rel := path.Clean(strings.TrimSuffix(filepath.ToSlash(src), SourceExt))
	if base != "" && strings.HasPrefix(rel, base) {
		rel = rel[len(base):]
	}
	return strings.TrimLeft(rel, "/")
}

// normalizeBase converts a base directory into a slash-terminated prefix.
func normalizeBase(dir string) string {
	if dir == "" {
		return ""
	}
	dir = path.Clean(filepath.ToSlash(dir))
	if dir == "." {
		return ""
	}
	if dir == "/" {
		return dir
	}
	return dir + "/"
}

// Slugify converts a relative source name into a class-name fragment.
// Directory separators become '-' and so does every rune outside
// [A-Za-z0-9_-].
func Slugify(rel string) string {
	var b strings.Builder
	b.Grow(len(rel))
	for _, r := range rel {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func uniqueScales(scales []Scale) ([]Scale, error) {
	out := make([]Scale, 0, len(scales))
	seen := make(map[Scale]bool, len(scales))
	for _, s := range scales {
		if err := errors.ValidateScale(float64(s)); err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

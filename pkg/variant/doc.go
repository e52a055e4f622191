// Package variant expands vector icon sources into scale variants.
//
// A [Variant] is one (source, scale) pair: the unit that gets rasterized,
// written to disk and referenced from the stylesheets. [Expand] turns a list
// of source paths and a list of scales into a flat, deterministic list of
// variants, source-major and scale-minor:
//
//	vs, err := variant.Expand([]string{"icons/star.svg"}, variant.Options{
//	    BaseDir: "icons",
//	    Dest:    "build",
//	    Scales:  []variant.Scale{1, 2},
//	})
//	// vs[0].RelPath == "png/star.png"
//	// vs[1].RelPath == "png/star.x2.png"
//
// # Naming
//
// File names for scale s != 1 carry a ".x{s}" suffix right before their
// extension. [WithScale] is the only implementation of that rule; the
// stylesheet package uses it for sheet names as well.
//
// Class names are namespaced by the full relative path ("a/icon.svg" becomes
// "icon-a-icon"), and any collision that remains after slugification is
// rejected at expansion time.
package variant

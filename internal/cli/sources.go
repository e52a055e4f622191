package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Two-Screen/multicon/pkg/variant"
)

// resolveSources expands command-line or config patterns into file paths.
//
//   - a directory is walked recursively for *.svg files (lexical order)
//   - a pattern containing *, ? or [ is expanded with filepath.Glob
//   - anything else is passed through unchanged
//
// Duplicates are dropped, keeping the first occurrence. Files that do not
// end in .svg are filtered later by variant.Expand.
func resolveSources(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range patterns {
		if strings.ContainsAny(p, "*?[") {
			matches, err := filepath.Glob(p)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, variant.SourceExt) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// soleDir returns the pattern when patterns is exactly one directory.
func soleDir(patterns []string) (string, bool) {
	if len(patterns) != 1 {
		return "", false
	}
	info, err := os.Stat(patterns[0])
	if err != nil || !info.IsDir() {
		return "", false
	}
	return patterns[0], true
}

// Package artifact persists rendered rasters and generated stylesheets.
//
// Every file is written independently. A failed write is recorded and the
// remaining files are still attempted; files already written stay on disk.
package artifact

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/Two-Screen/multicon/pkg/errors"
	"github.com/Two-Screen/multicon/pkg/observability"
	"github.com/Two-Screen/multicon/pkg/stylesheet"
	"github.com/Two-Screen/multicon/pkg/variant"
)

// FileMode is the permission of every written file.
const FileMode os.FileMode = 0644

// Writer writes artifacts below Dest. Variant paths are already absolute or
// Dest-relative; sheet names are joined onto Dest.
type Writer struct {
	Dest string
}

// Written describes one file that reached the disk.
type Written struct {
	Path string
	Size int
}

// Report lists the outcome of a write phase.
type Report struct {
	Written []Written
	Failed  []*errors.Error // WRITE_FAILED, one per file
}

// Err joins all write failures, or returns nil when every file was written.
func (r Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, e := range r.Failed {
		errs[i] = e
	}
	return stderrors.Join(errs...)
}

// Write persists each variant's raster and each sheet's text. Rasters are
// written first, in variant order, then sheets in the order given.
// Cancellation stops the phase between files; ctx.Err() is recorded as the
// failure of the first file that was skipped.
func (w Writer) Write(ctx context.Context, variants []*variant.Variant, sheets []stylesheet.Sheet) Report {
	var rep Report
	hooks := observability.Pipeline()

	write := func(path string, data []byte) bool {
		if err := ctx.Err(); err != nil {
			rep.Failed = append(rep.Failed, errors.Wrap(errors.ErrCodeWrite, err, "write %s", path))
			return false
		}
		err := writeFile(path, data)
		hooks.OnWrite(ctx, path, len(data), err)
		if err != nil {
			rep.Failed = append(rep.Failed, errors.Wrap(errors.ErrCodeWrite, err, "write %s", path))
			return true
		}
		rep.Written = append(rep.Written, Written{Path: path, Size: len(data)})
		return true
	}

	for _, v := range variants {
		if !v.Rendered() {
			rep.Failed = append(rep.Failed, errors.New(errors.ErrCodeWrite,
				"write %s: %s at scale %s has no raster", v.DestPath, v.SourcePath, v.Scale))
			continue
		}
		if !write(v.DestPath, v.PNG) {
			return rep
		}
	}
	for _, s := range sheets {
		if !write(filepath.Join(w.Dest, filepath.FromSlash(s.Name)), []byte(s.Text())) {
			return rep
		}
	}
	return rep
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, FileMode)
}

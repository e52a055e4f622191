// Package rsvg renders through librsvg's rsvg-convert command.
//
// Each request is one rsvg-convert invocation; the session only remembers
// the resolved binary. Requires librsvg: brew install librsvg (macOS),
// apt install librsvg2-bin (Linux).
package rsvg

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/Two-Screen/multicon/pkg/engine"
)

// DefaultBinary is the command looked up on PATH.
const DefaultBinary = "rsvg-convert"

// Engine implements engine.Engine on top of rsvg-convert.
type Engine struct {
	// Binary overrides the rsvg-convert command name or path.
	Binary string
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "rsvg" }

// Open resolves the binary. A missing binary is a startup error.
func (e *Engine) Open(ctx context.Context) (engine.Session, error) {
	bin := e.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, &engine.StartupError{
			Engine: e.Name(),
			Err:    fmt.Errorf("%s not found. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", bin),
		}
	}
	return &session{path: path}, nil
}

type session struct {
	path   string
	closed atomic.Bool
}

// Render runs rsvg-convert with the scale as zoom factor.
func (s *session) Render(ctx context.Context, req engine.Request) (engine.Result, error) {
	if s.closed.Load() {
		return engine.Result{}, engine.ErrClosed
	}

	cmd := exec.CommandContext(ctx, s.path, "-f", "png", "-z", strconv.FormatFloat(req.Scale, 'f', -1, 64))
	cmd.Stdin = bytes.NewReader(req.SVG)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return engine.Result{}, ctxErr
		}
		return engine.Result{}, engine.Failed("rsvg-convert: %v: %s", err, strings.TrimSpace(errBuf.String()))
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(out.Bytes()))
	if err != nil {
		return engine.Result{}, engine.Failed("rsvg-convert produced invalid png: %v", err)
	}

	return engine.Result{PNG: out.Bytes(), Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// Close implements engine.Session.
func (s *session) Close() error {
	s.closed.Store(true)
	return nil
}

var _ engine.Engine = (*Engine)(nil)

// Package engine defines the contract between the render pipeline and an
// external rasterization engine.
//
// An [Engine] starts sessions. A [Session] is one live connection to the
// engine: it accepts one [Request] at a time and answers with a [Result] or
// a failure. The pipeline owns the session for the whole batch and never
// issues a second request before the first has resolved; sessions are not
// required to be safe for concurrent use.
//
// Implementations:
//   - raster: in-process rasterizer (no external process)
//   - process: worker process speaking line-delimited JSON on stdin/stdout
//   - rsvg: rsvg-convert, one invocation per request
//   - httpengine: a render service reached over HTTP
package engine

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared by all engines.
var (
	// ErrRenderFailed is returned when the engine answered with its failure
	// variant: the item itself could not be rasterized.
	ErrRenderFailed = errors.New("render failed")

	// ErrStartup is returned by Open when the engine cannot start or exits
	// before it is ready.
	ErrStartup = errors.New("engine startup failed")

	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("session closed")
)

// Request asks the engine to rasterize SVG markup at Scale times its
// intrinsic size.
type Request struct {
	SVG   []byte
	Scale float64
}

// Result is a successful render: PNG bytes plus the final pixel size.
type Result struct {
	PNG    []byte
	Width  float64
	Height float64
}

// Engine opens render sessions.
type Engine interface {
	// Name identifies the engine in logs and cache keys.
	Name() string

	// Open starts the engine. It returns an error wrapping ErrStartup when
	// the engine cannot become ready.
	Open(ctx context.Context) (Session, error)
}

// Session is one live connection to an engine.
type Session interface {
	// Render sends one request and blocks until the engine answers, the
	// engine dies, or ctx is done.
	Render(ctx context.Context, req Request) (Result, error)

	// Close terminates the session. It is idempotent.
	Close() error
}

// Renderer rasterizes one item synchronously. It is what engine services
// (the worker process, the HTTP service) wrap; *raster.Rasterizer
// implements it.
type Renderer interface {
	Render(svg []byte, scale float64) (Result, error)
}

// RenderError is the engine's failure reply for one item.
type RenderError struct {
	Reason string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Reason == "" {
		return ErrRenderFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrRenderFailed, e.Reason)
}

// Unwrap makes errors.Is(err, ErrRenderFailed) hold.
func (e *RenderError) Unwrap() error { return ErrRenderFailed }

// Failed returns a RenderError with a formatted reason.
func Failed(format string, args ...any) error {
	return &RenderError{Reason: fmt.Sprintf(format, args...)}
}

// StartupError wraps the cause of a failed Open.
type StartupError struct {
	Engine string
	Err    error
}

// Error implements the error interface.
func (e *StartupError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Engine, ErrStartup, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *StartupError) Unwrap() []error { return []error{ErrStartup, e.Err} }

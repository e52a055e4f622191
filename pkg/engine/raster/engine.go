package raster

import (
	"context"
	"sync/atomic"

	"github.com/Two-Screen/multicon/pkg/engine"
)

// Engine runs a Rasterizer in the calling process.
type Engine struct {
	Rasterizer *Rasterizer
}

// NewEngine returns an in-process engine with default settings.
func NewEngine() *Engine {
	return &Engine{Rasterizer: New()}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "builtin" }

// Open implements engine.Engine. It never fails.
func (e *Engine) Open(ctx context.Context) (engine.Session, error) {
	r := e.Rasterizer
	if r == nil {
		r = New()
	}
	return &session{r: r}, nil
}

type session struct {
	r      *Rasterizer
	closed atomic.Bool
}

func (s *session) Render(ctx context.Context, req engine.Request) (engine.Result, error) {
	if s.closed.Load() {
		return engine.Result{}, engine.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return engine.Result{}, err
	}
	return s.r.Render(req.SVG, req.Scale)
}

func (s *session) Close() error {
	s.closed.Store(true)
	return nil
}

var _ engine.Engine = (*Engine)(nil)

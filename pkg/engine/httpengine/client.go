package httpengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Two-Screen/multicon/pkg/engine"
	"github.com/Two-Screen/multicon/pkg/observability"
)

// Engine is the client side of the render service.
type Engine struct {
	// URL is the service base URL, e.g. "http://localhost:8080".
	URL string

	// Client defaults to a new http.Client without timeout; per-render
	// deadlines come from the caller's context.
	Client *http.Client
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "http" }

// Open probes /healthz. An unreachable or unhealthy service is a startup error.
func (e *Engine) Open(ctx context.Context) (engine.Session, error) {
	if e.URL == "" {
		return nil, &engine.StartupError{Engine: e.Name(), Err: fmt.Errorf("no service URL configured")}
	}
	client := e.Client
	if client == nil {
		client = &http.Client{}
	}
	base := strings.TrimSuffix(e.URL, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/healthz", nil)
	if err != nil {
		return nil, &engine.StartupError{Engine: e.Name(), Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &engine.StartupError{Engine: e.Name(), Err: err}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &engine.StartupError{Engine: e.Name(), Err: fmt.Errorf("healthz returned %s", resp.Status)}
	}

	return &session{base: base, client: client}, nil
}

type session struct {
	base   string
	client *http.Client
	closed atomic.Bool
}

// Render posts one request to /render.
func (s *session) Render(ctx context.Context, req engine.Request) (engine.Result, error) {
	if s.closed.Load() {
		return engine.Result{}, engine.ErrClosed
	}

	body, err := json.Marshal(renderRequest{SVG: req.SVG, Scale: req.Scale})
	if err != nil {
		return engine.Result{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/render", bytes.NewReader(body))
	if err != nil {
		return engine.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	hooks := observability.HTTP()
	host, path := httpReq.URL.Host, httpReq.URL.Path
	hooks.OnRequest(ctx, http.MethodPost, host, path)
	start := time.Now()

	resp, err := s.client.Do(httpReq)
	if err != nil {
		hooks.OnError(ctx, http.MethodPost, host, path, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return engine.Result{}, ctxErr
		}
		return engine.Result{}, engine.Failed("request: %v", err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodPost, host, path, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		var out renderResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return engine.Result{}, engine.Failed("decode response: %v", err)
		}
		return engine.Result{PNG: out.PNG, Width: out.Width, Height: out.Height}, nil
	case http.StatusUnprocessableEntity:
		var out errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return engine.Result{}, &engine.RenderError{Reason: out.Error}
	default:
		var out errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return engine.Result{}, engine.Failed("service returned %s: %s", resp.Status, out.Error)
	}
}

// Close implements engine.Session.
func (s *session) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.client.CloseIdleConnections()
	}
	return nil
}

var _ engine.Engine = (*Engine)(nil)

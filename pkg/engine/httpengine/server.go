package httpengine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Two-Screen/multicon/pkg/engine"
)

// MaxRequestBytes bounds the size of a render request body.
const MaxRequestBytes = 8 << 20

type renderRequest struct {
	SVG   []byte  `json:"svg"`
	Scale float64 `json:"scale"`
}

type renderResponse struct {
	PNG    []byte  `json:"png"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler returns the render service routes.
func NewHandler(renderer engine.Renderer, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(MaxRequestBytes))
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/render", func(w http.ResponseWriter, r *http.Request) {
		var req renderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
		if len(req.SVG) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "svg is required"})
			return
		}

		res, err := renderer.Render(req.SVG, req.Scale)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, engine.ErrRenderFailed) {
				status = http.StatusUnprocessableEntity
			}
			reason := strings.TrimPrefix(err.Error(), engine.ErrRenderFailed.Error()+": ")
			writeJSON(w, status, errorResponse{Error: reason})
			return
		}
		writeJSON(w, http.StatusOK, renderResponse{PNG: res.PNG, Width: res.Width, Height: res.Height})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one debug line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Millisecond))
		})
	}
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

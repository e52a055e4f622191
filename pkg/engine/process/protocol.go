package process

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/Two-Screen/multicon/pkg/engine"
)

// Frame types.
const (
	frameReady  = "ready"
	frameRender = "render"
	frameOK     = "ok"
	frameFail   = "fail"
)

// frame is the single wire message shape; Type selects which fields are set.
// Markup travels as base64 like the PNG so non-UTF-8 sources arrive intact.
type frame struct {
	Type   string  `json:"type"`
	Engine string  `json:"engine,omitempty"`
	SVG    []byte  `json:"svg,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
	PNG    []byte  `json:"png,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

// Serve runs the worker loop: it announces readiness on w, then answers
// render requests read from r until r reaches EOF or ctx is done.
//
// Render failures are reported to the client as fail frames and do not stop
// the loop. A broken stream (malformed JSON, write error) ends Serve with an
// error.
func Serve(ctx context.Context, r io.Reader, w io.Writer, name string, renderer engine.Renderer) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)

	if err := enc.Encode(frame{Type: frameReady, Engine: name}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req frame
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := enc.Encode(answer(req, renderer)); err != nil {
			return err
		}
	}
}

func answer(req frame, renderer engine.Renderer) frame {
	if req.Type != frameRender {
		return frame{Type: frameFail, Reason: "unexpected frame type " + req.Type}
	}
	res, err := renderer.Render(req.SVG, req.Scale)
	if err != nil {
		return frame{Type: frameFail, Reason: strings.TrimPrefix(err.Error(), engine.ErrRenderFailed.Error()+": ")}
	}
	return frame{Type: frameOK, PNG: res.PNG, Width: res.Width, Height: res.Height}
}

package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Two-Screen/multicon/pkg/engine"
)

// DefaultReadyTimeout bounds how long Open waits for the ready frame.
const DefaultReadyTimeout = 10 * time.Second

// Engine starts a worker process per session.
type Engine struct {
	// Command is the worker command line. Defaults to the running
	// executable with the "engine" subcommand.
	Command []string

	// Env is appended to the current environment.
	Env []string

	// Stderr receives the worker's stderr. Defaults to os.Stderr.
	Stderr io.Writer

	// ReadyTimeout bounds the wait for the ready frame.
	ReadyTimeout time.Duration

	Logger *log.Logger
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "process" }

func (e *Engine) command() ([]string, error) {
	if len(e.Command) > 0 {
		return e.Command, nil
	}
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return []string{self, "engine"}, nil
}

// Open starts the worker and waits until it reports ready.
func (e *Engine) Open(ctx context.Context) (engine.Session, error) {
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	argv, err := e.command()
	if err != nil {
		return nil, &engine.StartupError{Engine: e.Name(), Err: err}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stderr = e.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &engine.StartupError{Engine: e.Name(), Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &engine.StartupError{Engine: e.Name(), Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &engine.StartupError{Engine: e.Name(), Err: err}
	}

	s := &session{
		cmd:    cmd,
		stdin:  stdin,
		enc:    json.NewEncoder(stdin),
		frames: make(chan frame),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.readLoop(stdout)

	timeout := e.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	if err := s.awaitReady(ctx, timeout); err != nil {
		s.Close()
		return nil, &engine.StartupError{Engine: e.Name(), Err: err}
	}

	logger.Debug("render engine ready", "pid", cmd.Process.Pid, "command", argv[0])
	return s, nil
}

// session is one running worker. Render calls are serialized by mu; Close
// may be called concurrently with Render.
type session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	enc    *json.Encoder
	frames chan frame
	quit   chan struct{}
	done   chan struct{}
	logger *log.Logger

	mu        sync.Mutex
	closeOnce sync.Once

	// set by readLoop before done is closed
	readErr error
	exitErr error
}

// readLoop decodes frames until the stream ends, then reaps the process.
func (s *session) readLoop(stdout io.Reader) {
	defer close(s.done)
	defer close(s.frames)

	dec := json.NewDecoder(stdout)
	for {
		var f frame
		if err := dec.Decode(&f); err != nil {
			s.readErr = err
			break
		}
		select {
		case s.frames <- f:
		case <-s.quit:
			s.readErr = engine.ErrClosed
			io.Copy(io.Discard, stdout)
			s.exitErr = s.cmd.Wait()
			return
		}
	}
	s.exitErr = s.cmd.Wait()
}

// exitReason describes why the frame stream ended. Only valid once done is closed.
func (s *session) exitReason() error {
	<-s.done
	if s.exitErr != nil {
		return fmt.Errorf("engine exited: %w", s.exitErr)
	}
	if s.readErr != nil && !errors.Is(s.readErr, io.EOF) {
		return fmt.Errorf("engine output: %w", s.readErr)
	}
	return errors.New("engine exited")
}

func (s *session) awaitReady(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case f, ok := <-s.frames:
		if !ok {
			return fmt.Errorf("before ready: %w", s.exitReason())
		}
		if f.Type != frameReady {
			return fmt.Errorf("expected ready frame, got %q", f.Type)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("not ready after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Render implements engine.Session.
func (s *session) Render(ctx context.Context, req engine.Request) (engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.quit:
		return engine.Result{}, engine.ErrClosed
	default:
	}

	// The write happens off the caller's goroutine so a worker that stopped
	// reading cannot outlive ctx.
	sent := make(chan error, 1)
	go func() {
		sent <- s.enc.Encode(frame{Type: frameRender, SVG: req.SVG, Scale: req.Scale})
	}()

	select {
	case err := <-sent:
		if err != nil {
			return engine.Result{}, engine.Failed("send request: %v", s.exitReasonOr(err))
		}
	case <-ctx.Done():
		s.Close()
		return engine.Result{}, ctx.Err()
	}

	select {
	case f, ok := <-s.frames:
		if !ok {
			return engine.Result{}, engine.Failed("%v", s.exitReason())
		}
		switch f.Type {
		case frameOK:
			return engine.Result{PNG: f.PNG, Width: f.Width, Height: f.Height}, nil
		case frameFail:
			return engine.Result{}, &engine.RenderError{Reason: f.Reason}
		default:
			return engine.Result{}, engine.Failed("unexpected %q frame", f.Type)
		}
	case <-ctx.Done():
		s.Close()
		return engine.Result{}, ctx.Err()
	}
}

// exitReasonOr prefers the process exit status over a pipe write error when
// the worker has already gone away.
func (s *session) exitReasonOr(err error) error {
	select {
	case <-s.done:
		return s.exitReason()
	case <-time.After(100 * time.Millisecond):
		return err
	}
}

// Close implements engine.Session. It stops the worker unconditionally.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		s.stdin.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.done
		s.logger.Debug("render engine stopped")
	})
	return nil
}

var _ engine.Engine = (*Engine)(nil)

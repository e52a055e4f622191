package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLine(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("rendered", "variants", 4, "batch", "1a2b3c4d")

	line := strings.TrimRight(buf.String(), "\n")
	// Timestamps carry hundredths: "14:32:01.45 INFO ...".
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} INFO rendered`).MatchString(line) {
		t.Errorf("line = %q, want HH:MM:SS.hh timestamp then level and message", line)
	}
	for _, kv := range []string{"variants=4", "batch=1a2b3c4d"} {
		if !strings.Contains(line, kv) {
			t.Errorf("line = %q, missing %q", line, kv)
		}
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("collected") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("render start") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("render start") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("render cache disabled") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line at info level: %q", buf.String())
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug line missing after SetLogLevel: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("Built 3 icons")

	if !regexp.MustCompile(`Built 3 icons \(\d+(\.\d+)?m?s\)`).MatchString(buf.String()) {
		t.Errorf("output = %q, want message with elapsed time", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}
}

package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/Two-Screen/multicon/pkg/config"
	"github.com/Two-Screen/multicon/pkg/engine/raster"
	"github.com/Two-Screen/multicon/pkg/errors"
)

const starSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20" viewBox="0 0 20 20">` +
	`<polygon points="10,1 12,8 19,8 13,12 15,19 10,15 5,19 7,12 1,8 8,8" fill="#fc0"/></svg>`

func writeSources(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func testConfig(src, dest string, scales ...float64) config.Config {
	cfg := config.Default()
	cfg.BaseDir = src
	cfg.Dest = dest
	cfg.Scales = scales
	cfg.Cache.Backend = config.CacheNone
	cfg.Engine.Kind = config.EngineBuiltin
	return cfg
}

func quietRunner(eng *fakeEngine) *Runner {
	r := NewRunner(raster.NewEngine(), nil, nil, log.New(io.Discard))
	if eng != nil {
		r.Engine = eng
	}
	return r
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			rel, _ := filepath.Rel(dir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return files
}

func TestExecuteStarAtTwoScales(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	sources := writeSources(t, src, map[string]string{"star.svg": starSVG})

	result, err := quietRunner(nil).Execute(context.Background(), testConfig(src, dest, 1, 2), sources)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.BatchID == "" {
		t.Error("BatchID should be set")
	}
	if result.Stats.Sources != 1 || result.Stats.Variants != 2 || result.Stats.Rendered != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}

	want := []string{
		"icons.data.png.css", "icons.data.png.x2.css",
		"icons.data.svg.css", "icons.data.svg.x2.css",
		"icons.fallback.css", "icons.fallback.x2.css",
		"png/star.png", "png/star.x2.png",
	}
	if got := listFiles(t, dest); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("files = %v, want %v", got, want)
	}

	data, err := os.ReadFile(filepath.Join(dest, "png", "star.x2.png"))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("star.x2.png is not a PNG: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 40 {
		t.Errorf("star.x2.png is %dx%d, want 40x40", cfg.Width, cfg.Height)
	}

	css, _ := os.ReadFile(filepath.Join(dest, "icons.data.svg.x2.css"))
	if !strings.Contains(string(css), "background-size: 40px; ") {
		t.Errorf("x2 svg sheet lacks background-size:\n%s", css)
	}
	css, _ = os.ReadFile(filepath.Join(dest, "icons.data.svg.css"))
	if strings.Contains(string(css), "background-size") {
		t.Errorf("x1 svg sheet must not set background-size:\n%s", css)
	}
	css, _ = os.ReadFile(filepath.Join(dest, "icons.fallback.css"))
	if want := ".icon-star { background-image: url(png/star.png); background-repeat: no-repeat; }"; string(css) != want {
		t.Errorf("fallback sheet =\n%s\nwant\n%s", css, want)
	}
}

func TestExecuteRenderFailureWritesNothing(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	sources := writeSources(t, src, map[string]string{
		"a.svg": starSVG, "b.svg": starSVG, "c.svg": starSVG, "d.svg": starSVG, "e.svg": starSVG,
	})

	eng := &fakeEngine{failAt: 3}
	result, err := quietRunner(eng).Execute(context.Background(), testConfig(src, dest, 1), sources)
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Fatalf("err = %v, want RENDER_FAILED", err)
	}
	failed := result.Variants[2]
	if !strings.Contains(err.Error(), failed.SourcePath) {
		t.Errorf("error should name %s: %v", failed.SourcePath, err)
	}
	if n := len(listFiles(t, dest)); n != 0 {
		t.Errorf("%d files written after a render failure", n)
	}
	if !result.Variants[0].Rendered() || !result.Variants[1].Rendered() || failed.Rendered() {
		t.Error("only the variants before the failure should hold rasters")
	}
}

func TestExecuteIdempotent(t *testing.T) {
	src := t.TempDir()
	sources := writeSources(t, src, map[string]string{
		"star.svg":     starSVG,
		"nav/star.svg": strings.Replace(starSVG, "#fc0", "#09f", 1),
	})

	run := func() map[string]string {
		dest := t.TempDir()
		if _, err := quietRunner(nil).Execute(context.Background(), testConfig(src, dest, 1, 1.5, 2), sources); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		out := make(map[string]string)
		for _, f := range listFiles(t, dest) {
			data, _ := os.ReadFile(filepath.Join(dest, f))
			out[f] = string(data)
		}
		return out
	}

	a, b := run(), run()
	if len(a) != 2*3+9 {
		t.Errorf("wrote %d files, want 15", len(a))
	}
	for name, data := range a {
		if b[name] != data {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestExecuteClassNamespacing(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	sources := writeSources(t, src, map[string]string{"a/icon.svg": starSVG, "b/icon.svg": starSVG})

	result, err := quietRunner(nil).Execute(context.Background(), testConfig(src, dest, 1), sources)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	classes := map[string]bool{}
	for _, v := range result.Variants {
		classes[v.ClassName] = true
	}
	if !classes["icon-a-icon"] || !classes["icon-b-icon"] {
		t.Errorf("classes = %v, want icon-a-icon and icon-b-icon", classes)
	}
}

func TestExecuteRejectsClassCollision(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	sources := writeSources(t, src, map[string]string{"a/b.svg": starSVG, "a-b.svg": starSVG})

	eng := &fakeEngine{}
	_, err := quietRunner(eng).Execute(context.Background(), testConfig(src, dest, 1), sources)
	if !errors.Is(err, errors.ErrCodeCollection) {
		t.Fatalf("err = %v, want COLLECTION_FAILED", err)
	}
	if eng.opens != 0 {
		t.Error("engine must not start when collection fails")
	}
}

func TestExecuteUnreadableSource(t *testing.T) {
	dest := t.TempDir()
	eng := &fakeEngine{}
	_, err := quietRunner(eng).Execute(context.Background(),
		testConfig("", dest, 1), []string{filepath.Join(t.TempDir(), "missing.svg")})
	if !errors.Is(err, errors.ErrCodeCollection) {
		t.Fatalf("err = %v, want COLLECTION_FAILED", err)
	}
	if eng.opens != 0 {
		t.Error("engine must not start when collection fails")
	}
}

func TestExecuteInvalidConfig(t *testing.T) {
	cfg := testConfig("", t.TempDir())
	if _, err := quietRunner(nil).Execute(context.Background(), cfg, nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestExecuteWriteFailure(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	sources := writeSources(t, src, map[string]string{"star.svg": starSVG})
	if err := os.WriteFile(filepath.Join(dest, "png"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	result, err := quietRunner(nil).Execute(context.Background(), testConfig(src, dest, 1), sources)
	if !errors.Is(err, errors.ErrCodeWrite) {
		t.Fatalf("err = %v, want WRITE_FAILED", err)
	}
	if len(result.Report.Failed) != 1 || len(result.Report.Written) != 3 {
		t.Errorf("report: %d failed, %d written", len(result.Report.Failed), len(result.Report.Written))
	}
}

func TestExecuteSkipsNonSVG(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	sources := writeSources(t, src, map[string]string{"star.svg": starSVG, "notes.txt": "hi"})

	result, err := quietRunner(nil).Execute(context.Background(), testConfig(src, dest, 1), sources)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Variants) != 1 {
		t.Errorf("variants = %d, want 1", len(result.Variants))
	}
}

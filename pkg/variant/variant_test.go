package variant

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	mcerrors "github.com/Two-Screen/multicon/pkg/errors"
)

const starSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20"><rect width="20" height="20"/></svg>`

// writeSources creates files below a temp dir and returns their paths.
func writeSources(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(starSVG), 0644); err != nil {
			t.Fatal(err)
		}
		paths[i] = p
	}
	return dir, paths
}

func TestExpandSingleSourceTwoScales(t *testing.T) {
	dir, paths := writeSources(t, "star.svg")

	vs, err := Expand(paths, Options{BaseDir: dir, Dest: "out", Scales: []Scale{1, 2}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(vs) != 2 {
		t.Fatalf("len = %d, want 2", len(vs))
	}

	want := []struct {
		scale Scale
		rel   string
		dest  string
	}{
		{1, "png/star.png", filepath.Join("out", "png", "star.png")},
		{2, "png/star.x2.png", filepath.Join("out", "png", "star.x2.png")},
	}
	for i, w := range want {
		v := vs[i]
		if v.Scale != w.scale || v.RelPath != w.rel || v.DestPath != w.dest {
			t.Errorf("variant[%d] = {%v %q %q}, want {%v %q %q}", i, v.Scale, v.RelPath, v.DestPath, w.scale, w.rel, w.dest)
		}
		if v.ClassName != "icon-star" {
			t.Errorf("variant[%d].ClassName = %q, want icon-star", i, v.ClassName)
		}
		if string(v.SVG) != starSVG {
			t.Errorf("variant[%d].SVG not read", i)
		}
		if v.Rendered() || v.PNG != nil {
			t.Errorf("variant[%d] should not be rendered yet", i)
		}
	}
}

func TestExpandCount(t *testing.T) {
	dir, paths := writeSources(t, "a.svg", "b.svg", "c.svg", "notes.txt", "d.SVG")

	for _, scales := range [][]Scale{{1}, {1, 2}, {1, 2, 3}, {1.5, 2, 4}} {
		vs, err := Expand(paths, Options{BaseDir: dir, Scales: scales})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		if want := 3 * len(scales); len(vs) != want {
			t.Errorf("scales %v: len = %d, want %d", scales, len(vs), want)
		}
		seen := make(map[string]bool)
		for _, v := range vs {
			if seen[v.RelPath] {
				t.Errorf("duplicate output path %q", v.RelPath)
			}
			seen[v.RelPath] = true
		}
	}
}

func TestExpandOrder(t *testing.T) {
	dir, paths := writeSources(t, "b.svg", "a.svg")

	vs, err := Expand(paths, Options{BaseDir: dir, Scales: []Scale{2, 1}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := make([]string, len(vs))
	for i, v := range vs {
		got[i] = v.RelPath
	}
	want := []string{"png/b.x2.png", "png/b.png", "png/a.x2.png", "png/a.png"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestExpandDefaults(t *testing.T) {
	dir, paths := writeSources(t, "star.svg")

	vs, err := Expand(paths, Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(vs) != 1 || vs[0].Scale != 1 {
		t.Fatalf("default scales should be [1], got %d variants", len(vs))
	}
	if vs[0].ClassName != "icon-star" || vs[0].RelPath != "png/star.png" {
		t.Errorf("defaults: class %q, rel %q", vs[0].ClassName, vs[0].RelPath)
	}
}

func TestExpandDuplicates(t *testing.T) {
	dir, paths := writeSources(t, "star.svg")
	paths = append(paths, paths[0])

	vs, err := Expand(paths, Options{BaseDir: dir, Scales: []Scale{1, 2, 2}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(vs) != 2 {
		t.Errorf("len = %d, want 2", len(vs))
	}
}

func TestExpandNestedNames(t *testing.T) {
	dir, paths := writeSources(t, "a/icon.svg", "b/icon.svg")

	vs, err := Expand(paths, Options{BaseDir: dir, CSSPrefix: "icon-wee-", PNGFolder: "img"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if vs[0].ClassName != "icon-wee-a-icon" || vs[1].ClassName != "icon-wee-b-icon" {
		t.Errorf("class names = %q, %q", vs[0].ClassName, vs[1].ClassName)
	}
	if vs[0].RelPath != "img/a/icon.png" {
		t.Errorf("RelPath = %q, want img/a/icon.png", vs[0].RelPath)
	}
}

func TestExpandClassCollision(t *testing.T) {
	dir, paths := writeSources(t, "a-b/icon.svg", "a/b-icon.svg")

	_, err := Expand(paths, Options{BaseDir: dir})
	if !mcerrors.Is(err, mcerrors.ErrCodeCollection) {
		t.Fatalf("err = %v, want COLLECTION_FAILED", err)
	}
}

func TestExpandBaseDirAbsent(t *testing.T) {
	vs, err := Expand([]string{"icons/star.svg"}, Options{
		BaseDir:  "elsewhere",
		ReadFile: func(string) ([]byte, error) { return []byte(starSVG), nil },
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if vs[0].ClassName != "icon-icons-star" {
		t.Errorf("ClassName = %q, want icon-icons-star", vs[0].ClassName)
	}
	if vs[0].RelPath != "png/icons/star.png" {
		t.Errorf("RelPath = %q", vs[0].RelPath)
	}
}

func TestExpandSourceOutsideOutput(t *testing.T) {
	reads := 0
	read := func(string) ([]byte, error) {
		reads++
		return []byte(starSVG), nil
	}
	for _, src := range []string{"../../star.svg", "../star.svg", "icons/../../star.svg"} {
		_, err := Expand([]string{src}, Options{Dest: "out", ReadFile: read})
		if !mcerrors.Is(err, mcerrors.ErrCodeCollection) {
			t.Errorf("Expand(%q) err = %v, want COLLECTION_FAILED", src, err)
		}
	}
	if reads != 0 {
		t.Errorf("ReadFile calls = %d, want 0", reads)
	}

	// The same file is fine once basedir contains it.
	vs, err := Expand([]string{"../../star.svg"}, Options{Dest: "out", BaseDir: "../..", ReadFile: read})
	if err != nil {
		t.Fatalf("Expand with basedir: %v", err)
	}
	if vs[0].RelPath != "png/star.png" || vs[0].DestPath != filepath.Join("out", "png", "star.png") {
		t.Errorf("RelPath = %q, DestPath = %q", vs[0].RelPath, vs[0].DestPath)
	}
}

func TestRelName(t *testing.T) {
	tests := []struct {
		src, base, want string
	}{
		{"icons/star.svg", "", "icons/star"},
		{"icons/star.svg", "icons/", "star"},
		{"/abs/x.svg", "", "abs/x"},
		{"/abs/x.svg", "/other/", "abs/x"},
		{"/abs/x.svg", "/", "abs/x"},
		{"/abs/x.svg", "/abs/", "x"},
		{"./a/./b.svg", "", "a/b"},
		{"../x.svg", "", "../x"},
	}
	for _, tt := range tests {
		if got := RelName(tt.src, tt.base); got != tt.want {
			t.Errorf("RelName(%q, %q) = %q, want %q", tt.src, tt.base, got, tt.want)
		}
	}
}

func TestExpandAbsoluteSourceWithoutBaseDir(t *testing.T) {
	vs, err := Expand([]string{"/abs/x.svg"}, Options{
		ReadFile: func(string) ([]byte, error) { return []byte(starSVG), nil },
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if vs[0].ClassName != "icon-abs-x" || vs[0].RelPath != "png/abs/x.png" {
		t.Errorf("ClassName = %q, RelPath = %q", vs[0].ClassName, vs[0].RelPath)
	}
}

func TestExpandReadError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Expand([]string{"a.svg", "b.svg"}, Options{
		ReadFile: func(string) ([]byte, error) {
			calls++
			return nil, boom
		},
	})
	if !mcerrors.Is(err, mcerrors.ErrCodeCollection) {
		t.Fatalf("err = %v, want COLLECTION_FAILED", err)
	}
	if !errors.Is(err, boom) {
		t.Error("cause should be preserved")
	}
	if calls != 1 {
		t.Errorf("ReadFile calls = %d, want 1", calls)
	}
}

func TestExpandMissingFile(t *testing.T) {
	_, err := Expand([]string{filepath.Join(t.TempDir(), "missing.svg")}, Options{})
	if !mcerrors.Is(err, mcerrors.ErrCodeCollection) {
		t.Fatalf("err = %v, want COLLECTION_FAILED", err)
	}
}

func TestExpandInvalidScale(t *testing.T) {
	_, err := Expand([]string{"a.svg"}, Options{Scales: []Scale{0.5}})
	if !mcerrors.Is(err, mcerrors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"star", "star"},
		{"social/twitter", "social-twitter"},
		{"my icon", "my-icon"},
		{"arrow_up-2", "arrow_up-2"},
		{"a.b", "a-b"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetRaster(t *testing.T) {
	v := &Variant{}
	v.SetRaster([]byte{1, 2}, 40, 20)
	if !v.Rendered() || v.Width != 40 || v.Height != 20 || len(v.PNG) != 2 {
		t.Errorf("SetRaster did not populate all fields: %+v", v)
	}
}

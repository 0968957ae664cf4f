package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/swatch/internal/pattern"
	"github.com/jmylchreest/swatch/internal/version"
)

// run executes the command tree with a static pattern model.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.openModel = func(pattern.OpenOptions) (pattern.Model, error) {
		return pattern.NewStaticModel(pattern.DefaultLabels, pattern.DefaultInputSize, pattern.LayoutNHWC,
			func(context.Context, []float32) ([]float32, error) {
				return []float32{0.01, 0.02, 0.03, 0.8734, 0.0566, 0.01}, nil
			})
	}
	return execute(t, a, args...)
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, dir, name string, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	for y := range 200 {
		for x := range 200 {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return path
}

var (
	forest = color.NRGBA{R: 34, G: 139, B: 34, A: 255}
	navy   = color.NRGBA{B: 128, A: 255}
)

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if want := "swatch " + version.Short() + " ("; !strings.HasPrefix(out, want) {
		t.Errorf("output = %q, want prefix %q", out, want)
	}
}

func TestNameCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"rgb triple", []string{"name", "34", "139", "34"}, "forestgreen #228b22\n"},
		{"hex", []string{"name", "#000"}, "black #000000\n"},
		{"near white", []string{"name", "230", "231", "229"}, "white #e6e7e5\n"},
		{"lab metric", []string{"name", "--namer.metric", "lab", "255", "0", "0"}, "red #ff0000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("name error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestNameCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"channel out of range", []string{"name", "300", "0", "0"}},
		{"bad hex", []string{"name", "#zzzzzz"}},
		{"two args", []string{"name", "1", "2"}},
		{"bad metric", []string{"name", "--namer.metric", "cmyk", "#fff"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNameList(t *testing.T) {
	out, err := run(t, "name", "--list")
	if err != nil {
		t.Fatalf("name --list error = %v", err)
	}
	names := strings.Split(strings.TrimSpace(out), "\n")
	for _, want := range []string{"black", "white", "forestgreen", "navy"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("vocabulary missing %q", want)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	path := writePNG(t, t.TempDir(), "shirt.png", forest)

	out, err := run(t, "extract", "-f", "json", "--cluster.seed", "1", path)
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := map[string]any{
		"dominant_color_name": "forestgreen",
		"average_color_name":  "forestgreen",
		"pattern":             "solid",
		"confidence":          "87.34%",
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("%s = %v, want %v", key, got[key], value)
		}
	}
}

func TestExtractText(t *testing.T) {
	path := writePNG(t, t.TempDir(), "shirt.png", forest)

	out, err := run(t, "extract", "--preview", path)
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}
	for _, want := range []string{"Dominant", "forestgreen #228b22", "solid", "87.34%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// A buffer is not a terminal, so --preview must not emit escapes.
	if strings.Contains(out, "\x1b[") {
		t.Errorf("output contains escape sequences:\n%q", out)
	}
}

func TestExtractDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "b_navy.png", navy)
	writePNG(t, dir, "a_forest.png", forest)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c_broken.png"), []byte("not a png"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "extract", "-f", "json", dir)
	if err != nil {
		t.Fatalf("extract error = %v", err)
	}
	var got []struct {
		Image      string         `json:"image"`
		Attributes map[string]any `json:"attributes"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2 (broken image skipped)", len(got))
	}
	if filepath.Base(got[0].Image) != "a_forest.png" || got[0].Attributes["dominant_color_name"] != "forestgreen" {
		t.Errorf("first result = %+v", got[0])
	}
	if filepath.Base(got[1].Image) != "b_navy.png" || got[1].Attributes["dominant_color_name"] != "navy" {
		t.Errorf("second result = %+v", got[1])
	}
}

func TestExtractErrors(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "shirt.png", forest)
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("not a png"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing file", []string{"extract", filepath.Join(dir, "absent.png")}, "invalid image path"},
		{"undecodable", []string{"extract", broken}, "invalid image path"},
		{"bad format", []string{"extract", "-f", "yaml", good}, "unsupported format"},
		{"bad k", []string{"extract", "--cluster.k", "0", good}, "invalid configuration"},
		{"crop larger than image", []string{"extract", "--crop.size", "300", good}, "failed to extract"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExtractWithoutModel(t *testing.T) {
	path := writePNG(t, t.TempDir(), "shirt.png", forest)

	_, err := execute(t, newApp(), "extract", path)
	if !errors.Is(err, pattern.ErrModelLoad) {
		t.Errorf("error = %v, want ErrModelLoad", err)
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	ini := filepath.Join(dir, "swatch.ini")
	if err := os.WriteFile(ini, []byte("[namer]\nmetric = cmyk\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "--config", ini, "name", "#fff"); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %v, want invalid configuration", err)
	}
	if _, err := run(t, "--config", filepath.Join(dir, "absent.ini"), "name", "#fff"); err == nil {
		t.Error("expected error for explicit missing config file")
	}
}

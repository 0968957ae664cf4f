package image

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, 8, 6, color.NRGBA{R: 34, G: 139, B: 34, A: 255})

	rgb, format, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if r, g, b := rgb.RGBAt(7, 5); r != 34 || g != 139 || b != 34 {
		t.Errorf("RGBAt(7,5) = %d,%d,%d", r, g, b)
	}

	if _, _, err := Decode(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Decode(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, _, err := Decode([]byte("definitely not an image")); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Decode(garbage) error = %v, want ErrInvalidImage", err)
	}
}

func TestDecodeReaderLimit(t *testing.T) {
	data := encodePNG(t, 16, 16, color.White)
	if _, _, err := DecodeReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Errorf("DecodeReader at exact limit error = %v", err)
	}
	if _, _, err := DecodeReader(bytes.NewReader(data), int64(len(data)-1)); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("DecodeReader over limit error = %v, want ErrInvalidImage", err)
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shirt.png")
	if err := os.WriteFile(path, encodePNG(t, 4, 4, color.Black), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := NewSmartLoader()
	img, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Len() != 16 {
		t.Errorf("Len() = %d, want 16", img.Len())
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty path", "", "cannot be empty"},
		{"missing file", filepath.Join(dir, "missing.png"), "not found"},
		{"directory", dir, "directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileLoader().Load(context.Background(), tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load(%q) error = %v, want containing %q", tt.path, err, tt.want)
			}
		})
	}
}

func TestScanDirectoryForImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o750); err != nil {
		t.Fatal(err)
	}

	files, err := ScanDirectoryForImages(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryForImages() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.JPG"), filepath.Join(dir, "b.png")}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("ScanDirectoryForImages() = %v, want %v", files, want)
	}

	if _, err := ScanDirectoryForImages(t.TempDir()); err == nil {
		t.Error("empty directory should fail")
	}
}

func TestIsURL(t *testing.T) {
	for in, want := range map[string]bool{
		"https://example.com/a.png": true,
		"http://x":                  true,
		"ftp://x":                   false,
		"/tmp/a.png":                false,
	} {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

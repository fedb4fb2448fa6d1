package image

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexStarov/escpos-netprint/util"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return path
}

func TestLibraryDecode(t *testing.T) {
	path := writePNG(t, solid(64, 32, color.Black))
	lib, _ := NewLibrary("")

	img, format, err := lib.Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q; want png", format)
	}
	if sz := img.Bounds().Size(); sz.X != 64 || sz.Y != 32 {
		t.Errorf("size = %dx%d; want 64x32", sz.X, sz.Y)
	}
}

func TestLibraryDecodeInvalid(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(garbage, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.jpg")},
		{name: "not an image", path: garbage},
		{name: "directory", path: dir},
	}

	lib, _ := NewLibrary("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := lib.Decode(tt.path)
			if !errors.Is(err, util.ErrInvalidImage) {
				t.Errorf("Decode(%s) error = %v; want ErrInvalidImage", tt.path, err)
			}
		})
	}
}

func TestNewLibraryFilters(t *testing.T) {
	for _, name := range []string{"", "lanczos3", "Lanczos2", "bicubic", "bilinear", "mitchell", "nearest", "catmull-rom"} {
		lib, err := NewLibrary(name)
		if err != nil {
			t.Errorf("NewLibrary(%q) failed: %v", name, err)
			continue
		}

		got := lib.Resize(solid(30, 20, color.White), 12, 7)
		if sz := got.Bounds().Size(); sz.X != 12 || sz.Y != 7 {
			t.Errorf("%s: Resize = %dx%d; want 12x7", lib.Filter(), sz.X, sz.Y)
		}
	}

	if _, err := NewLibrary("sinc"); err == nil {
		t.Error("NewLibrary(sinc) succeeded; want error")
	}
}

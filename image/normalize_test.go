package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/AlexStarov/escpos-netprint/util"
)

// recordingResizer fills the requested size with mid grey and remembers it.
type recordingResizer struct {
	calls         int
	width, height int
}

func (r *recordingResizer) Resize(img image.Image, width, height int) image.Image {
	r.calls++
	r.width, r.height = width, height
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := range dst.Pix {
		dst.Pix[i] = 0x80
	}
	return dst
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNormalizeScalesToWidth(t *testing.T) {
	lib, err := NewLibrary("lanczos3")
	if err != nil {
		t.Fatalf("NewLibrary failed: %v", err)
	}

	got, err := Normalize(solid(1152, 800, color.White), 576, lib)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if sz := got.Bounds().Size(); sz.X != 576 || sz.Y != 400 {
		t.Errorf("Normalize(1152x800, 576) = %dx%d; want 576x400", sz.X, sz.Y)
	}
}

func TestNormalizeSameWidthIsNoop(t *testing.T) {
	rs := &recordingResizer{}
	src := solid(576, 123, color.Black)

	got, err := Normalize(src, 576, rs)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if rs.calls != 0 {
		t.Errorf("Resize called %d times; want 0", rs.calls)
	}
	if sz := got.Bounds().Size(); sz.X != 576 || sz.Y != 123 {
		t.Errorf("size = %dx%d; want 576x123", sz.X, sz.Y)
	}
}

func TestNormalizeRatioProperty(t *testing.T) {
	for i := 0; i < 40; i++ {
		w, h := 1+rand.Intn(2000), 1+rand.Intn(2000)
		maxWidth := 1 + rand.Intn(800)

		rs := &recordingResizer{}
		got, err := Normalize(image.NewGray(image.Rect(0, 0, w, h)), maxWidth, rs)
		if err != nil {
			t.Fatalf("Normalize(%dx%d, %d) failed: %v", w, h, maxWidth, err)
		}

		sz := got.Bounds().Size()
		if sz.X != maxWidth {
			t.Errorf("Normalize(%dx%d, %d) width = %d", w, h, maxWidth, sz.X)
		}
		exact := float64(h) * float64(maxWidth) / float64(w)
		if math.Abs(float64(sz.Y)-exact) > 0.5 && sz.Y != 1 {
			t.Errorf("Normalize(%dx%d, %d) height = %d; want round(%.2f)", w, h, maxWidth, sz.Y, exact)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	lib, _ := NewLibrary("")
	src := image.NewNRGBA(image.Rect(0, 0, 300, 170))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 7)
	}

	once, err := Normalize(src, 384, lib)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	twice, err := Normalize(once, 384, lib)
	if err != nil {
		t.Fatalf("second Normalize failed: %v", err)
	}

	if once.Bounds() != twice.Bounds() {
		t.Fatalf("bounds changed: %v -> %v", once.Bounds(), twice.Bounds())
	}
	if !bytes.Equal(once.Pix, twice.Pix) {
		t.Error("second Normalize changed pixels")
	}
}

func TestNormalizeDoesNotMutateSource(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for i := range src.Pix {
		src.Pix[i] = byte(i)
	}
	before := append([]byte(nil), src.Pix...)

	got, err := Normalize(src, 40, &recordingResizer{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !bytes.Equal(before, src.Pix) {
		t.Error("Normalize modified its input")
	}
	if image.Image(got) == image.Image(src) {
		t.Error("Normalize returned its input")
	}
}

func TestNormalizeFlattensTransparency(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 18, 12)) // fully transparent, off-origin

	got, err := Normalize(src, 8, &recordingResizer{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got.Bounds().Min != (image.Point{}) {
		t.Errorf("bounds = %v; want origin", got.Bounds())
	}
	if c := got.RGBAAt(0, 0); c != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("transparent pixel = %v; want opaque white", c)
	}
}

func TestNormalizeRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		img      image.Image
		maxWidth int
	}{
		{name: "nil image", img: nil, maxWidth: 576},
		{name: "zero width", img: image.NewGray(image.Rect(0, 0, 0, 10)), maxWidth: 576},
		{name: "zero height", img: image.NewGray(image.Rect(0, 0, 10, 0)), maxWidth: 576},
		{name: "zero target", img: image.NewGray(image.Rect(0, 0, 10, 10)), maxWidth: 0},
		{name: "negative target", img: image.NewGray(image.Rect(0, 0, 10, 10)), maxWidth: -8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.img, tt.maxWidth, &recordingResizer{})
			if !errors.Is(err, util.ErrInvalidImage) {
				t.Errorf("Normalize error = %v; want ErrInvalidImage", err)
			}
		})
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1152, 800, 576, 576, 400},
		{1000, 333, 576, 576, 192}, // 191.8
		{100, 1, 10, 10, 1},        // rounds to 0, clamped
		{200, 3000, 384, 384, 5760},
	}
	for _, tt := range tests {
		gotW, gotH := ScaledSize(tt.w, tt.h, tt.max)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("ScaledSize(%d, %d, %d) = %d, %d; want %d, %d", tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

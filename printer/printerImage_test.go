package printer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	imgInternal "github.com/AlexStarov/escpos-netprint/image"
	utilInternal "github.com/AlexStarov/escpos-netprint/util"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{0xff, 0xff, 0xff, 0xff}
			if x < w/2 {
				c = color.RGBA{0, 0, 0, 0xff}
			}
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func testJob(path string) Job {
	return Job{
		ImagePath: path,
		Width:     576,
		Converter: imgInternal.Converter{MaxWidth: 576, Threshold: 0.5, Dither: imgInternal.DitherThreshold},
	}
}

func TestPrintImageRaster(t *testing.T) {
	lib, err := imgInternal.NewLibrary("lanczos3")
	if err != nil {
		t.Fatal(err)
	}
	fake := &fakePrinter{failAfter: -1}
	calls := 0
	s := NewSession(openerFor(fake, &calls), "TM-T20II", zap.NewNop())

	job := testJob(writeTestPNG(t, 1152, 800))
	job.DebugImage = filepath.Join(t.TempDir(), "debug.png")

	res, err := PrintImage(context.Background(), job, lib, s, zap.NewNop())
	if err != nil {
		t.Fatalf("PrintImage failed: %v", err)
	}

	// 576x400 after scaling: 72 bytes per row.
	data := fake.buf.Bytes()
	header := []byte{0x1d, 0x76, 0x30, 0x00, 0x48, 0x00, 0x90, 0x01}
	if !bytes.HasPrefix(data, header) {
		t.Fatalf("payload starts %x; want %x", data[:8], header)
	}
	if want := 8 + 72*400 + 5; len(data) != want || res.BytesWritten != want {
		t.Errorf("wrote %d bytes (result %d); want %d", len(data), res.BytesWritten, want)
	}
	if !bytes.HasSuffix(data, []byte{0x0a, 0x1d, 0x56, 0x41, 0x30}) {
		t.Errorf("payload ends %x; want line feed and cut", data[len(data)-5:])
	}
	// left half black: the first row starts with 0xff and ends with 0x00
	if data[8] != 0xff || data[8+71] != 0x00 {
		t.Errorf("first row bytes %x..%x; want ff..00", data[8], data[8+71])
	}
	if _, err := os.Stat(job.DebugImage); err != nil {
		t.Errorf("debug image not written: %v", err)
	}
}

func TestPrintImageMissingFileNeverConnects(t *testing.T) {
	lib, err := imgInternal.NewLibrary("lanczos3")
	if err != nil {
		t.Fatal(err)
	}
	fake := &fakePrinter{failAfter: -1}
	calls := 0
	s := NewSession(openerFor(fake, &calls), "TM-T20II", zap.NewNop())

	_, err = PrintImage(context.Background(), testJob(filepath.Join(t.TempDir(), "missing.png")), lib, s, zap.NewNop())
	if !errors.Is(err, utilInternal.ErrInvalidImage) {
		t.Fatalf("PrintImage error = %v; want ErrInvalidImage", err)
	}
	if calls != 0 {
		t.Errorf("opener called %d times; want 0", calls)
	}
	if s.State() != StateDisconnected {
		t.Errorf("session state = %v; want disconnected", s.State())
	}
}

func TestPrintImageVariantFollowsProfile(t *testing.T) {
	lib, err := imgInternal.NewLibrary("nearest")
	if err != nil {
		t.Fatal(err)
	}
	path := writeTestPNG(t, 16, 16)

	tests := []struct {
		profile string
		prefix  []byte
	}{
		{"TM-T20II", []byte{0x1d, 0x76, 0x30}},
		{"TM-T88IV", []byte{0x1d, 0x38, 0x4c}},
		{"TM-U220", []byte{0x1b, 0x33, 0x18}},
	}
	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			fake := &fakePrinter{failAfter: -1}
			calls := 0
			s := NewSession(openerFor(fake, &calls), tt.profile, zap.NewNop())

			job := testJob(path)
			job.Width = 16
			if _, err := PrintImage(context.Background(), job, lib, s, zap.NewNop()); err != nil {
				t.Fatalf("PrintImage failed: %v", err)
			}
			if !bytes.HasPrefix(fake.buf.Bytes(), tt.prefix) {
				t.Errorf("payload starts %x; want %x", fake.buf.Bytes()[:3], tt.prefix)
			}
		})
	}
}

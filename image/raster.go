package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/AlexStarov/escpos-netprint/util"
)

// Variant selects the ESC/POS command family used to print a raster.
type Variant string

const (
	// VariantRaster is GS v 0, one command for the whole image.
	VariantRaster Variant = "raster"
	// VariantGraphics is GS 8 L into the print buffer, then GS ( L to print,
	// in bands of at most gs8lMaxY rows.
	VariantGraphics Variant = "graphics"
	// VariantColumn is ESC * in 8-dot bands, for printers without GS v 0.
	VariantColumn Variant = "column"
)

const (
	gs8lMaxY = 831 // Ограничение по высоте для GS 8 L режима

	// RasterHeaderLen is the length of GS v 0 m, before the xL xH yL yH fields.
	RasterHeaderLen = 4

	maxField = 0xffff
)

// Raster is a packed monochrome bitmap: BytesWidth bytes per row, Height
// rows, top row first, MSB is the leftmost dot, 1 prints.
type Raster struct {
	Width      int // dots
	Height     int // rows
	BytesWidth int
	Data       []byte
}

// Dot reports whether the dot at (x, y) is printed.
func (r *Raster) Dot(x, y int) bool {
	return r.Data[y*r.BytesWidth+x/8]&(0x80>>uint(x%8)) != 0
}

// Image renders the raster back to black on white.
func (r *Raster) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if r.Dot(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// SavePNG writes Image() to path.
func (r *Raster) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create debug image file: %w", err)
	}
	if err := png.Encode(f, r.Image()); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode debug image: %w", err)
	}
	return f.Close()
}

func (r *Raster) validate() error {
	if r == nil {
		return fmt.Errorf("%w: no raster", util.ErrEncoding)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: zero-size bitmap %dx%d", util.ErrEncoding, r.Width, r.Height)
	}
	if r.BytesWidth != (r.Width+7)/8 {
		return fmt.Errorf("%w: %d bytes per row for %d dots", util.ErrEncoding, r.BytesWidth, r.Width)
	}
	if len(r.Data) != r.BytesWidth*r.Height {
		return fmt.Errorf("%w: %d data bytes, want %d", util.ErrEncoding, len(r.Data), r.BytesWidth*r.Height)
	}
	if r.BytesWidth > maxField {
		return fmt.Errorf("%w: %d bytes per row exceeds %d", util.ErrEncoding, r.BytesWidth, maxField)
	}
	if r.Height > maxField {
		return fmt.Errorf("%w: height %d exceeds %d", util.ErrEncoding, r.Height, maxField)
	}
	return nil
}

// Encode frames r as the ESC/POS command sequence for variant v. An empty
// variant means VariantRaster.
func Encode(r *Raster, v Variant) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	switch v {
	case VariantRaster, "":
		return encodeBitImage(r)
	case VariantGraphics:
		return encodeGraphics(r)
	case VariantColumn:
		return encodeColumn(r)
	default:
		return nil, fmt.Errorf("%w: unknown raster variant %q", util.ErrEncoding, v)
	}
}

// GS v 0 m xL xH yL yH d1...dk
func encodeBitImage(r *Raster) ([]byte, error) {
	xLH, err := util.IntLowHigh(r.BytesWidth, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrEncoding, err)
	}
	yLH, err := util.IntLowHigh(r.Height, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrEncoding, err)
	}

	densityByte := byte(0)
	out := make([]byte, 0, RasterHeaderLen+4+len(r.Data))
	out = append(out, 0x1d, 0x76, 0x30, densityByte)
	out = append(out, xLH...)
	out = append(out, yLH...)
	out = append(out, r.Data...)
	return out, nil
}

func encodeGraphics(r *Raster) ([]byte, error) {
	if r.Width > maxField {
		return nil, fmt.Errorf("%w: %d dots exceeds %d", util.ErrEncoding, r.Width, maxField)
	}

	var buf bytes.Buffer
	for l := 0; l < r.Height; {
		lines := gs8lMaxY
		if lines > r.Height-l {
			lines = r.Height - l
		}

		f112P := 10 + lines*r.BytesWidth

		buf.Write([]byte{
			0x1d, 0x38, 0x4c, // GS 8 L, Store the graphics data in the print buffer -- (raster format)
			byte(f112P), byte(f112P >> 8), byte(f112P >> 16), byte(f112P >> 24), // p1 p2 p3 p4
			0x30, 0x70, 0x30, // function 112
			0x01, 0x01, // bx, by -- zoom
			0x31,                              // c -- single-color printing model
			byte(r.Width), byte(r.Width >> 8), // xl, xh -- number of dots in the horizontal direction
			byte(lines), byte(lines >> 8), // yl, yh -- number of dots in the vertical direction
		})

		buf.Write(r.Data[l*r.BytesWidth : (l+lines)*r.BytesWidth])

		buf.Write([]byte{
			0x1d, 0x28, 0x4c, 0x02, 0x00, 0x30,
			0x32, //  Fn 50, print the buffer
		})

		l += lines
	}
	return buf.Bytes(), nil
}

// ESC * 0 nL nH d1...dk per band of 8 rows, each byte one column with the
// top dot in the MSB. Line spacing is set to the band height for the
// duration of the image and restored afterwards.
func encodeColumn(r *Raster) ([]byte, error) {
	nLH, err := util.IntLowHigh(r.Width, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrEncoding, err)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0x1b, 0x33, 24}) // ESC 3 n -- line spacing for 8-dot single density

	for band := 0; band < r.Height; band += 8 {
		buf.Write([]byte{0x1b, 0x2a, 0x00}) // ESC * m, 8-dot single density
		buf.Write(nLH)

		for x := 0; x < r.Width; x++ {
			var col byte
			for bit := 0; bit < 8; bit++ {
				if y := band + bit; y < r.Height && r.Dot(x, y) {
					col |= 0x80 >> uint(bit)
				}
			}
			buf.WriteByte(col)
		}
		buf.WriteByte('\n')
	}

	buf.Write([]byte{0x1b, 0x32}) // ESC 2 -- default line spacing
	return buf.Bytes(), nil
}

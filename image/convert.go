package image

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"

	"github.com/AlexStarov/escpos-netprint/util"
)

// DitherThreshold is plain thresholding with no error diffusion.
const DitherThreshold = "threshold"

var diffusionMatrices = map[string]dither.ErrorDiffusionMatrix{
	"floyd-steinberg":     dither.FloydSteinberg,
	"atkinson":            dither.Atkinson,
	"jarvis-judice-ninke": dither.JarvisJudiceNinke,
	"stucki":              dither.Stucki,
	"burkes":              dither.Burkes,
	"sierra-lite":         dither.SierraLite,
}

type Converter struct {
	// The maximum line width of the printer, in dots. Zero means no limit.
	MaxWidth int

	// The threashold between white and black dots
	Threshold float64

	// Dithering applied before thresholding, DitherThreshold for none
	Dither string
}

// ToRaster turns img into a packed monochrome raster: 8 dots per byte, most
// significant bit first, 1 meaning a printed (dark) dot. Rows are padded
// with blank bits up to a whole byte.
func (c *Converter) ToRaster(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", util.ErrEncoding)
	}
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return nil, fmt.Errorf("%w: threshold %v outside (0,1)", util.ErrEncoding, c.Threshold)
	}

	img, err := c.dither(img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	sz := b.Size()

	// lines are packed in bits
	imageWidth := sz.X
	if c.MaxWidth > 0 && imageWidth > c.MaxWidth {
		// truncate if image is too large
		imageWidth = c.MaxWidth
	}
	if imageWidth <= 0 || sz.Y <= 0 {
		return nil, fmt.Errorf("%w: zero-size bitmap %dx%d", util.ErrEncoding, imageWidth, sz.Y)
	}

	bytesWidth := (imageWidth + 7) / 8
	data := make([]byte, bytesWidth*sz.Y)

	for y := 0; y < sz.Y; y++ {
		for x := 0; x < imageWidth; x++ {
			if lightness(img.At(b.Min.X+x, b.Min.Y+y)) <= c.Threshold {
				// position in data is: line_start + x / 8
				// line_start is y * bytesWidth
				// then 8 bits per byte
				data[y*bytesWidth+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}

	return &Raster{
		Width:      imageWidth,
		Height:     sz.Y,
		BytesWidth: bytesWidth,
		Data:       data,
	}, nil
}

func (c *Converter) dither(img image.Image) (image.Image, error) {
	name := strings.ToLower(c.Dither)
	if name == "" || name == DitherThreshold {
		return img, nil
	}

	d := dither.NewDitherer([]color.Color{color.Black, color.White})
	if name == "bayer" {
		d.Mapper = dither.Bayer(8, 8, 1.0)
	} else {
		m, ok := diffusionMatrices[name]
		if !ok {
			return nil, fmt.Errorf("unknown dithering algorithm: %q", c.Dither)
		}
		d.Matrix = m
		d.Serpentine = true
	}
	return d.DitherPaletted(img), nil
}

// ValidDither reports whether name is a dithering algorithm ToRaster knows.
func ValidDither(name string) bool {
	name = strings.ToLower(name)
	if name == "" || name == DitherThreshold || name == "bayer" {
		return true
	}
	_, ok := diffusionMatrices[name]
	return ok
}

const (
	lumR, lumG, lumB = 55, 182, 18
)

func lightness(c color.Color) float64 {
	r, g, b, _ := c.RGBA()

	return float64(lumR*r+lumG*g+lumB*b) / float64(0xffff*(lumR+lumG+lumB))
}

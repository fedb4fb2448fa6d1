package image

import (
	"fmt"
	"image"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AlexStarov/escpos-netprint/util"
)

// FilterCatmullRom is served by x/image/draw, every other filter by nfnt/resize.
const FilterCatmullRom = "catmull-rom"

var interpolations = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"mitchell": resize.MitchellNetravali,
	"lanczos2": resize.Lanczos2,
	"lanczos3": resize.Lanczos3,
}

// Library decodes PNG, JPEG, GIF, BMP, TIFF and WebP files and resamples
// with the configured filter.
type Library struct {
	filter string
	interp resize.InterpolationFunction
}

// NewLibrary returns a Library using filter; an empty name means lanczos3.
func NewLibrary(filter string) (*Library, error) {
	filter = strings.ToLower(filter)
	if filter == "" {
		filter = "lanczos3"
	}
	if filter == FilterCatmullRom {
		return &Library{filter: filter}, nil
	}
	interp, ok := interpolations[filter]
	if !ok {
		return nil, fmt.Errorf("unknown resampling filter: %q", filter)
	}
	return &Library{filter: filter, interp: interp}, nil
}

// Filter returns the name of the resampling filter in use.
func (l *Library) Filter() string { return l.filter }

// Decode opens and decodes the file at path. Every failure, including an
// image with no pixels, is reported as util.ErrInvalidImage.
func (l *Library) Decode(path string) (image.Image, string, error) {
	imgFile, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", util.ErrInvalidImage, err)
	}
	defer imgFile.Close()

	img, format, err := image.Decode(imgFile)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode %s: %w", util.ErrInvalidImage, path, err)
	}

	sz := img.Bounds().Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return nil, "", fmt.Errorf("%w: %s has no pixels (%dx%d)", util.ErrInvalidImage, path, sz.X, sz.Y)
	}
	return img, format, nil
}

// Resize scales img to width x height regardless of its aspect ratio.
func (l *Library) Resize(img image.Image, width, height int) image.Image {
	if l.filter == FilterCatmullRom {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		return dst
	}
	return resize.Resize(uint(width), uint(height), img, l.interp)
}

package image

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/AlexStarov/escpos-netprint/util"
)

// Normalize returns a new opaque RGBA copy of img scaled to maxWidth dots,
// with the height scaled by the same ratio and rounded. Transparent pixels
// become paper white. img itself is left untouched.
//
// An image already maxWidth wide is only flattened, so Normalize is
// idempotent. There is no height limit.
func Normalize(img image.Image, maxWidth int, rs Resizer) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", util.ErrInvalidImage)
	}
	if maxWidth <= 0 {
		return nil, fmt.Errorf("%w: target width %d", util.ErrInvalidImage, maxWidth)
	}

	sz := img.Bounds().Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return nil, fmt.Errorf("%w: degenerate size %dx%d", util.ErrInvalidImage, sz.X, sz.Y)
	}

	flat := flatten(img)
	if sz.X == maxWidth {
		return flat, nil
	}

	newWidth, newHeight := ScaledSize(sz.X, sz.Y, maxWidth)
	scaled := rs.Resize(flat, newWidth, newHeight)
	if got := scaled.Bounds().Size(); got.X != newWidth || got.Y != newHeight {
		return nil, fmt.Errorf("%w: resampled to %dx%d, want %dx%d", util.ErrInvalidImage, got.X, got.Y, newWidth, newHeight)
	}

	// resamplers can leave alpha just under opaque at the edges
	return flatten(scaled), nil
}

// ScaledSize returns the size of a width x height image scaled to maxWidth.
func ScaledSize(width, height, maxWidth int) (int, int) {
	h := int(math.Round(float64(height) * float64(maxWidth) / float64(width)))
	if h < 1 {
		h = 1
	}
	return maxWidth, h
}

// flatten draws src over a white canvas anchored at the origin.
func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

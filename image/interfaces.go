package image

import "image"

// Decoder loads an image file into memory.
type Decoder interface {
	Decode(path string) (img image.Image, format string, err error)
}

// Resizer scales img to exactly width x height.
type Resizer interface {
	Resize(img image.Image, width, height int) image.Image
}

// Imaging is the decoding and resampling capability the print pipeline
// needs. Library is the production implementation.
type Imaging interface {
	Decoder
	Resizer
}

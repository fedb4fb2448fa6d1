package printer

import (
	"context"

	"go.uber.org/zap"

	imgInternal "github.com/AlexStarov/escpos-netprint/image"
)

// Job is one image to print.
type Job struct {
	ImagePath string

	// Width the image is scaled to, in dots.
	Width int

	Converter imgInternal.Converter

	// DebugImage, when set, receives the monochrome raster as a PNG.
	DebugImage string
}

// PrintImage decodes, normalizes, rasterizes and encodes the job's image,
// then sends it through s. The image is fully encoded before the printer is
// contacted, so a bad file never opens a connection.
func PrintImage(ctx context.Context, job Job, imaging imgInternal.Imaging, s *Session, logger *zap.Logger) (Result, error) {
	logger = logger.Named("pipeline").With(zap.String("job_id", s.JobID()))

	payload, err := encodeImage(job, imaging, s.Profile(), logger)
	if err != nil {
		return Result{JobID: s.JobID(), Profile: s.Profile().ID, State: s.State()}, err
	}

	res, err := s.Send(ctx, payload)
	if err != nil {
		return res, err
	}

	logger.Info("Image printed",
		zap.String("profile", res.Profile),
		zap.Int("bytes", res.BytesWritten),
	)
	return res, nil
}

func encodeImage(job Job, imaging imgInternal.Imaging, profile Profile, logger *zap.Logger) ([]byte, error) {
	img, format, err := imaging.Decode(job.ImagePath)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	logger.Debug("Loaded image",
		zap.String("path", job.ImagePath),
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
	)

	norm, err := imgInternal.Normalize(img, job.Width, imaging)
	if err != nil {
		return nil, err
	}
	logger.Debug("Normalized image", zap.Int("width", norm.Bounds().Dx()), zap.Int("height", norm.Bounds().Dy()))

	raster, err := job.Converter.ToRaster(norm)
	if err != nil {
		return nil, err
	}

	if job.DebugImage != "" {
		if err := raster.SavePNG(job.DebugImage); err != nil {
			logger.Warn("Could not write debug image", zap.String("path", job.DebugImage), zap.Error(err))
		}
	}

	payload, err := imgInternal.Encode(raster, profile.Variant)
	if err != nil {
		return nil, err
	}

	logger.Debug("Encoded raster",
		zap.String("variant", string(profile.Variant)),
		zap.Int("bytes_per_row", raster.BytesWidth),
		zap.Int("rows", raster.Height),
		zap.Int("payload", len(payload)),
	)
	return payload, nil
}

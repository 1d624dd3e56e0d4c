package vegetation

import "errors"

var (
	// ErrUnknownProfile is returned when a profile key does not name a built-in profile.
	ErrUnknownProfile = errors.New("unknown vegetation profile")

	// ErrInvalidThreshold is returned for a NaN or infinite threshold override.
	ErrInvalidThreshold = errors.New("threshold must be a finite number")

	// ErrEmptyVegetation reports that no sampled pixel classified as vegetation.
	// It is soft: the analysis still succeeds and its Result is flagged Degenerate.
	ErrEmptyVegetation = errors.New("no vegetation pixels found")

	// ErrTransparentPixel is returned by ClassifyPixel for a pixel with alpha 0.
	ErrTransparentPixel = errors.New("pixel is transparent")

	// ErrNilRaster is returned when Analyze is called without an image.
	ErrNilRaster = errors.New("raster is nil")
)

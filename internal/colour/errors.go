package colour

import "errors"

var (
	// ErrInvalidClusterCount is returned when k is below one or exceeds the
	// number of pixels available for clustering.
	ErrInvalidClusterCount = errors.New("invalid cluster count")

	// ErrInvalidCropSize is returned for a non-positive crop size.
	ErrInvalidCropSize = errors.New("invalid crop size")

	// ErrCropOutOfBounds is returned when the centre crop does not fit
	// inside the image.
	ErrCropOutOfBounds = errors.New("crop out of bounds")

	// ErrInvalidThresholds is returned when the black and white guard
	// ranges of a namer would overlap.
	ErrInvalidThresholds = errors.New("invalid namer thresholds")
)

package image

import "errors"

var (
	// ErrEmptyInput is returned for empty buffers and zero-pixel images.
	ErrEmptyInput = errors.New("empty image")

	// ErrInvalidImage is returned when image content cannot be decoded or
	// has an implausible shape.
	ErrInvalidImage = errors.New("invalid image")
)

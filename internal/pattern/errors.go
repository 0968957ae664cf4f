package pattern

import "errors"

var (
	// ErrModelLoad is returned when the model artifact or its metadata is
	// missing, corrupt or inconsistent.
	ErrModelLoad = errors.New("pattern model load failed")

	// ErrInference is returned when a forward pass fails, times out or
	// produces output that does not match the label set.
	ErrInference = errors.New("pattern inference failed")
)

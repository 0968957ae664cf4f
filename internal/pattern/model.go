// Package pattern classifies the surface pattern of a garment photo with a
// frozen image classification model.
package pattern

import (
	"context"
	"fmt"
	"slices"
)

// Layout is the memory order of the model input tensor.
type Layout string

const (
	// LayoutNHWC stores pixels as rows of interleaved RGB triples.
	LayoutNHWC Layout = "nhwc"
	// LayoutNCHW stores one full plane per channel.
	LayoutNCHW Layout = "nchw"
)

// Model is a loaded classification model. Implementations must be safe
// for concurrent use.
type Model interface {
	// Predict runs a forward pass over a preprocessed input tensor and
	// returns one raw score per label.
	Predict(ctx context.Context, input []float32) ([]float32, error)
	// Labels returns the class names in output order.
	Labels() []string
	// InputSize returns the square input side in pixels.
	InputSize() int
	// Layout returns the expected tensor layout.
	Layout() Layout
	// Close releases the model's resources.
	Close() error
}

// ModelFunc computes raw scores for an input tensor.
type ModelFunc func(ctx context.Context, input []float32) ([]float32, error)

type staticModel struct {
	labels []string
	size   int
	layout Layout
	fn     ModelFunc
}

// NewStaticModel adapts fn into a Model. It is useful for embedding an
// inference engine that is already in process.
func NewStaticModel(labels []string, size int, layout Layout, fn ModelFunc) (Model, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: model has no labels", ErrModelLoad)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: invalid input size %d", ErrModelLoad, size)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: model function is nil", ErrModelLoad)
	}
	if layout == "" {
		layout = LayoutNHWC
	}
	return &staticModel{labels: slices.Clone(labels), size: size, layout: layout, fn: fn}, nil
}

func (m *staticModel) Predict(ctx context.Context, input []float32) ([]float32, error) {
	return m.fn(ctx, input)
}

func (m *staticModel) Labels() []string { return slices.Clone(m.labels) }
func (m *staticModel) InputSize() int   { return m.size }
func (m *staticModel) Layout() Layout   { return m.layout }
func (m *staticModel) Close() error     { return nil }

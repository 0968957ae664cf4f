package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

// DefaultInputSize is the square side the default model was trained on.
const DefaultInputSize = 128

// DefaultLabels are the classes of the default garment pattern model, in
// output order.
var DefaultLabels = []string{"checkered", "dotted", "floral", "solid", "striped", "zigzag"}

// Metadata describes a model artifact: tensor shapes, class names and how
// to feed it.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	Layout      Layout   `json:"layout,omitempty"`
	InputName   string   `json:"input_name,omitempty"`
	OutputName  string   `json:"output_name,omitempty"`
}

// DefaultMetadata describes the default pattern model: a 128x128 NHWC
// float input and six class scores.
func DefaultMetadata() Metadata {
	return Metadata{
		InputShape:  []int64{1, DefaultInputSize, DefaultInputSize, 3},
		OutputShape: []int64{1, int64(len(DefaultLabels))},
		Classes:     slices.Clone(DefaultLabels),
		ImageSize:   DefaultInputSize,
		Layout:      LayoutNHWC,
		InputName:   "input",
		OutputName:  "output",
	}
}

// MetadataPath returns the conventional metadata location for a model
// file: the model path without its .xz and .onnx suffixes plus ".json".
func MetadataPath(modelPath string) string {
	base := strings.TrimSuffix(modelPath, ".xz")
	base = strings.TrimSuffix(base, ".onnx")
	return base + ".json"
}

// LoadMetadata reads metadata from path. When path is empty the
// conventional location next to modelPath is tried, falling back to
// DefaultMetadata if nothing is there.
func LoadMetadata(path, modelPath string) (Metadata, error) {
	explicit := path != ""
	if !explicit {
		path = MetadataPath(modelPath)
	}

	data, err := os.ReadFile(path) // #nosec G304 - operator-configured metadata path
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultMetadata(), nil
		}
		return Metadata{}, fmt.Errorf("%w: failed to read metadata: %w", ErrModelLoad, err)
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return Metadata{}, fmt.Errorf("%w: failed to parse metadata %s: %w", ErrModelLoad, path, err)
	}
	md.applyDefaults()
	if err := md.Validate(); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

func (m *Metadata) applyDefaults() {
	if m.Layout == "" {
		m.Layout = LayoutNHWC
	}
	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	if m.ImageSize == 0 {
		m.ImageSize = DefaultInputSize
	}
	if len(m.InputShape) == 0 {
		if m.Layout == LayoutNCHW {
			m.InputShape = []int64{1, 3, int64(m.ImageSize), int64(m.ImageSize)}
		} else {
			m.InputShape = []int64{1, int64(m.ImageSize), int64(m.ImageSize), 3}
		}
	}
	if len(m.OutputShape) == 0 {
		m.OutputShape = []int64{1, int64(len(m.Classes))}
	}
}

// Validate checks that the shapes agree with the image size, channel
// count and number of classes.
func (m Metadata) Validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("%w: metadata lists no classes", ErrModelLoad)
	}
	if m.Layout != LayoutNHWC && m.Layout != LayoutNCHW {
		return fmt.Errorf("%w: unknown layout %q", ErrModelLoad, m.Layout)
	}
	if m.ImageSize < 1 {
		return fmt.Errorf("%w: invalid image size %d", ErrModelLoad, m.ImageSize)
	}
	if want := int64(3 * m.ImageSize * m.ImageSize); elements(m.InputShape) != want {
		return fmt.Errorf("%w: input shape %v holds %d values, want %d",
			ErrModelLoad, m.InputShape, elements(m.InputShape), want)
	}
	if want := int64(len(m.Classes)); elements(m.OutputShape) != want {
		return fmt.Errorf("%w: output shape %v holds %d values, want %d",
			ErrModelLoad, m.OutputShape, elements(m.OutputShape), want)
	}
	return nil
}

func elements(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

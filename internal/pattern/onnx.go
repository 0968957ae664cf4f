package pattern

import (
	"context"
	"fmt"
	"slices"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/jmylchreest/swatch/internal/compression"
)

// ONNXOptions configures NewONNXModel.
type ONNXOptions struct {
	// MetadataPath overrides the metadata location. Empty means
	// MetadataPath(modelPath), falling back to DefaultMetadata.
	MetadataPath string
	// LibraryPath points at the onnxruntime shared library. Empty uses
	// the runtime's default lookup.
	LibraryPath string
	// MaxBytes bounds the decompressed model size.
	MaxBytes int64
}

// The onnxruntime environment is process global; it is created by the
// first model and destroyed with the last.
var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 && !ort.IsInitialized() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()

	envRefs--
	if envRefs == 0 && ort.IsInitialized() {
		_ = ort.DestroyEnvironment()
	}
}

// ONNXModel runs a frozen ONNX classifier through onnxruntime. The
// session reuses one input and one output tensor, so forward passes are
// serialised.
type ONNXModel struct {
	mu       sync.Mutex
	metadata Metadata
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	output   *ort.Tensor[float32]
	closed   bool
}

// NewONNXModel loads the model at path. The file may be plain ONNX or
// compressed (.xz, .gz, .bz2).
func NewONNXModel(path string, opts ONNXOptions) (*ONNXModel, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: model path is empty", ErrModelLoad)
	}

	metadata, err := LoadMetadata(opts.MetadataPath, path)
	if err != nil {
		return nil, err
	}

	data, err := compression.ReadFile(path, opts.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: model file %s is empty", ErrModelLoad, path)
	}

	if err := acquireEnvironment(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	m, err := newONNXSession(data, metadata)
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	return m, nil
}

func newONNXSession(data []byte, metadata Metadata) (*ONNXModel, error) {
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSessionWithONNXData(data,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXModel{
		metadata: metadata,
		session:  session,
		input:    input,
		output:   output,
	}, nil
}

// Predict implements Model. A running forward pass cannot be interrupted;
// ctx is only checked before it starts.
func (m *ONNXModel) Predict(ctx context.Context, input []float32) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("%w: model is closed", ErrInference)
	}
	dst := m.input.GetData()
	if len(input) != len(dst) {
		return nil, fmt.Errorf("%w: expected %d input values, got %d", ErrInference, len(dst), len(input))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}

	copy(dst, input)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	return slices.Clone(m.output.GetData()), nil
}

// Labels implements Model.
func (m *ONNXModel) Labels() []string { return slices.Clone(m.metadata.Classes) }

// InputSize implements Model.
func (m *ONNXModel) InputSize() int { return m.metadata.ImageSize }

// Layout implements Model.
func (m *ONNXModel) Layout() Layout { return m.metadata.Layout }

// Metadata returns the model description.
func (m *ONNXModel) Metadata() Metadata { return m.metadata }

// Close destroys the session and its tensors. It is safe to call twice.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var firstErr error
	for _, destroy := range []func() error{m.session.Destroy, m.input.Destroy, m.output.Destroy} {
		if err := destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	releaseEnvironment()
	return firstErr
}

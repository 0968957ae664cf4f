package pattern

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// OpenOptions selects and configures a model backend.
type OpenOptions struct {
	// PluginPath, when set, starts an out-of-process backend and takes
	// precedence over ModelPath.
	PluginPath   string
	ModelPath    string
	MetadataPath string
	LibraryPath  string
	Logger       hclog.Logger
}

// Open loads the configured model backend.
func Open(opts OpenOptions) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	switch {
	case opts.PluginPath != "":
		logger.Debug("starting model plugin", "path", opts.PluginPath)
		return NewPluginModel(opts.PluginPath, logger)
	case opts.ModelPath != "":
		logger.Debug("loading onnx model", "path", opts.ModelPath)
		m, err := NewONNXModel(opts.ModelPath, ONNXOptions{
			MetadataPath: opts.MetadataPath,
			LibraryPath:  opts.LibraryPath,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("pattern model loaded", "path", opts.ModelPath,
			"classes", m.Labels(), "input_size", m.InputSize())
		return m, nil
	default:
		return nil, fmt.Errorf("%w: no model configured (set classifier.model or classifier.plugin)", ErrModelLoad)
	}
}

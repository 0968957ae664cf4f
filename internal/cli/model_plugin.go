package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/pattern"
)

// newModelPluginCmd serves the configured ONNX model as an out-of-process
// backend. A host points classifier.plugin at a binary that runs this.
func newModelPluginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:    "model-plugin",
		Short:  "Serve the pattern model as a plugin backend",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cs := a.cfg.Classifier()
			if cs.Model == "" {
				return fmt.Errorf("%w: classifier.model is required", pattern.ErrModelLoad)
			}
			m, err := pattern.NewONNXModel(cs.Model, pattern.ONNXOptions{
				MetadataPath: cs.Metadata,
				LibraryPath:  cs.ORTLibrary,
			})
			if err != nil {
				return err
			}
			defer m.Close()

			pattern.ServeModel(m)
			return nil
		},
	}
}

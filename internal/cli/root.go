// Package cli provides the command-line interface for swatch.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatch/internal/config"
	"github.com/jmylchreest/swatch/internal/extract"
	"github.com/jmylchreest/swatch/internal/pattern"
	"github.com/jmylchreest/swatch/internal/version"
)

// configEnv names the config file when --config is not given.
const configEnv = "SWATCH_CONFIG"

// app is the state shared by all commands of one invocation.
type app struct {
	cfg        *config.Config
	logger     hclog.Logger
	configPath string
	verbose    bool
	quiet      bool

	// openModel loads the pattern model; replaced in tests.
	openModel func(pattern.OpenOptions) (pattern.Model, error)
}

func newApp() *app {
	return &app{
		cfg:       config.New(),
		logger:    hclog.NewNullLogger(),
		openModel: pattern.Open,
	}
}

// NewRootCmd builds the swatch command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swatch",
		Short: "Garment colour and pattern attribute extraction",
		Long: `Swatch extracts catalogue attributes from garment photos: the dominant
colour, the average colour of the centre of the frame, a human readable name
for each, and the surface pattern (solid, striped, floral and so on) predicted
by a pre-trained image classifier.

Run it once against files with "swatch extract" or as an HTTP service with
"swatch serve".`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "ini config file (default: $"+configEnv+" or "+config.DefaultFile+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only log errors")
	flags.String(config.KeyLogLevel, "info", "log level (trace, debug, info, warn, error)")
	flags.String(config.KeyLogFormat, "text", "log format (text, json)")
	addClassifierFlags(flags)

	cmd.SetVersionTemplate(version.String() + "\n")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newExtractCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newNameCmd(a))
	cmd.AddCommand(newModelPluginCmd(a))
	return cmd
}

// setup layers the config file, environment and flags, then builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	path, required := a.configPath, cmd.Flags().Changed("config")
	if !required {
		if env, ok := os.LookupEnv(configEnv); ok && env != "" {
			path, required = env, true
		}
	}
	if err := a.cfg.LoadFile(path, required); err != nil {
		return err
	}
	if err := a.cfg.BindFlags(cmd.Flags()); err != nil {
		return err
	}

	switch {
	case a.verbose:
		a.cfg.Set(config.KeyLogLevel, "debug")
	case a.quiet:
		a.cfg.Set(config.KeyLogLevel, "error")
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.logger = newLogger(a.cfg.Log(), cmd.ErrOrStderr())
	return nil
}

func newLogger(settings config.LogSettings, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "swatch",
		Level:      hclog.LevelFromString(settings.Level),
		Output:     w,
		JSONFormat: settings.Format == "json",
	})
}

func addClassifierFlags(flags *pflag.FlagSet) {
	flags.String(config.KeyClassifierModel, "", "ONNX pattern model (.onnx or .onnx.xz)")
	flags.String(config.KeyClassifierMetadata, "", "model metadata JSON (default: <model>.json)")
	flags.String(config.KeyClassifierPlugin, "", "out-of-process model backend binary")
	flags.String(config.KeyClassifierORTLibrary, "", "onnxruntime shared library path")
	flags.Duration(config.KeyClassifierTimeout, pattern.DefaultTimeout, "pattern classification timeout")
}

// addPipelineFlags registers the clustering, cropping and naming flags
// shared by extract and serve.
func addPipelineFlags(flags *pflag.FlagSet) {
	flags.String(config.KeyClusterAlgorithm, "kmeans", "clustering algorithm (kmeans, prominent)")
	flags.IntP(config.KeyClusterK, "k", 5, "number of colour clusters")
	flags.StringP(config.KeyClusterSeed, "s", "", "k-means seed for reproducible clusters")
	flags.String(config.KeyClusterSeedMode, "", "seed mode (random, manual, content)")
	flags.Int(config.KeyClusterMaxDimension, extract.DefaultMaxDimension, "downscale longest side before clustering (0 disables)")
	flags.Int(config.KeyCropSize, 100, "centre crop side in pixels")
	flags.String(config.KeyNamerMetric, "rgb", "colour naming metric (rgb, lab)")
}

// openPipeline loads the pattern model and assembles the extraction
// pipeline. The returned closer releases the model.
func (a *app) openPipeline() (*extract.Pipeline, io.Closer, error) {
	logger := a.logger.Named("pattern")
	model, err := a.openModel(a.cfg.OpenOptions(logger))
	if err != nil {
		return nil, nil, err
	}
	classifier, err := pattern.NewClassifier(model, a.cfg.ClassifierOptions(logger))
	if err != nil {
		model.Close()
		return nil, nil, err
	}

	pc, err := a.cfg.PipelineConfig(classifier, a.logger.Named("pipeline"))
	if err != nil {
		classifier.Close()
		return nil, nil, err
	}
	p, err := extract.New(pc)
	if err != nil {
		classifier.Close()
		return nil, nil, err
	}
	return p, classifier, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

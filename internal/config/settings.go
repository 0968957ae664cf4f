package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/colour/seed"
	"github.com/jmylchreest/swatch/internal/extract"
	"github.com/jmylchreest/swatch/internal/pattern"
)

// ServerSettings configures the HTTP service.
type ServerSettings struct {
	Addr           string
	MaxUploadBytes int64
	RateLimit      float64
	RateBurst      int
	ReadTimeout    time.Duration
}

// ClusterSettings configures dominant colour clustering.
type ClusterSettings struct {
	Algorithm     colour.Algorithm
	K             int
	MaxIterations int
	Epsilon       float64
	Attempts      int
	Seed          seed.Config
	MaxDimension  int
}

// ClassifierSettings selects the pattern model backend.
type ClassifierSettings struct {
	Model      string
	Metadata   string
	Plugin     string
	Timeout    time.Duration
	ORTLibrary string
}

// LogSettings configures the hclog logger.
type LogSettings struct {
	Level  string
	Format string
}

// Server returns the server section.
func (c *Config) Server() ServerSettings {
	return ServerSettings{
		Addr:           c.GetString(KeyServerAddr),
		MaxUploadBytes: int64(c.GetInt(KeyServerMaxUploadMB)) << 20,
		RateLimit:      c.GetFloat64(KeyServerRateLimit),
		RateBurst:      c.GetInt(KeyServerRateBurst),
		ReadTimeout:    c.GetDuration(KeyServerReadTimeout),
	}
}

// Cluster returns the cluster section. An unparsable seed is reported by
// Validate; here it is treated as unset.
func (c *Config) Cluster() ClusterSettings {
	value, _ := c.seedValue()
	return ClusterSettings{
		Algorithm:     colour.Algorithm(strings.ToLower(c.GetString(KeyClusterAlgorithm))),
		K:             c.GetInt(KeyClusterK),
		MaxIterations: c.GetInt(KeyClusterMaxIterations),
		Epsilon:       c.GetFloat64(KeyClusterEpsilon),
		Attempts:      c.GetInt(KeyClusterAttempts),
		Seed: seed.Config{
			Mode:  seed.Mode(strings.ToLower(c.GetString(KeyClusterSeedMode))),
			Value: value,
		},
		MaxDimension: c.GetInt(KeyClusterMaxDimension),
	}
}

// Classifier returns the classifier section.
func (c *Config) Classifier() ClassifierSettings {
	return ClassifierSettings{
		Model:      c.GetString(KeyClassifierModel),
		Metadata:   c.GetString(KeyClassifierMetadata),
		Plugin:     c.GetString(KeyClassifierPlugin),
		Timeout:    c.GetDuration(KeyClassifierTimeout),
		ORTLibrary: c.GetString(KeyClassifierORTLibrary),
	}
}

// Log returns the log section.
func (c *Config) Log() LogSettings {
	return LogSettings{
		Level:  strings.ToLower(c.GetString(KeyLogLevel)),
		Format: strings.ToLower(c.GetString(KeyLogFormat)),
	}
}

func (c *Config) seedValue() (*int64, error) {
	raw := strings.TrimSpace(c.GetString(KeyClusterSeed))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid seed %q: %w", KeyClusterSeed, raw, err)
	}
	return &v, nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	srv := c.Server()
	if srv.Addr == "" {
		return fmt.Errorf("%s must not be empty", KeyServerAddr)
	}
	if srv.MaxUploadBytes <= 0 {
		return fmt.Errorf("%s must be positive", KeyServerMaxUploadMB)
	}
	if srv.RateLimit < 0 || srv.RateBurst < 0 {
		return fmt.Errorf("%s and %s must not be negative", KeyServerRateLimit, KeyServerRateBurst)
	}

	if _, err := c.seedValue(); err != nil {
		return err
	}
	cl := c.Cluster()
	if !colour.IsValidAlgorithm(cl.Algorithm) {
		return fmt.Errorf("%s: unknown algorithm %q (valid: %v)", KeyClusterAlgorithm, cl.Algorithm, colour.ValidAlgorithms())
	}
	if cl.K < 1 {
		return fmt.Errorf("%s: %w: %d", KeyClusterK, colour.ErrInvalidClusterCount, cl.K)
	}
	if cl.MaxIterations < 1 || cl.Attempts < 1 {
		return fmt.Errorf("%s and %s must be at least 1", KeyClusterMaxIterations, KeyClusterAttempts)
	}
	if cl.Epsilon < 0 {
		return fmt.Errorf("%s must not be negative", KeyClusterEpsilon)
	}
	if cl.MaxDimension < 0 {
		return fmt.Errorf("%s must not be negative", KeyClusterMaxDimension)
	}
	if _, err := seed.ParseMode(string(cl.Seed.Mode)); err != nil {
		return fmt.Errorf("%s: %w", KeyClusterSeedMode, err)
	}
	if cl.Seed.Mode == seed.ModeManual && cl.Seed.Value == nil {
		return fmt.Errorf("%s is required when %s is manual", KeyClusterSeed, KeyClusterSeedMode)
	}

	if size := c.GetInt(KeyCropSize); size < 1 {
		return fmt.Errorf("%s: %w: %d", KeyCropSize, colour.ErrInvalidCropSize, size)
	}
	if _, err := colour.ParseMetric(c.GetString(KeyNamerMetric)); err != nil {
		return fmt.Errorf("%s: %w", KeyNamerMetric, err)
	}

	lg := c.Log()
	if hclog.LevelFromString(lg.Level) == hclog.NoLevel {
		return fmt.Errorf("%s: unknown level %q", KeyLogLevel, lg.Level)
	}
	if !slices.Contains([]string{"text", "json"}, lg.Format) {
		return fmt.Errorf("%s: unknown format %q (valid: text, json)", KeyLogFormat, lg.Format)
	}
	return nil
}

// NewClusterer builds the configured clusterer.
func (c *Config) NewClusterer() (colour.Clusterer, error) {
	cl := c.Cluster()
	return colour.NewExtractor(cl.Algorithm, colour.ExtractorOptions{
		MaxIterations: cl.MaxIterations,
		Epsilon:       cl.Epsilon,
		Attempts:      cl.Attempts,
	})
}

// NewNamer builds the default colour table namer with the configured metric.
func (c *Config) NewNamer() (*colour.TableNamer, error) {
	metric, err := colour.ParseMetric(c.GetString(KeyNamerMetric))
	if err != nil {
		return nil, err
	}
	if metric == colour.MetricRGB {
		return colour.DefaultNamer(), nil
	}
	return colour.NewTableNamer(colour.DefaultNameTable(), colour.WithMetric(metric))
}

// OpenOptions returns the model backend selection for pattern.Open.
func (c *Config) OpenOptions(logger hclog.Logger) pattern.OpenOptions {
	cs := c.Classifier()
	return pattern.OpenOptions{
		PluginPath:   cs.Plugin,
		ModelPath:    cs.Model,
		MetadataPath: cs.Metadata,
		LibraryPath:  cs.ORTLibrary,
		Logger:       logger,
	}
}

// ClassifierOptions returns the classifier wrapper options.
func (c *Config) ClassifierOptions(logger hclog.Logger) pattern.ClassifierOptions {
	return pattern.ClassifierOptions{
		Timeout: c.Classifier().Timeout,
		Logger:  logger,
	}
}

// PipelineConfig assembles an extract.Config around an already opened
// classifier.
func (c *Config) PipelineConfig(classifier extract.PatternClassifier, logger hclog.Logger) (extract.Config, error) {
	clusterer, err := c.NewClusterer()
	if err != nil {
		return extract.Config{}, err
	}
	namer, err := c.NewNamer()
	if err != nil {
		return extract.Config{}, err
	}
	cl := c.Cluster()
	return extract.Config{
		Clusterer:    clusterer,
		Namer:        namer,
		Classifier:   classifier,
		K:            cl.K,
		CropSize:     c.GetInt(KeyCropSize),
		MaxDimension: cl.MaxDimension,
		Seed:         cl.Seed,
		Logger:       logger,
	}, nil
}

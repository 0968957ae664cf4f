// Package config layers swatch settings from built-in defaults, an
// optional ini file, SWATCH_* environment variables and command line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// SWATCH_SERVER_ADDR for server.addr.
const EnvPrefix = "SWATCH"

// DefaultFile is the ini file read when no explicit path is given.
const DefaultFile = "swatch.ini"

// Known configuration keys.
const (
	KeyServerAddr        = "server.addr"
	KeyServerMaxUploadMB = "server.max_upload_mb"
	KeyServerRateLimit   = "server.rate_limit"
	KeyServerRateBurst   = "server.rate_burst"
	KeyServerReadTimeout = "server.read_timeout"

	KeyClusterAlgorithm     = "cluster.algorithm"
	KeyClusterK             = "cluster.k"
	KeyClusterMaxIterations = "cluster.max_iterations"
	KeyClusterEpsilon       = "cluster.epsilon"
	KeyClusterAttempts      = "cluster.attempts"
	KeyClusterSeed          = "cluster.seed"
	KeyClusterSeedMode      = "cluster.seed_mode"
	KeyClusterMaxDimension  = "cluster.max_dimension"

	KeyCropSize = "crop.size"

	KeyNamerMetric = "namer.metric"

	KeyClassifierModel      = "classifier.model"
	KeyClassifierMetadata   = "classifier.metadata"
	KeyClassifierPlugin     = "classifier.plugin"
	KeyClassifierTimeout    = "classifier.timeout"
	KeyClassifierORTLibrary = "classifier.ort_library"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// Defaults returns the built-in value of every key that has one.
func Defaults() map[string]any {
	return map[string]any{
		KeyServerAddr:        ":5000",
		KeyServerMaxUploadMB: 10,
		KeyServerRateLimit:   20.0,
		KeyServerRateBurst:   40,
		KeyServerReadTimeout: "30s",

		KeyClusterAlgorithm:     "kmeans",
		KeyClusterK:             5,
		KeyClusterMaxIterations: 10,
		KeyClusterEpsilon:       1.0,
		KeyClusterAttempts:      10,
		KeyClusterSeedMode:      "",
		KeyClusterMaxDimension:  640,

		KeyCropSize: 100,

		KeyNamerMetric: "rgb",

		KeyClassifierTimeout: "10s",

		KeyLogLevel:  "info",
		KeyLogFormat: "text",
	}
}

// Config is a layered view over viper.
type Config struct {
	vp *viper.Viper
}

// New returns a Config holding defaults and reading SWATCH_* environment
// variables.
func New() *Config {
	vp := viper.New()
	for key, value := range Defaults() {
		vp.SetDefault(key, value)
	}
	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	return &Config{vp: vp}
}

// LoadFile merges an ini file into the config layer. Sections become key
// prefixes; keys in the default section are taken as-is. A missing file
// is an error only when required is true.
func (c *Config) LoadFile(path string, required bool) error {
	if path == "" {
		path = DefaultFile
	}

	iniCfg, err := ini.Load(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	values := make(map[string]any)
	for _, section := range iniCfg.Sections() {
		for _, key := range section.Keys() {
			if section.Name() == ini.DefaultSection {
				values[strings.ToLower(key.Name())] = key.Value()
				continue
			}
			name := strings.ToLower(section.Name())
			sub, ok := values[name].(map[string]any)
			if !ok {
				sub = make(map[string]any)
				values[name] = sub
			}
			sub[strings.ToLower(key.Name())] = key.Value()
		}
	}
	if err := c.vp.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", path, err)
	}
	return nil
}

// BindFlags binds every flag in fs whose name is a dotted configuration
// key, so an explicitly set flag overrides all other layers.
func (c *Config) BindFlags(fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || !strings.Contains(f.Name, ".") {
			return
		}
		if err := c.vp.BindPFlag(f.Name, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// Set overrides a key at the highest precedence.
func (c *Config) Set(key string, value any) { c.vp.Set(key, value) }

// GetString returns a string value.
func (c *Config) GetString(key string) string { return c.vp.GetString(key) }

// GetInt returns an integer value.
func (c *Config) GetInt(key string) int { return c.vp.GetInt(key) }

// GetFloat64 returns a float value.
func (c *Config) GetFloat64(key string) float64 { return c.vp.GetFloat64(key) }

// GetDuration returns a duration value such as "30s".
func (c *Config) GetDuration(key string) time.Duration { return c.vp.GetDuration(key) }

// IsSet reports whether key has a value from any layer other than the
// defaults.
func (c *Config) IsSet(key string) bool { return c.vp.IsSet(key) }

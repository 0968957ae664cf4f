package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/colour/seed"
)

func writeIni(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swatch.ini")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write ini: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	srv := cfg.Server()
	if srv.Addr != ":5000" {
		t.Errorf("Addr = %q, want :5000", srv.Addr)
	}
	if srv.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", srv.MaxUploadBytes, 10<<20)
	}
	if srv.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", srv.ReadTimeout)
	}

	cl := cfg.Cluster()
	if cl.Algorithm != colour.AlgorithmKMeans || cl.K != 5 || cl.MaxIterations != 10 || cl.Attempts != 10 {
		t.Errorf("Cluster() = %+v", cl)
	}
	if cl.Seed.Value != nil {
		t.Errorf("Seed.Value = %d, want unset", *cl.Seed.Value)
	}
	if cl.MaxDimension != 640 {
		t.Errorf("MaxDimension = %d, want 640", cl.MaxDimension)
	}
	if got := cfg.GetInt(KeyCropSize); got != 100 {
		t.Errorf("crop.size = %d, want 100", got)
	}
	if got := cfg.Classifier().Timeout; got != 10*time.Second {
		t.Errorf("classifier.timeout = %v, want 10s", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeIni(t, `
[server]
addr = :8080
max_upload_mb = 4

[cluster]
k = 3
seed = 42

[log]
level = debug
`)

	cfg := New()
	if err := cfg.LoadFile(path, true); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := cfg.Server().Addr; got != ":8080" {
		t.Errorf("Addr = %q, want :8080", got)
	}
	if got := cfg.Server().MaxUploadBytes; got != 4<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", got, 4<<20)
	}
	cl := cfg.Cluster()
	if cl.K != 3 {
		t.Errorf("K = %d, want 3", cl.K)
	}
	if cl.Seed.Value == nil || *cl.Seed.Value != 42 {
		t.Errorf("Seed.Value = %v, want 42", cl.Seed.Value)
	}
	if got := cfg.Log().Level; got != "debug" {
		t.Errorf("log.level = %q, want debug", got)
	}
	// Untouched keys keep their defaults.
	if got := cfg.GetString(KeyNamerMetric); got != "rgb" {
		t.Errorf("namer.metric = %q, want rgb", got)
	}
}

func TestLoadFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.ini")

	if err := New().LoadFile(missing, false); err != nil {
		t.Errorf("LoadFile(optional) error = %v, want nil", err)
	}
	if err := New().LoadFile(missing, true); err == nil {
		t.Error("LoadFile(required) expected error for missing file")
	}
}

func TestPrecedence(t *testing.T) {
	path := writeIni(t, "[server]\naddr = :6000\n")

	t.Run("env beats ini", func(t *testing.T) {
		t.Setenv("SWATCH_SERVER_ADDR", ":7000")
		cfg := New()
		if err := cfg.LoadFile(path, true); err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if got := cfg.Server().Addr; got != ":7000" {
			t.Errorf("Addr = %q, want :7000", got)
		}
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv("SWATCH_SERVER_ADDR", ":7000")
		cfg := New()
		if err := cfg.LoadFile(path, true); err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.String(KeyServerAddr, ":5000", "")
		if err := fs.Parse([]string{"--server.addr=:9000"}); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if err := cfg.BindFlags(fs); err != nil {
			t.Fatalf("BindFlags() error = %v", err)
		}
		if got := cfg.Server().Addr; got != ":9000" {
			t.Errorf("Addr = %q, want :9000", got)
		}
	})

	t.Run("unset flag does not override", func(t *testing.T) {
		cfg := New()
		if err := cfg.LoadFile(path, true); err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.String(KeyServerAddr, ":5000", "")
		if err := cfg.BindFlags(fs); err != nil {
			t.Fatalf("BindFlags() error = %v", err)
		}
		if got := cfg.Server().Addr; got != ":6000" {
			t.Errorf("Addr = %q, want :6000", got)
		}
	})

	t.Run("env seed", func(t *testing.T) {
		t.Setenv("SWATCH_CLUSTER_SEED", "7")
		cl := New().Cluster()
		if cl.Seed.Value == nil || *cl.Seed.Value != 7 {
			t.Errorf("Seed.Value = %v, want 7", cl.Seed.Value)
		}
		if got := cl.Seed.Resolve().Mode; got != seed.ModeManual {
			t.Errorf("resolved mode = %q, want manual", got)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{"bad algorithm", KeyClusterAlgorithm, "dbscan", "unknown algorithm"},
		{"zero k", KeyClusterK, 0, "cluster count"},
		{"zero crop", KeyCropSize, 0, "crop size"},
		{"bad metric", KeyNamerMetric, "cmyk", "invalid namer metric"},
		{"bad seed", KeyClusterSeed, "abc", "invalid seed"},
		{"bad seed mode", KeyClusterSeedMode, "filepath", "invalid seed mode"},
		{"manual without seed", KeyClusterSeedMode, "manual", "is required"},
		{"bad log level", KeyLogLevel, "loud", "unknown level"},
		{"bad log format", KeyLogFormat, "xml", "unknown format"},
		{"zero upload", KeyServerMaxUploadMB, 0, "must be positive"},
		{"negative max dimension", KeyClusterMaxDimension, -1, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Set(tt.key, tt.value)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := New()
	cfg.Set(KeyClusterAlgorithm, "prominent")
	cfg.Set(KeyNamerMetric, "lab")
	cfg.Set(KeyClusterK, 3)

	pc, err := cfg.PipelineConfig(nil, nil)
	if err != nil {
		t.Fatalf("PipelineConfig() error = %v", err)
	}
	if _, ok := pc.Clusterer.(*colour.ProminentExtractor); !ok {
		t.Errorf("Clusterer = %T, want *colour.ProminentExtractor", pc.Clusterer)
	}
	namer, ok := pc.Namer.(*colour.TableNamer)
	if !ok {
		t.Fatalf("Namer = %T, want *colour.TableNamer", pc.Namer)
	}
	if namer.Metric() != colour.MetricLab {
		t.Errorf("Metric() = %q, want lab", namer.Metric())
	}
	if pc.K != 3 || pc.CropSize != 100 || pc.MaxDimension != 640 {
		t.Errorf("PipelineConfig() = K %d crop %d max %d", pc.K, pc.CropSize, pc.MaxDimension)
	}
}

func TestOpenOptions(t *testing.T) {
	t.Setenv("SWATCH_CLASSIFIER_MODEL", "/models/pattern.onnx.xz")
	t.Setenv("SWATCH_CLASSIFIER_ORT_LIBRARY", "/usr/lib/libonnxruntime.so")

	opts := New().OpenOptions(nil)
	if opts.ModelPath != "/models/pattern.onnx.xz" {
		t.Errorf("ModelPath = %q", opts.ModelPath)
	}
	if opts.LibraryPath != "/usr/lib/libonnxruntime.so" {
		t.Errorf("LibraryPath = %q", opts.LibraryPath)
	}
	if opts.PluginPath != "" {
		t.Errorf("PluginPath = %q, want empty", opts.PluginPath)
	}
}

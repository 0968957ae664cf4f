// Package extract runs the attribute extraction pipeline: dominant colour,
// centre average colour, colour names and surface pattern for one image.
package extract

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/colour/seed"
	simage "github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/pattern"
)

// DefaultMaxDimension is the longest side of the image handed to the
// clusterer. Larger images are downscaled first.
const DefaultMaxDimension = 640

// PatternClassifier predicts the surface pattern of an image.
type PatternClassifier interface {
	Classify(ctx context.Context, img image.Image) (*pattern.Prediction, error)
}

// Config wires the pipeline's collaborators. Only Classifier is required.
type Config struct {
	Clusterer  colour.Clusterer
	Namer      colour.Namer
	Classifier PatternClassifier

	// K is the number of colour clusters. Zero uses colour.DefaultClusterCount.
	K int
	// CropSize is the centre crop side. Zero uses colour.DefaultCropSize.
	CropSize int
	// MaxDimension bounds the clustering view. Zero disables downscaling.
	MaxDimension int
	// Seed controls k-means initialisation for clusterers that support it.
	Seed seed.Config

	Logger hclog.Logger
}

// Pipeline extracts a Record from an image. It holds no per-request state
// and is safe for concurrent use.
type Pipeline struct {
	clusterer    colour.Clusterer
	namer        colour.Namer
	classifier   PatternClassifier
	k            int
	cropSize     int
	maxDimension int
	seed         seed.Config
	logger       hclog.Logger
}

// New validates cfg and builds a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("pattern classifier is required")
	}
	if cfg.Clusterer == nil {
		cfg.Clusterer = colour.NewKMeansExtractor(colour.DefaultExtractorOptions())
	}
	if cfg.Namer == nil {
		cfg.Namer = colour.DefaultNamer()
	}
	if cfg.K == 0 {
		cfg.K = colour.DefaultClusterCount
	}
	if cfg.K < 1 {
		return nil, fmt.Errorf("%w: k=%d", colour.ErrInvalidClusterCount, cfg.K)
	}
	if cfg.CropSize == 0 {
		cfg.CropSize = colour.DefaultCropSize
	}
	if cfg.CropSize < 1 {
		return nil, fmt.Errorf("%w: %d", colour.ErrInvalidCropSize, cfg.CropSize)
	}
	if cfg.MaxDimension < 0 {
		return nil, fmt.Errorf("max dimension must not be negative, got %d", cfg.MaxDimension)
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Pipeline{
		clusterer:    cfg.Clusterer,
		namer:        cfg.Namer,
		classifier:   cfg.Classifier,
		k:            cfg.K,
		cropSize:     cfg.CropSize,
		maxDimension: cfg.MaxDimension,
		seed:         cfg.Seed,
		logger:       cfg.Logger,
	}, nil
}

// Extract runs dominant colour clustering, centre averaging and pattern
// classification concurrently, names both colours and assembles the
// Record. The first failing stage cancels the others and its error is
// returned unchanged; no partial Record is produced.
func (p *Pipeline) Extract(ctx context.Context, img image.Image) (*Record, error) {
	rgb, err := simage.FromImage(img)
	if err != nil {
		return nil, err
	}

	clusterer, err := p.seededClusterer(rgb)
	if err != nil {
		return nil, err
	}

	var (
		dominant   colour.RGB
		average    colour.RGB
		prediction *pattern.Prediction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.stage("dominant", func() (err error) {
			dominant, err = colour.Dominant(gctx, clusterer, p.clusterView(rgb), p.k)
			return err
		})
	})
	g.Go(func() error {
		return p.stage("average", func() (err error) {
			average, err = colour.CenterAverage(rgb, p.cropSize)
			return err
		})
	})
	g.Go(func() error {
		return p.stage("pattern", func() (err error) {
			prediction, err = p.classifier.Classify(gctx, rgb)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Record{
		DominantColor:     dominant,
		DominantColorName: p.namer.Name(dominant),
		AverageColor:      average,
		AverageColorName:  p.namer.Name(average),
		Pattern:           prediction.Label,
		Confidence:        prediction.Confidence,
		Probabilities:     prediction.Probabilities,
	}, nil
}

// ExtractBytes decodes an encoded image and runs Extract on it.
func (p *Pipeline) ExtractBytes(ctx context.Context, data []byte) (*Record, error) {
	img, format, err := simage.Decode(data)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("decoded image", "format", format, "width", img.Width(), "height", img.Height())
	return p.Extract(ctx, img)
}

func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		p.logger.Debug("stage failed", "stage", name, "error", err, "elapsed", time.Since(start))
		return err
	}
	p.logger.Debug("stage complete", "stage", name, "elapsed", time.Since(start))
	return nil
}

// seededClusterer applies the configured seed mode when the clusterer
// supports seeding.
func (p *Pipeline) seededClusterer(img *simage.RGB) (colour.Clusterer, error) {
	s, ok := p.clusterer.(colour.Seedable)
	if !ok {
		return p.clusterer, nil
	}
	cfg := p.seed.Resolve()
	if cfg.Mode == seed.ModeRandom {
		return p.clusterer, nil
	}
	value, err := seed.Calculate(img, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate seed: %w", err)
	}
	p.logger.Debug("k-means seed", "mode", cfg.Mode, "seed", value)
	return s.WithSeed(value), nil
}

// clusterView downscales img so its longest side is at most
// maxDimension, keeping the aspect ratio.
func (p *Pipeline) clusterView(img *simage.RGB) image.Image {
	if p.maxDimension == 0 || max(img.Width(), img.Height()) <= p.maxDimension {
		return img
	}
	return imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Box)
}

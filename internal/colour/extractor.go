package colour

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sort"

	simage "github.com/jmylchreest/swatch/internal/image"
)

// DefaultClusterCount is the number of clusters used to find the
// dominant colour when the caller does not choose one.
const DefaultClusterCount = 5

// Clusterer partitions the pixels of an image into k colour clusters.
type Clusterer interface {
	Cluster(ctx context.Context, img image.Image, k int) (*ClusterResult, error)
}

// Seedable is implemented by clusterers whose initialisation can be made
// reproducible. WithSeed returns a copy; the receiver is not modified.
type Seedable interface {
	WithSeed(seed int64) Clusterer
}

// Point is a cluster centroid in continuous RGB space.
type Point struct {
	R, G, B float64
}

// RGB rounds each channel to the nearest integer and clamps to [0, 255].
func (p Point) RGB() RGB {
	return RGB{R: clampChannel(p.R), G: clampChannel(p.G), B: clampChannel(p.B)}
}

func (p Point) distanceSq(o Point) float64 {
	dr := p.R - o.R
	dg := p.G - o.G
	db := p.B - o.B
	return dr*dr + dg*dg + db*db
}

// ClusterResult is the outcome of a clustering run.
type ClusterResult struct {
	Centroids []Point
	// Counts holds the member count of each centroid.
	Counts []int
	// Assignments maps each pixel (row-major) to its centroid index. It
	// is nil for backends that do not report membership.
	Assignments []int
	// Compactness is the sum of squared distances from each pixel to its
	// centroid.
	Compactness float64
	Iterations  int
}

// Largest returns the index of the centroid with the most members. Ties
// go to the lowest index.
func (r *ClusterResult) Largest() int {
	best := 0
	for i, n := range r.Counts {
		if n > r.Counts[best] {
			best = i
		}
	}
	return best
}

// Swatch is a cluster colour with its share of the image.
type Swatch struct {
	Colour RGB     `json:"colour"`
	Weight float64 `json:"weight"`
}

// Swatches returns the clusters as colours ordered by decreasing weight.
// Equal weights keep centroid order.
func (r *ClusterResult) Swatches() []Swatch {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	swatches := make([]Swatch, len(r.Centroids))
	for i, c := range r.Centroids {
		swatches[i].Colour = c.RGB()
		if total > 0 {
			swatches[i].Weight = float64(r.Counts[i]) / float64(total)
		}
	}
	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].Weight > swatches[j].Weight
	})
	return swatches
}

// Dominant clusters img into k groups and returns the centroid of the
// largest one.
func Dominant(ctx context.Context, c Clusterer, img image.Image, k int) (RGB, error) {
	res, err := c.Cluster(ctx, img, k)
	if err != nil {
		return RGB{}, err
	}
	if len(res.Centroids) == 0 {
		return RGB{}, fmt.Errorf("%w: clustering produced no centroids", ErrInvalidClusterCount)
	}
	return res.Centroids[res.Largest()].RGB(), nil
}

// Algorithm represents the clustering algorithm type.
type Algorithm string

const (
	// AlgorithmKMeans is the built-in Lloyd k-means with random restarts.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmProminent delegates to the prominentcolor library.
	AlgorithmProminent Algorithm = "prominent"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmKMeans, AlgorithmProminent}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// ExtractorOptions tunes the clustering run. Zero fields take defaults.
type ExtractorOptions struct {
	MaxIterations int
	Epsilon       float64
	Attempts      int
	// Seed makes initialisation reproducible. Nil draws a fresh seed per
	// call.
	Seed *int64
}

// DefaultExtractorOptions returns the default termination criteria: ten
// iterations or centroid movement below 1.0, best of ten attempts.
func DefaultExtractorOptions() ExtractorOptions {
	return ExtractorOptions{
		MaxIterations: 10,
		Epsilon:       1.0,
		Attempts:      10,
	}
}

func (o ExtractorOptions) withDefaults() ExtractorOptions {
	d := DefaultExtractorOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	if o.Attempts <= 0 {
		o.Attempts = d.Attempts
	}
	return o
}

// NewExtractor creates a Clusterer for the specified algorithm.
func NewExtractor(alg Algorithm, opts ExtractorOptions) (Clusterer, error) {
	switch alg {
	case AlgorithmKMeans, "":
		return NewKMeansExtractor(opts), nil
	case AlgorithmProminent:
		return NewProminentExtractor(opts), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// validateClusterInput converts img and checks that k is usable for it.
func validateClusterInput(img image.Image, k int) (*simage.RGB, error) {
	rgb, err := simage.FromImage(img)
	if err != nil {
		return nil, err
	}
	if k < 1 || k > rgb.Len() {
		return nil, fmt.Errorf("%w: k=%d, image has %d pixels", ErrInvalidClusterCount, k, rgb.Len())
	}
	return rgb, nil
}

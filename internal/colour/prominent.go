package colour

import (
	"context"
	"fmt"
	"image"

	"github.com/EdlinOrg/prominentcolor"

	simage "github.com/jmylchreest/swatch/internal/image"
)

// ProminentExtractor clusters with the prominentcolor library. The image
// is neither cropped nor masked; its width is passed as the working size
// so the library keeps the original resolution. The library's centroids
// are refined against the pixels before they are reported, so Epsilon,
// MaxIterations and Attempts do not apply.
type ProminentExtractor struct {
	opts ExtractorOptions
}

// NewProminentExtractor creates a ProminentExtractor. Only Seed is
// honoured: a set seed selects the library's deterministic seeding.
func NewProminentExtractor(opts ExtractorOptions) *ProminentExtractor {
	return &ProminentExtractor{opts: opts.withDefaults()}
}

// WithSeed returns a deterministic copy. The library has a single fixed
// seed so the value itself is not used.
func (e *ProminentExtractor) WithSeed(s int64) Clusterer {
	opts := e.opts
	opts.Seed = &s
	return &ProminentExtractor{opts: opts}
}

// Cluster implements Clusterer.
func (e *ProminentExtractor) Cluster(ctx context.Context, img image.Image, k int) (*ClusterResult, error) {
	rgb, err := validateClusterInput(img, k)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := prominentcolor.ArgumentNoCropping
	if e.opts.Seed == nil {
		args |= prominentcolor.ArgumentSeedRandom
	}

	items, err := prominentcolor.KmeansWithAll(k, rgb, args, uint(rgb.Width()), nil) // #nosec G115 -- width is positive
	if err != nil {
		return nil, fmt.Errorf("prominentcolor clustering failed: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("prominentcolor returned no clusters")
	}

	seeds := make([]Point, len(items))
	for i, item := range items {
		seeds[i] = Point{
			R: float64(item.Color.R),
			G: float64(item.Color.G),
			B: float64(item.Color.B),
		}
	}
	return refine(rgb, seeds), nil
}

// refine turns the library's centroids, which summarise distinct colours
// rather than pixels, into pixel-weighted means with one assign and
// recompute pass over every pixel.
func refine(rgb *simage.RGB, seeds []Point) *ClusterResult {
	points := pixelPoints(rgb)

	k := len(seeds)
	assignments := make([]int, len(points))
	dists := make([]float64, len(points))
	assign(points, seeds, assignments, dists)
	centroids := recompute(points, assignments, dists, k)
	compactness := assign(points, centroids, assignments, dists)

	counts := make([]int, k)
	for _, a := range assignments {
		counts[a]++
	}
	return &ClusterResult{
		Centroids:   centroids,
		Counts:      counts,
		Assignments: assignments,
		Compactness: compactness,
		Iterations:  1,
	}
}

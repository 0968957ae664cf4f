package colour

import (
	"context"
	"image"
	"math"
	"math/rand"

	"github.com/jmylchreest/swatch/internal/colour/seed"
	simage "github.com/jmylchreest/swatch/internal/image"
)

// KMeansExtractor clusters pixels with Lloyd's algorithm. Each attempt
// starts from k distinct random pixels; the attempt with the lowest
// compactness wins. It is stateless and safe for concurrent use.
type KMeansExtractor struct {
	opts ExtractorOptions
}

// NewKMeansExtractor creates a KMeansExtractor. Zero option fields take
// the values of DefaultExtractorOptions.
func NewKMeansExtractor(opts ExtractorOptions) *KMeansExtractor {
	return &KMeansExtractor{opts: opts.withDefaults()}
}

// WithSeed returns a copy of the extractor that always uses seed.
func (e *KMeansExtractor) WithSeed(s int64) Clusterer {
	opts := e.opts
	opts.Seed = &s
	return &KMeansExtractor{opts: opts}
}

// Options returns the effective options.
func (e *KMeansExtractor) Options() ExtractorOptions { return e.opts }

// Cluster partitions every pixel of img into k clusters.
func (e *KMeansExtractor) Cluster(ctx context.Context, img image.Image, k int) (*ClusterResult, error) {
	rgb, err := validateClusterInput(img, k)
	if err != nil {
		return nil, err
	}

	points := pixelPoints(rgb)

	s := seed.GenerateRandomSeed()
	if e.opts.Seed != nil {
		s = *e.opts.Seed
	}
	rng := rand.New(rand.NewSource(s)) // #nosec G404 -- clustering does not need a CSPRNG

	var best *ClusterResult
	for attempt := 0; attempt < e.opts.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := e.run(ctx, points, k, rng)
		if err != nil {
			return nil, err
		}
		if best == nil || res.Compactness < best.Compactness {
			best = res
		}
	}
	return best, nil
}

// run performs a single k-means attempt.
func (e *KMeansExtractor) run(ctx context.Context, points []Point, k int, rng *rand.Rand) (*ClusterResult, error) {
	centroids := initialCentroids(points, k, rng)
	assignments := make([]int, len(points))
	dists := make([]float64, len(points))
	epsSq := e.opts.Epsilon * e.opts.Epsilon

	iterations := 0
	for iterations < e.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations++

		assign(points, centroids, assignments, dists)
		next := recompute(points, assignments, dists, k)

		shift := 0.0
		for i := range centroids {
			shift = math.Max(shift, centroids[i].distanceSq(next[i]))
		}
		centroids = next
		if shift < epsSq {
			break
		}
	}

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
		Iterations:  iterations,
	}, nil
}

// pixelPoints lists every pixel of rgb in row-major order.
func pixelPoints(rgb *simage.RGB) []Point {
	points := make([]Point, rgb.Len())
	for i := range points {
		r, g, b := rgb.Pixel(i)
		points[i] = Point{R: float64(r), G: float64(g), B: float64(b)}
	}
	return points
}

// initialCentroids picks k distinct pixel positions. Distinct positions
// may still share a colour.
func initialCentroids(points []Point, k int, rng *rand.Rand) []Point {
	centroids := make([]Point, 0, k)
	if 2*k > len(points) {
		for _, idx := range rng.Perm(len(points))[:k] {
			centroids = append(centroids, points[idx])
		}
		return centroids
	}

	chosen := make(map[int]struct{}, k)
	for len(centroids) < k {
		idx := rng.Intn(len(points))
		if _, ok := chosen[idx]; ok {
			continue
		}
		chosen[idx] = struct{}{}
		centroids = append(centroids, points[idx])
	}
	return centroids
}

// assign moves every point to its nearest centroid, ties to the lowest
// index, records the squared distance and returns the total.
func assign(points, centroids []Point, assignments []int, dists []float64) float64 {
	total := 0.0
	for i, p := range points {
		nearest, minDist := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := p.distanceSq(centroid); d < minDist {
				nearest, minDist = c, d
			}
		}
		assignments[i] = nearest
		dists[i] = minDist
		total += minDist
	}
	return total
}

// recompute returns the mean of each cluster. A cluster that lost all its
// members is moved onto the point furthest from its current centroid.
func recompute(points []Point, assignments []int, dists []float64, k int) []Point {
	sums := make([]Point, k)
	counts := make([]int, k)
	for i, p := range points {
		c := assignments[i]
		sums[c].R += p.R
		sums[c].G += p.G
		sums[c].B += p.B
		counts[c]++
	}

	centroids := make([]Point, k)
	var taken map[int]struct{}
	for c := range k {
		if counts[c] > 0 {
			n := float64(counts[c])
			centroids[c] = Point{R: sums[c].R / n, G: sums[c].G / n, B: sums[c].B / n}
			continue
		}
		if taken == nil {
			taken = make(map[int]struct{})
		}
		far := furthest(dists, taken)
		taken[far] = struct{}{}
		centroids[c] = points[far]
	}
	return centroids
}

func furthest(dists []float64, skip map[int]struct{}) int {
	best, bestDist := 0, -1.0
	for i, d := range dists {
		if _, ok := skip[i]; ok {
			continue
		}
		if d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

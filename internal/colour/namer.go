package colour

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// BlackThreshold is the inclusive upper bound on every channel for a
	// colour to be named "black" regardless of the table.
	BlackThreshold uint8 = 30

	// WhiteThreshold is the inclusive lower bound on every channel for a
	// colour to be named "white" regardless of the table.
	WhiteThreshold uint8 = 225

	// NameBlack and NameWhite are the labels produced by the guards.
	NameBlack = "black"
	NameWhite = "white"
)

// Namer maps an RGB triple to a human-readable colour name.
type Namer interface {
	Name(rgb RGB) string
}

// NamedColour is a single entry of a colour name table.
type NamedColour struct {
	Name string
	RGB  RGB
}

// Metric selects the distance function used for nearest-name lookup.
type Metric string

const (
	// MetricRGB is plain Euclidean distance in RGB space.
	MetricRGB Metric = "rgb"
	// MetricLab is Euclidean distance in CIE L*a*b* space.
	MetricLab Metric = "lab"
)

// ValidMetrics returns the supported metrics.
func ValidMetrics() []Metric {
	return []Metric{MetricRGB, MetricLab}
}

// ParseMetric converts a string to a Metric.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return MetricRGB, nil
	}
	if slices.Contains(ValidMetrics(), m) {
		return m, nil
	}
	return "", fmt.Errorf("invalid namer metric: %s (valid: %v)", s, ValidMetrics())
}

// NamerOption configures a TableNamer.
type NamerOption func(*TableNamer)

// WithMetric sets the distance metric. Guards are applied before the
// metric regardless of the choice.
func WithMetric(m Metric) NamerOption {
	return func(n *TableNamer) { n.metric = m }
}

// WithThresholds overrides the black and white guard thresholds. The pair
// is validated by NewTableNamer.
func WithThresholds(black, white uint8) NamerOption {
	return func(n *TableNamer) {
		n.black = black
		n.white = white
	}
}

// TableNamer names colours by nearest match against an ordered table.
// It is immutable after construction and safe for concurrent use.
type TableNamer struct {
	table  []NamedColour
	lab    []colorful.Color
	exact  map[RGB]string
	metric Metric
	black  uint8
	white  uint8
}

// NewTableNamer builds a namer over table. Table order is the tie-break
// order: when two entries are equally close the earlier one wins.
func NewTableNamer(table []NamedColour, opts ...NamerOption) (*TableNamer, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("colour name table is empty")
	}

	n := &TableNamer{
		table:  slices.Clone(table),
		exact:  make(map[RGB]string, len(table)),
		metric: MetricRGB,
		black:  BlackThreshold,
		white:  WhiteThreshold,
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.black >= n.white {
		return nil, fmt.Errorf("%w: black threshold %d must be below white threshold %d",
			ErrInvalidThresholds, n.black, n.white)
	}
	if _, err := ParseMetric(string(n.metric)); err != nil {
		return nil, err
	}

	n.lab = make([]colorful.Color, len(n.table))
	for i, entry := range n.table {
		if entry.Name == "" {
			return nil, fmt.Errorf("colour name table entry %d has no name", i)
		}
		if _, ok := n.exact[entry.RGB]; !ok {
			n.exact[entry.RGB] = entry.Name
		}
		n.lab[i] = toColorful(entry.RGB)
	}

	return n, nil
}

// Name returns the colour name for rgb. It never fails: the guards catch
// near-black and near-white inputs, everything else gets its nearest
// table entry.
func (n *TableNamer) Name(rgb RGB) string {
	if rgb.R <= n.black && rgb.G <= n.black && rgb.B <= n.black {
		return NameBlack
	}
	if rgb.R >= n.white && rgb.G >= n.white && rgb.B >= n.white {
		return NameWhite
	}
	if name, ok := n.exact[rgb]; ok {
		return name
	}

	if n.metric == MetricLab {
		return n.nearestLab(rgb)
	}
	return n.nearestRGB(rgb)
}

func (n *TableNamer) nearestRGB(rgb RGB) string {
	best, bestDist := 0, math.MaxInt
	for i, entry := range n.table {
		if d := distanceSq(rgb, entry.RGB); d < bestDist {
			best, bestDist = i, d
		}
	}
	return n.table[best].Name
}

func (n *TableNamer) nearestLab(rgb RGB) string {
	c := toColorful(rgb)
	best, bestDist := 0, math.Inf(1)
	for i, ref := range n.lab {
		if d := c.DistanceLab(ref); d < bestDist {
			best, bestDist = i, d
		}
	}
	return n.table[best].Name
}

// Vocabulary returns every name the namer can produce, in table order,
// followed by the guard names when the table does not already carry them.
func (n *TableNamer) Vocabulary() []string {
	names := make([]string, 0, len(n.table)+2)
	for _, entry := range n.table {
		if !slices.Contains(names, entry.Name) {
			names = append(names, entry.Name)
		}
	}
	for _, guard := range []string{NameBlack, NameWhite} {
		if !slices.Contains(names, guard) {
			names = append(names, guard)
		}
	}
	return names
}

// Metric returns the configured distance metric.
func (n *TableNamer) Metric() Metric { return n.metric }

// distanceSq is the squared Euclidean distance in RGB space. Squaring
// preserves ordering, so the square root is never taken.
func distanceSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

func toColorful(rgb RGB) colorful.Color {
	return colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
}

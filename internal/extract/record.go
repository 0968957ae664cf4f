package extract

import (
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/swatch/internal/colour"
)

// Record holds the attributes extracted from one garment photo. It is
// created once per request and not modified afterwards.
type Record struct {
	DominantColor     colour.RGB
	DominantColorName string
	AverageColor      colour.RGB
	AverageColorName  string
	Pattern           string
	// Confidence is the pattern probability as a percentage in [0, 100].
	Confidence float64
	// Probabilities holds the percentage of every pattern class.
	Probabilities map[string]float64
}

// ConfidenceString renders the confidence with two decimals, e.g. "87.34%".
func (r Record) ConfidenceString() string {
	return fmt.Sprintf("%.2f%%", r.Confidence)
}

// recordJSON is the wire shape of a Record. Colours are [r, g, b] arrays
// and the confidence is a formatted percentage string.
type recordJSON struct {
	DominantColor        [3]int             `json:"dominant_color"`
	DominantColorHex     string             `json:"dominant_color_hex"`
	DominantColorName    string             `json:"dominant_color_name"`
	AverageColor         [3]int             `json:"average_color"`
	AverageColorHex      string             `json:"average_color_hex"`
	AverageColorName     string             `json:"average_color_name"`
	Pattern              string             `json:"pattern"`
	Confidence           string             `json:"confidence"`
	PatternProbabilities map[string]float64 `json:"pattern_probabilities,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		DominantColor:        r.DominantColor.Array(),
		DominantColorHex:     r.DominantColor.Hex(),
		DominantColorName:    r.DominantColorName,
		AverageColor:         r.AverageColor.Array(),
		AverageColorHex:      r.AverageColor.Hex(),
		AverageColorName:     r.AverageColorName,
		Pattern:              r.Pattern,
		Confidence:           r.ConfidenceString(),
		PatternProbabilities: r.Probabilities,
	})
}

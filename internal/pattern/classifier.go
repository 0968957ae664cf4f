package pattern

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"slices"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultTimeout bounds a single classification.
const DefaultTimeout = 10 * time.Second

// Prediction is the outcome of classifying one image.
type Prediction struct {
	Label string `json:"pattern"`
	// Confidence is the winning probability as a percentage.
	Confidence float64 `json:"confidence"`
	// Probabilities maps every label to its percentage.
	Probabilities map[string]float64 `json:"probabilities"`
}

// ConfidenceString renders the confidence with two decimals, e.g. "87.34%".
func (p *Prediction) ConfidenceString() string {
	return fmt.Sprintf("%.2f%%", p.Confidence)
}

// ClassifierOptions configures a Classifier.
type ClassifierOptions struct {
	// Timeout bounds each Classify call. Zero uses DefaultTimeout.
	Timeout time.Duration
	Logger  hclog.Logger
}

// Classifier predicts the surface pattern of an image with an injected
// Model. It is safe for concurrent use when the model is.
type Classifier struct {
	model   Model
	labels  []string
	timeout time.Duration
	logger  hclog.Logger
}

// NewClassifier wraps model.
func NewClassifier(model Model, opts ClassifierOptions) (*Classifier, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is nil", ErrModelLoad)
	}
	labels := model.Labels()
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: model has no labels", ErrModelLoad)
	}
	if model.InputSize() < 1 {
		return nil, fmt.Errorf("%w: model input size %d", ErrModelLoad, model.InputSize())
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Classifier{
		model:   model,
		labels:  labels,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}, nil
}

// Labels returns the class names the classifier can produce.
func (c *Classifier) Labels() []string {
	return slices.Clone(c.labels)
}

// Close releases the underlying model.
func (c *Classifier) Close() error {
	return c.model.Close()
}

type predictResult struct {
	scores []float32
	err    error
}

// Classify preprocesses img, runs the model and returns the arg-max label.
func (c *Classifier) Classify(ctx context.Context, img image.Image) (*Prediction, error) {
	input, err := Preprocess(img, c.model.InputSize(), c.model.Layout())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan predictResult, 1)
	go func() {
		scores, err := c.model.Predict(ctx, input)
		done <- predictResult{scores: scores, err: err}
	}()

	var res predictResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrInference, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		if errors.Is(res.err, ErrInference) {
			return nil, res.err
		}
		return nil, fmt.Errorf("%w: %w", ErrInference, res.err)
	}
	if len(res.scores) != len(c.labels) {
		return nil, fmt.Errorf("%w: model returned %d scores for %d labels",
			ErrInference, len(res.scores), len(c.labels))
	}

	probs, err := Normalise(res.scores)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	pred := &Prediction{
		Label:         c.labels[best],
		Confidence:    probs[best] * 100,
		Probabilities: make(map[string]float64, len(c.labels)),
	}
	for i, label := range c.labels {
		pred.Probabilities[label] = probs[i] * 100
	}

	c.logger.Debug("classified image", "pattern", pred.Label,
		"confidence", pred.ConfidenceString(), "elapsed", time.Since(start))
	return pred, nil
}

// distributionTolerance is how far a score vector's sum may stray from one
// and still be taken as probabilities.
const distributionTolerance = 1e-3

// Normalise turns raw scores into probabilities. A vector that already
// forms a distribution is rescaled to sum to exactly one; anything else
// (logits) goes through a numerically stable softmax.
func Normalise(scores []float32) ([]float64, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("no scores")
	}

	isDistribution := true
	sum, maxScore := 0.0, math.Inf(-1)
	for i, s := range scores {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("score %d is not finite: %v", i, v)
		}
		if v < 0 || v > 1 {
			isDistribution = false
		}
		sum += v
		maxScore = math.Max(maxScore, v)
	}

	probs := make([]float64, len(scores))
	if isDistribution && math.Abs(sum-1) <= distributionTolerance {
		for i, s := range scores {
			probs[i] = float64(s) / sum
		}
		return probs, nil
	}

	total := 0.0
	for i, s := range scores {
		probs[i] = math.Exp(float64(s) - maxScore)
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs, nil
}

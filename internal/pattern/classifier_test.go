package pattern

import (
	"context"
	"errors"
	"image"
	"math"
	"sync"
	"testing"
	"time"

	simage "github.com/jmylchreest/swatch/internal/image"
)

func newTestModel(t *testing.T, fn ModelFunc) Model {
	t.Helper()
	m, err := NewStaticModel(DefaultLabels, 16, LayoutNHWC, fn)
	if err != nil {
		t.Fatalf("NewStaticModel() error = %v", err)
	}
	return m
}

func fixedScores(scores ...float32) ModelFunc {
	return func(context.Context, []float32) ([]float32, error) {
		return scores, nil
	}
}

func TestClassifierClassify(t *testing.T) {
	tests := []struct {
		name       string
		scores     []float32
		wantLabel  string
		wantConf   string
		wantSolidP float64
	}{
		{
			name:       "probabilities",
			scores:     []float32{0.02, 0.03, 0.05, 0.8734, 0.0266, 0.0},
			wantLabel:  "solid",
			wantConf:   "87.34%",
			wantSolidP: 87.34,
		},
		{
			name:       "tie goes to first label",
			scores:     []float32{0.4, 0.4, 0.2, 0, 0, 0},
			wantLabel:  "checkered",
			wantConf:   "40.00%",
			wantSolidP: 0,
		},
		{
			name:       "logits are softmaxed",
			scores:     []float32{0, 0, 0, 0, 0, 0},
			wantLabel:  "checkered",
			wantConf:   "16.67%",
			wantSolidP: 100.0 / 6,
		},
	}

	img := simage.NewUniform(20, 20, image.White.C)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClassifier(newTestModel(t, fixedScores(tt.scores...)), ClassifierOptions{})
			if err != nil {
				t.Fatalf("NewClassifier() error = %v", err)
			}
			pred, err := c.Classify(context.Background(), img)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if pred.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", pred.Label, tt.wantLabel)
			}
			if got := pred.ConfidenceString(); got != tt.wantConf {
				t.Errorf("ConfidenceString() = %q, want %q", got, tt.wantConf)
			}
			if pred.Confidence < 0 || pred.Confidence > 100 {
				t.Errorf("Confidence = %v out of range", pred.Confidence)
			}
			if math.Abs(pred.Probabilities["solid"]-tt.wantSolidP) > 1e-3 {
				t.Errorf("Probabilities[solid] = %v, want %v", pred.Probabilities["solid"], tt.wantSolidP)
			}
			total := 0.0
			for _, p := range pred.Probabilities {
				total += p
			}
			if math.Abs(total-100) > 1e-6 {
				t.Errorf("probabilities sum to %v, want 100", total)
			}
		})
	}
}

func TestClassifierErrors(t *testing.T) {
	img := simage.NewUniform(8, 8, image.Black.C)
	boom := errors.New("boom")

	tests := []struct {
		name string
		fn   ModelFunc
		img  image.Image
		want error
	}{
		{"forward pass fails", func(context.Context, []float32) ([]float32, error) { return nil, boom }, img, ErrInference},
		{"wrong output length", fixedScores(0.5, 0.5), img, ErrInference},
		{"non-finite output", fixedScores(float32(math.NaN()), 0, 0, 0, 0, 0), img, ErrInference},
		{"nil image", fixedScores(1, 0, 0, 0, 0, 0), nil, simage.ErrInvalidImage},
		{"empty image", fixedScores(1, 0, 0, 0, 0, 0), image.NewNRGBA(image.Rect(0, 0, 0, 3)), simage.ErrInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClassifier(newTestModel(t, tt.fn), ClassifierOptions{})
			if err != nil {
				t.Fatalf("NewClassifier() error = %v", err)
			}
			_, err = c.Classify(context.Background(), tt.img)
			if !errors.Is(err, tt.want) {
				t.Errorf("Classify() error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("underlying error kept", func(t *testing.T) {
		c, _ := NewClassifier(newTestModel(t, func(context.Context, []float32) ([]float32, error) { return nil, boom }), ClassifierOptions{})
		if _, err := c.Classify(context.Background(), img); !errors.Is(err, boom) {
			t.Errorf("Classify() error = %v, want wrapped boom", err)
		}
	})
}

func TestClassifierTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	slow := func(ctx context.Context, _ []float32) ([]float32, error) {
		<-release
		return []float32{1, 0, 0, 0, 0, 0}, nil
	}
	c, err := NewClassifier(newTestModel(t, slow), ClassifierOptions{Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}

	_, err = c.Classify(context.Background(), simage.NewUniform(4, 4, image.White.C))
	if !errors.Is(err, ErrInference) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Classify() error = %v, want ErrInference wrapping DeadlineExceeded", err)
	}
}

func TestClassifierConcurrent(t *testing.T) {
	c, err := NewClassifier(newTestModel(t, fixedScores(0, 0, 0, 0, 1, 0)), ClassifierOptions{})
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	img := simage.NewUniform(32, 32, image.White.C)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pred, err := c.Classify(context.Background(), img)
			if err == nil && pred.Label != "striped" {
				err = errors.New("unexpected label " + pred.Label)
			}
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewClassifierErrors(t *testing.T) {
	if _, err := NewClassifier(nil, ClassifierOptions{}); !errors.Is(err, ErrModelLoad) {
		t.Errorf("NewClassifier(nil) error = %v, want ErrModelLoad", err)
	}
	if _, err := NewStaticModel(nil, 16, LayoutNHWC, fixedScores()); !errors.Is(err, ErrModelLoad) {
		t.Errorf("NewStaticModel(no labels) error = %v, want ErrModelLoad", err)
	}
	if _, err := NewStaticModel(DefaultLabels, 0, LayoutNHWC, fixedScores()); !errors.Is(err, ErrModelLoad) {
		t.Errorf("NewStaticModel(size 0) error = %v, want ErrModelLoad", err)
	}
}

func TestNormalise(t *testing.T) {
	probs, err := Normalise([]float32{2, 1, 0})
	if err != nil {
		t.Fatalf("Normalise() error = %v", err)
	}
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("softmax sums to %v", sum)
	}
	if !(probs[0] > probs[1] && probs[1] > probs[2]) {
		t.Errorf("softmax changed ordering: %v", probs)
	}

	// Large logits must not overflow.
	if _, err := Normalise([]float32{1000, 999}); err != nil {
		t.Errorf("Normalise(large) error = %v", err)
	}
	if _, err := Normalise(nil); err == nil {
		t.Error("Normalise(nil) should fail")
	}
	if _, err := Normalise([]float32{float32(math.Inf(1)), 0}); err == nil {
		t.Error("Normalise(Inf) should fail")
	}
}

package classify

import (
	"errors"
	"math"
	"testing"

	"github.com/veracitylab/veracity/pkg/veracity/internalerr"
	"github.com/veracitylab/veracity/pkg/veracity/model"
)

func testBundle(t *testing.T) *model.Bundle {
	t.Helper()
	b := &model.Bundle{
		Vocabulary:   []string{"report", "fake", "breaking"},
		IDF:          []float64{1.0, 2.0, 1.5},
		Coefficients: []float64{0.5, -1.2, 0.3},
		Intercept:    0.1,
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	return b
}

func TestPredictKnownDocument(t *testing.T) {
	c := New(testBundle(t))

	// Normalized form of raw weights [1, 6, 0].
	norm := math.Sqrt(37)
	features := []float64{1 / norm, 6 / norm, 0}

	got, err := c.Predict(features)
	if err != nil {
		t.Fatalf("Predict() = %v", err)
	}

	if math.Abs(got.Score-(-1.0014732)) > 1e-6 {
		t.Errorf("Score = %v, want -1.0014732", got.Score)
	}
	if math.Abs(got.Probability-0.2686519) > 1e-6 {
		t.Errorf("Probability = %v, want 0.2686519", got.Probability)
	}
	if got.Label != LabelGenuine {
		t.Errorf("Label = %d, want %d", got.Label, LabelGenuine)
	}
	if math.Abs(got.Confidence-0.7313481) > 1e-6 {
		t.Errorf("Confidence = %v, want 0.7313481", got.Confidence)
	}
}

func TestPredictZeroVectorUsesIntercept(t *testing.T) {
	c := New(testBundle(t))

	got, err := c.Predict([]float64{0, 0, 0})
	if err != nil {
		t.Fatalf("Predict() = %v", err)
	}

	// sigmoid(0.1) = 0.52497919.
	if math.Abs(got.Probability-0.5249792) > 1e-6 {
		t.Errorf("Probability = %v, want 0.5249792", got.Probability)
	}
	if got.Label != LabelFabricated {
		t.Errorf("Label = %d, want %d", got.Label, LabelFabricated)
	}
}

func TestPredictBoundaryIsGenuine(t *testing.T) {
	b := &model.Bundle{
		Vocabulary:   []string{"term"},
		IDF:          []float64{1},
		Coefficients: []float64{1},
		Intercept:    0,
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	c := New(b)

	got, err := c.Predict([]float64{0})
	if err != nil {
		t.Fatalf("Predict() = %v", err)
	}
	if got.Probability != 0.5 {
		t.Fatalf("Probability = %v, want exactly 0.5", got.Probability)
	}
	if got.Label != LabelGenuine {
		t.Errorf("Label at probability 0.5 = %d, want %d", got.Label, LabelGenuine)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}
}

func TestPredictSaturatedScores(t *testing.T) {
	b := &model.Bundle{
		Vocabulary:   []string{"term"},
		IDF:          []float64{1},
		Coefficients: []float64{1000},
		Intercept:    0,
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	c := New(b)

	high, err := c.Predict([]float64{1})
	if err != nil {
		t.Fatalf("Predict() = %v", err)
	}
	if high.Probability != 1 || high.Label != LabelFabricated || high.Confidence != 1 {
		t.Errorf("saturated positive: p=%v label=%d confidence=%v", high.Probability, high.Label, high.Confidence)
	}

	low, err := c.Predict([]float64{-1})
	if err != nil {
		t.Fatalf("Predict() = %v", err)
	}
	if low.Probability != 0 || low.Label != LabelGenuine || low.Confidence != 1 {
		t.Errorf("saturated negative: p=%v label=%d confidence=%v", low.Probability, low.Label, low.Confidence)
	}
	if math.IsNaN(low.Probability) || math.IsNaN(high.Probability) {
		t.Error("saturated scores produced NaN probabilities")
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	c := New(testBundle(t))

	_, err := c.Predict([]float64{1, 2})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Predict() = %v, want ErrInvalidInput", err)
	}
}

func TestContributionsOrdering(t *testing.T) {
	c := New(testBundle(t))

	norm := math.Sqrt(37)
	features := []float64{1 / norm, 6 / norm, 0}

	got := c.Contributions(features, 5)
	if len(got) != 2 {
		t.Fatalf("Contributions() returned %d entries, want 2", len(got))
	}
	if got[0].Term != "fake" {
		t.Errorf("strongest term = %q, want fake", got[0].Term)
	}
	if got[0].Weight >= 0 {
		t.Errorf("fake weight = %v, want negative", got[0].Weight)
	}
	if got[1].Term != "report" {
		t.Errorf("second term = %q, want report", got[1].Term)
	}
}

func TestContributionsTruncatesToK(t *testing.T) {
	c := New(testBundle(t))

	norm := math.Sqrt(37)
	features := []float64{1 / norm, 6 / norm, 0}

	got := c.Contributions(features, 1)
	if len(got) != 1 || got[0].Term != "fake" {
		t.Errorf("Contributions(k=1) = %v, want just fake", got)
	}
	if got := c.Contributions(features, 0); got != nil {
		t.Errorf("Contributions(k=0) = %v, want nil", got)
	}
}

func TestContributionsTiesKeepVocabularyOrder(t *testing.T) {
	b := &model.Bundle{
		Vocabulary:   []string{"alpha", "beta"},
		IDF:          []float64{1, 1},
		Coefficients: []float64{1, -1},
		Intercept:    0,
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	c := New(b)

	got := c.Contributions([]float64{0.5, 0.5}, 2)
	if len(got) != 2 {
		t.Fatalf("Contributions() returned %d entries, want 2", len(got))
	}
	if got[0].Term != "alpha" || got[1].Term != "beta" {
		t.Errorf("tied magnitudes ordered %q, %q, want alpha, beta", got[0].Term, got[1].Term)
	}
}

package classify

import (
	"fmt"
	"math"
	"sort"

	"github.com/veracitylab/veracity/pkg/veracity/internalerr"
	"github.com/veracitylab/veracity/pkg/veracity/model"
)

// Label values. Training encodes fabricated articles as 1 and genuine
// ones as 0; the classifier keeps that convention.
const (
	LabelGenuine    = 0
	LabelFabricated = 1
)

// Prediction is the outcome of scoring one feature vector
type Prediction struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
	Confidence  float64 `json:"confidence"`
	Score       float64 `json:"score"`
}

// Contribution is one term's signed pull on the decision. Positive weights
// push toward the fabricated label, negative toward genuine.
type Contribution struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Classifier applies a bundle's logistic-regression parameters to feature
// vectors. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	bundle *model.Bundle
}

// New returns a classifier bound to bundle. The bundle must be validated.
func New(bundle *model.Bundle) *Classifier {
	return &Classifier{bundle: bundle}
}

// Predict scores a feature vector. The raw score is the intercept plus the
// dot product with the trained coefficients; the probability is its sigmoid,
// left unclamped since float64 saturates cleanly at 0 and 1. The fabricated
// label requires probability strictly above one half.
func (c *Classifier) Predict(features []float64) (Prediction, error) {
	if len(features) != c.bundle.Features() {
		return Prediction{}, fmt.Errorf("%w: feature vector length %d does not match model features %d",
			internalerr.ErrInvalidInput, len(features), c.bundle.Features())
	}

	score := c.bundle.Intercept
	for i, f := range features {
		score += f * c.bundle.Coefficients[i]
	}

	p := sigmoid(score)
	label := LabelGenuine
	if p > 0.5 {
		label = LabelFabricated
	}

	return Prediction{
		Label:       label,
		Probability: p,
		Confidence:  math.Max(p, 1-p),
		Score:       score,
	}, nil
}

// Contributions returns the k terms with the largest absolute pull on the
// score, strongest first. Terms whose pull is exactly zero are omitted;
// equal magnitudes keep vocabulary order. The features slice must have the
// model's length, as produced by the vectorizer.
func (c *Classifier) Contributions(features []float64, k int) []Contribution {
	if k <= 0 || len(features) != c.bundle.Features() {
		return nil
	}

	contribs := make([]Contribution, 0, len(features))
	for i, f := range features {
		w := f * c.bundle.Coefficients[i]
		if w == 0 {
			continue
		}
		contribs = append(contribs, Contribution{Term: c.bundle.Vocabulary[i], Weight: w})
	}

	sort.SliceStable(contribs, func(i, j int) bool {
		return math.Abs(contribs[i].Weight) > math.Abs(contribs[j].Weight)
	})

	if len(contribs) > k {
		contribs = contribs[:k]
	}
	return contribs
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

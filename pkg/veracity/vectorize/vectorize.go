package vectorize

import (
	"math"

	"github.com/veracitylab/veracity/pkg/veracity/model"
)

// Vectorizer turns normalized token streams into TF-IDF feature vectors
// aligned with a bundle's vocabulary. A term's weight is its raw occurrence
// count times the trained IDF weight, and the finished vector is
// L2-normalized so short and long documents score on the same scale.
type Vectorizer struct {
	bundle *model.Bundle
}

// New returns a vectorizer bound to bundle. The bundle must be validated.
func New(bundle *model.Bundle) *Vectorizer {
	return &Vectorizer{bundle: bundle}
}

// Vector computes the feature vector for tokens. Tokens outside the
// vocabulary contribute nothing. A vector with no vocabulary hits is
// returned all-zero rather than normalized, which would divide by zero.
func (v *Vectorizer) Vector(tokens []string) []float64 {
	features := make([]float64, v.bundle.Features())
	for _, tok := range tokens {
		i, ok := v.bundle.Index(tok)
		if !ok {
			continue
		}
		// Adding idf once per occurrence equals count times idf.
		features[i] += v.bundle.IDF[i]
	}

	var sum float64
	for _, f := range features {
		sum += f * f
	}
	if sum == 0 {
		return features
	}
	norm := math.Sqrt(sum)
	for i := range features {
		features[i] /= norm
	}
	return features
}

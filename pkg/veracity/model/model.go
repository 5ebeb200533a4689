package model

import (
	"fmt"
	"math"

	"github.com/veracitylab/veracity/pkg/veracity/internalerr"
)

// Bundle holds the parameters a trained model exports: the vocabulary, its
// IDF weights, and the logistic-regression coefficients plus intercept.
// Feature index i belongs to Vocabulary[i] across all parallel slices —
// positions are the contract with the training side and must never be
// reordered. A Bundle is validated once and then shared read-only by every
// classification call.
type Bundle struct {
	Name      string `json:"name,omitempty"`
	Version   string `json:"version,omitempty"`
	TrainedAt string `json:"trained_at,omitempty"`
	Notes     string `json:"notes,omitempty"`

	Vocabulary   []string  `json:"vocabulary"`
	IDF          []float64 `json:"idf"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`

	index map[string]int
}

// Validate checks the bundle's internal consistency and builds the term
// index. It must succeed before the bundle is used for inference; a bundle
// that fails validation must be rejected, never used partially.
func (b *Bundle) Validate() error {
	if len(b.Vocabulary) == 0 {
		return fmt.Errorf("%w: empty vocabulary", internalerr.ErrInvalidBundle)
	}
	if len(b.IDF) != len(b.Vocabulary) {
		return fmt.Errorf("%w: idf length %d does not match vocabulary length %d",
			internalerr.ErrInvalidBundle, len(b.IDF), len(b.Vocabulary))
	}
	if len(b.Coefficients) != len(b.Vocabulary) {
		return fmt.Errorf("%w: coefficients length %d does not match vocabulary length %d",
			internalerr.ErrInvalidBundle, len(b.Coefficients), len(b.Vocabulary))
	}

	index := make(map[string]int, len(b.Vocabulary))
	for i, term := range b.Vocabulary {
		if term == "" {
			return fmt.Errorf("%w: empty vocabulary term at index %d", internalerr.ErrInvalidBundle, i)
		}
		if prev, dup := index[term]; dup {
			return fmt.Errorf("%w: duplicate vocabulary term %q at indexes %d and %d",
				internalerr.ErrInvalidBundle, term, prev, i)
		}
		index[term] = i
	}

	for i, v := range b.IDF {
		if !isFinite(v) {
			return fmt.Errorf("%w: non-finite idf value at index %d", internalerr.ErrInvalidBundle, i)
		}
	}
	for i, v := range b.Coefficients {
		if !isFinite(v) {
			return fmt.Errorf("%w: non-finite coefficient at index %d", internalerr.ErrInvalidBundle, i)
		}
	}
	if !isFinite(b.Intercept) {
		return fmt.Errorf("%w: non-finite intercept", internalerr.ErrInvalidBundle)
	}

	b.index = index
	return nil
}

// Index returns the feature index owned by term. Valid after Validate.
func (b *Bundle) Index(term string) (int, bool) {
	i, ok := b.index[term]
	return i, ok
}

// Features returns the vocabulary size, which is the feature vector length
func (b *Bundle) Features() int { return len(b.Vocabulary) }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

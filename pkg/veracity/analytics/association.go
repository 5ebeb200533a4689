package analytics

import (
	"math"
	"sort"

	"github.com/veracitylab/veracity/pkg/veracity/classify"
)

// Calculator handles term-label association via PMI (Pointwise Mutual
// Information)
type Calculator struct {
	epsilon float64 // smoothing constant
}

// NewCalculator creates a new association calculator with the given epsilon
func NewCalculator(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = 1.0
	}
	return &Calculator{epsilon: epsilon}
}

// LabeledDoc is a tokenized document with its known label
type LabeledDoc struct {
	Tokens []string
	Label  int
}

// Association is one term's affinity with the fabricated label
type Association struct {
	Term      string  `json:"term"`
	PMI       float64 `json:"pmi"`
	NPMI      float64 `json:"npmi"`
	Count     int64   `json:"count"`
	WithLabel int64   `json:"with_label"`
}

// PMI calculates the pointwise mutual information between a term and a label
//
// PMI(t,l) = log((N_tl + ε) * N / ((N_t + ε)(N_l + ε)))
//
// Where:
//   - N_tl = number of documents containing the term and carrying the label
//   - N_t, N_l = number of documents with the term / with the label
//   - N = total number of documents
//   - ε = smoothing constant (default 1.0)
func (c *Calculator) PMI(nTL, nT, nL, N int64) float64 {
	if N == 0 {
		return 0
	}

	numerator := (float64(nTL) + c.epsilon) * float64(N)
	denominator := (float64(nT) + c.epsilon) * (float64(nL) + c.epsilon)

	if denominator == 0 {
		return 0
	}

	return math.Log(numerator / denominator)
}

// NPMI calculates normalized PMI (range: -1 to 1)
func (c *Calculator) NPMI(nTL, nT, nL, N int64) float64 {
	if N == 0 || nTL == 0 {
		return 0
	}

	pmi := c.PMI(nTL, nT, nL, N)
	pTL := (float64(nTL) + c.epsilon) / float64(N)
	logPTL := math.Log(pTL)

	if logPTL == 0 {
		return 0
	}

	return pmi / -logPTL
}

// Associations ranks every term in the corpus by its pull toward the
// fabricated label, strongest first. Each document counts a term once no
// matter how often it repeats. Equal scores fall back to term order; k <= 0
// returns everything.
func (c *Calculator) Associations(docs []LabeledDoc, k int) []Association {
	N := int64(len(docs))
	if N == 0 {
		return nil
	}

	var fabricated int64
	termDocs := make(map[string]int64)
	termFabricated := make(map[string]int64)
	for _, d := range docs {
		isFabricated := d.Label == classify.LabelFabricated
		if isFabricated {
			fabricated++
		}
		seen := make(map[string]struct{}, len(d.Tokens))
		for _, tok := range d.Tokens {
			if tok == "" {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			termDocs[tok]++
			if isFabricated {
				termFabricated[tok]++
			}
		}
	}

	assocs := make([]Association, 0, len(termDocs))
	for term, nT := range termDocs {
		nTL := termFabricated[term]
		assocs = append(assocs, Association{
			Term:      term,
			PMI:       c.PMI(nTL, nT, fabricated, N),
			NPMI:      c.NPMI(nTL, nT, fabricated, N),
			Count:     nT,
			WithLabel: nTL,
		})
	}

	sort.Slice(assocs, func(i, j int) bool {
		if assocs[i].PMI != assocs[j].PMI {
			return assocs[i].PMI > assocs[j].PMI
		}
		return assocs[i].Term < assocs[j].Term
	})

	if k > 0 && len(assocs) > k {
		assocs = assocs[:k]
	}
	return assocs
}

// TopAssociated returns the k terms most associated with the given label.
// The fabricated label reads the top of the PMI ranking; genuine reads it
// from the other end, strongest genuine signal first.
func (c *Calculator) TopAssociated(docs []LabeledDoc, label, k int) []Association {
	assocs := c.Associations(docs, 0)
	if label != classify.LabelFabricated {
		sort.SliceStable(assocs, func(i, j int) bool {
			return assocs[i].PMI < assocs[j].PMI
		})
	}
	if k > 0 && len(assocs) > k {
		assocs = assocs[:k]
	}
	return assocs
}

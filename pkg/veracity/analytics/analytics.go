package analytics

import (
	"github.com/veracitylab/veracity/pkg/veracity/classify"
	"github.com/veracitylab/veracity/pkg/veracity/model"
	"github.com/veracitylab/veracity/pkg/veracity/store"
)

// Summary aggregates a batch of verdicts
type Summary struct {
	Total           int     `json:"total"`
	Fabricated      int     `json:"fabricated"`
	Genuine         int     `json:"genuine"`
	FabricatedShare float64 `json:"fabricated_share"`
	MeanProbability float64 `json:"mean_probability"`
	MinProbability  float64 `json:"min_probability"`
	MaxProbability  float64 `json:"max_probability"`
	MeanConfidence  float64 `json:"mean_confidence"`
	MeanCoverage    float64 `json:"mean_coverage"`
	// Histogram counts verdicts by probability decile; bucket i covers
	// [i/10, (i+1)/10), with 1.0 landing in the last bucket.
	Histogram [10]int                 `json:"histogram"`
	BySource  map[string]SourceCounts `json:"by_source,omitempty"`
}

// SourceCounts breaks a summary down per source
type SourceCounts struct {
	Total      int `json:"total"`
	Fabricated int `json:"fabricated"`
}

// Summarize aggregates verdicts in memory. Use store.Stats for the
// database-side view; this one works on whatever slice the caller has.
func Summarize(verdicts []store.Verdict) Summary {
	s := Summary{}
	if len(verdicts) == 0 {
		return s
	}

	s.BySource = make(map[string]SourceCounts)
	s.MinProbability = verdicts[0].Probability
	s.MaxProbability = verdicts[0].Probability

	var probSum, confidenceSum, coverageSum float64
	for _, v := range verdicts {
		s.Total++
		fabricated := v.Label == classify.LabelFabricated
		if fabricated {
			s.Fabricated++
		}

		probSum += v.Probability
		confidenceSum += v.Confidence
		coverageSum += v.Coverage
		if v.Probability < s.MinProbability {
			s.MinProbability = v.Probability
		}
		if v.Probability > s.MaxProbability {
			s.MaxProbability = v.Probability
		}
		s.Histogram[bucket(v.Probability)]++

		if v.Source != "" {
			counts := s.BySource[v.Source]
			counts.Total++
			if fabricated {
				counts.Fabricated++
			}
			s.BySource[v.Source] = counts
		}
	}
	s.Genuine = s.Total - s.Fabricated
	s.FabricatedShare = float64(s.Fabricated) / float64(s.Total)
	s.MeanProbability = probSum / float64(s.Total)
	s.MeanConfidence = confidenceSum / float64(s.Total)
	s.MeanCoverage = coverageSum / float64(s.Total)
	return s
}

func bucket(p float64) int {
	i := int(p * 10)
	if i > 9 {
		i = 9
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Coverage reports the fraction of tokens the model vocabulary knows.
// Low coverage means the verdict rests on little evidence.
func Coverage(tokens []string, bundle *model.Bundle) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range tokens {
		if _, ok := bundle.Index(tok); ok {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

// Outcome pairs a predicted label with the known one
type Outcome struct {
	Predicted int
	Actual    int
}

// Evaluation holds classification quality metrics. Fabricated is the
// positive class throughout.
type Evaluation struct {
	Total          int     `json:"total"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalseNegatives int     `json:"false_negatives"`
}

// Evaluate scores predictions against known labels. Ratios with an empty
// denominator come back 0, never NaN.
func Evaluate(outcomes []Outcome) Evaluation {
	var e Evaluation
	for _, o := range outcomes {
		e.Total++
		switch {
		case o.Predicted == classify.LabelFabricated && o.Actual == classify.LabelFabricated:
			e.TruePositives++
		case o.Predicted == classify.LabelFabricated && o.Actual != classify.LabelFabricated:
			e.FalsePositives++
		case o.Predicted != classify.LabelFabricated && o.Actual != classify.LabelFabricated:
			e.TrueNegatives++
		default:
			e.FalseNegatives++
		}
	}
	if e.Total == 0 {
		return e
	}

	e.Correct = e.TruePositives + e.TrueNegatives
	e.Accuracy = float64(e.Correct) / float64(e.Total)
	if e.TruePositives+e.FalsePositives > 0 {
		e.Precision = float64(e.TruePositives) / float64(e.TruePositives+e.FalsePositives)
	}
	if e.TruePositives+e.FalseNegatives > 0 {
		e.Recall = float64(e.TruePositives) / float64(e.TruePositives+e.FalseNegatives)
	}
	if e.Precision+e.Recall > 0 {
		e.F1 = 2 * e.Precision * e.Recall / (e.Precision + e.Recall)
	}
	return e
}

package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/veracitylab/veracity/pkg/veracity/model"
	"github.com/veracitylab/veracity/pkg/veracity/store"
)

func TestSummarize(t *testing.T) {
	now := time.Now()
	verdicts := []store.Verdict{
		{ID: "a", Source: "tabloid.example", Label: 1, Confidence: 0.9, CreatedAt: now},
		{ID: "b", Source: "tabloid.example", Label: 1, Confidence: 0.7, CreatedAt: now},
		{ID: "c", Source: "paper.example", Label: 0, Confidence: 0.8, CreatedAt: now},
	}

	s := Summarize(verdicts)

	if s.Total != 3 || s.Fabricated != 2 || s.Genuine != 1 {
		t.Errorf("counts = %+v, want total 3, fabricated 2, genuine 1", s)
	}
	if math.Abs(s.FabricatedShare-2.0/3.0) > 1e-9 {
		t.Errorf("FabricatedShare = %f, want 2/3", s.FabricatedShare)
	}
	if math.Abs(s.MeanConfidence-0.8) > 1e-9 {
		t.Errorf("MeanConfidence = %f, want 0.8", s.MeanConfidence)
	}

	tabloid := s.BySource["tabloid.example"]
	if tabloid.Total != 2 || tabloid.Fabricated != 2 {
		t.Errorf("tabloid counts = %+v, want 2/2", tabloid)
	}
	paper := s.BySource["paper.example"]
	if paper.Total != 1 || paper.Fabricated != 0 {
		t.Errorf("paper counts = %+v, want 1/0", paper)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.MeanConfidence != 0 || s.FabricatedShare != 0 {
		t.Errorf("empty summary = %+v, want zeros", s)
	}
}

func TestSummarizeDistribution(t *testing.T) {
	verdicts := []store.Verdict{
		{ID: "a", Label: 0, Probability: 0.05, Confidence: 0.95, Coverage: 0.5},
		{ID: "b", Label: 0, Probability: 0.5, Confidence: 0.5, Coverage: 0.75},
		{ID: "c", Label: 1, Probability: 0.95, Confidence: 0.95, Coverage: 1.0},
	}

	s := Summarize(verdicts)

	if math.Abs(s.MeanProbability-0.5) > 1e-9 {
		t.Errorf("MeanProbability = %f, want 0.5", s.MeanProbability)
	}
	if s.MinProbability != 0.05 || s.MaxProbability != 0.95 {
		t.Errorf("probability range = [%f, %f], want [0.05, 0.95]", s.MinProbability, s.MaxProbability)
	}
	if math.Abs(s.MeanCoverage-0.75) > 1e-9 {
		t.Errorf("MeanCoverage = %f, want 0.75", s.MeanCoverage)
	}

	for i, n := range s.Histogram {
		want := 0
		if i == 0 || i == 5 || i == 9 {
			want = 1
		}
		if n != want {
			t.Errorf("histogram bucket %d = %d, want %d", i, n, want)
		}
	}
}

func TestSummarizeHistogramEdges(t *testing.T) {
	s := Summarize([]store.Verdict{
		{ID: "lo", Probability: 0},
		{ID: "hi", Probability: 1},
	})

	if s.Histogram[0] != 1 || s.Histogram[9] != 1 {
		t.Errorf("histogram = %v, want probabilities 0 and 1 in the outer buckets", s.Histogram)
	}
	if s.MinProbability != 0 || s.MaxProbability != 1 {
		t.Errorf("probability range = [%f, %f], want [0, 1]", s.MinProbability, s.MaxProbability)
	}
}

func TestCoverage(t *testing.T) {
	b := &model.Bundle{
		Vocabulary:   []string{"report", "fake", "breaking"},
		IDF:          []float64{1, 1, 1},
		Coefficients: []float64{0, 0, 0},
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	got := Coverage([]string{"report", "zebra", "fake", "fake"}, b)
	if got != 0.75 {
		t.Errorf("Coverage = %f, want 0.75", got)
	}
	if got := Coverage(nil, b); got != 0 {
		t.Errorf("Coverage of no tokens = %f, want 0", got)
	}
}

func TestAssociationPMIBasic(t *testing.T) {
	calc := NewCalculator(1.0)

	// Strong association: the term appears almost only in fabricated docs
	nTL := int64(8) // term in 8 fabricated docs
	nT := int64(10) // term appears in 10 docs
	nL := int64(10) // 10 fabricated docs
	N := int64(20)  // total 20 docs

	pmi := calc.PMI(nTL, nT, nL, N)
	if pmi <= 0 {
		t.Errorf("PMI for strong association should be positive, got %f", pmi)
	}
}

func TestAssociationPMINegative(t *testing.T) {
	calc := NewCalculator(1.0)

	// The term almost never shows up in fabricated docs
	N := int64(100)
	nT := int64(50)
	nL := int64(50)
	nTL := int64(5)

	pmi := calc.PMI(nTL, nT, nL, N)
	if pmi >= 0 {
		t.Errorf("PMI for anti-correlated term should be negative, got %f", pmi)
	}
}

func TestAssociationPMIEmptyCorpus(t *testing.T) {
	calc := NewCalculator(1.0)
	if pmi := calc.PMI(0, 0, 0, 0); pmi != 0 {
		t.Errorf("PMI with N=0 should be 0, got %f", pmi)
	}
}

func TestAssociationNPMIRange(t *testing.T) {
	calc := NewCalculator(1.0)

	cases := []struct{ nTL, nT, nL, N int64 }{
		{8, 10, 10, 20},
		{5, 50, 50, 100},
		{1, 1, 1, 2},
	}
	for _, c := range cases {
		npmi := calc.NPMI(c.nTL, c.nT, c.nL, c.N)
		if npmi < -1 || npmi > 1 {
			t.Errorf("NPMI(%d,%d,%d,%d) = %f, outside [-1, 1]", c.nTL, c.nT, c.nL, c.N, npmi)
		}
	}
	if npmi := calc.NPMI(0, 10, 10, 20); npmi != 0 {
		t.Errorf("NPMI with no co-occurrence should be 0, got %f", npmi)
	}
}

func TestAssociationsRanking(t *testing.T) {
	calc := NewCalculator(1.0)

	docs := []LabeledDoc{
		{Tokens: []string{"fake", "shock"}, Label: 1},
		{Tokens: []string{"fake", "hoax"}, Label: 1},
		{Tokens: []string{"report"}, Label: 0},
		{Tokens: []string{"report", "studi"}, Label: 0},
	}

	got := calc.Associations(docs, 0)
	if len(got) != 5 {
		t.Fatalf("expected 5 terms, got %d", len(got))
	}

	// fake, hoax, and shock tie on PMI and fall back to term order.
	wantOrder := []string{"fake", "hoax", "shock", "studi", "report"}
	for i, want := range wantOrder {
		if got[i].Term != want {
			t.Errorf("rank %d = %q, want %q", i, got[i].Term, want)
		}
	}

	if got[0].Count != 2 || got[0].WithLabel != 2 {
		t.Errorf("fake counts = %d/%d, want 2/2", got[0].Count, got[0].WithLabel)
	}
	if got[4].PMI >= 0 {
		t.Errorf("report PMI = %f, should be negative", got[4].PMI)
	}

	top2 := calc.Associations(docs, 2)
	if len(top2) != 2 || top2[0].Term != "fake" || top2[1].Term != "hoax" {
		t.Errorf("top 2 = %v, want fake then hoax", top2)
	}
}

func TestAssociationsCountsTermOncePerDoc(t *testing.T) {
	calc := NewCalculator(1.0)

	docs := []LabeledDoc{
		{Tokens: []string{"fake", "fake", "fake"}, Label: 1},
		{Tokens: []string{"report"}, Label: 0},
	}

	got := calc.Associations(docs, 0)
	for _, a := range got {
		if a.Term == "fake" && a.Count != 1 {
			t.Errorf("repeated token counted %d times, want 1", a.Count)
		}
	}
}

func TestTopAssociatedByLabel(t *testing.T) {
	calc := NewCalculator(1.0)

	docs := []LabeledDoc{
		{Tokens: []string{"fake", "shock"}, Label: 1},
		{Tokens: []string{"fake", "hoax"}, Label: 1},
		{Tokens: []string{"report"}, Label: 0},
		{Tokens: []string{"report", "studi"}, Label: 0},
	}

	fab := calc.TopAssociated(docs, 1, 2)
	if len(fab) != 2 || fab[0].Term != "fake" || fab[1].Term != "hoax" {
		t.Errorf("fabricated top 2 = %v, want fake then hoax", fab)
	}

	gen := calc.TopAssociated(docs, 0, 2)
	if len(gen) != 2 || gen[0].Term != "report" || gen[1].Term != "studi" {
		t.Errorf("genuine top 2 = %v, want report then studi", gen)
	}
	if gen[0].PMI >= gen[1].PMI {
		t.Errorf("genuine ranking not ascending: %f then %f", gen[0].PMI, gen[1].PMI)
	}
}

func TestEvaluate(t *testing.T) {
	outcomes := []Outcome{
		{Predicted: 1, Actual: 1},
		{Predicted: 1, Actual: 1},
		{Predicted: 1, Actual: 0},
		{Predicted: 0, Actual: 0},
		{Predicted: 0, Actual: 0},
		{Predicted: 0, Actual: 0},
		{Predicted: 0, Actual: 1},
	}

	e := Evaluate(outcomes)

	if e.TruePositives != 2 || e.FalsePositives != 1 || e.TrueNegatives != 3 || e.FalseNegatives != 1 {
		t.Fatalf("confusion = %+v", e)
	}
	if e.Total != 7 || e.Correct != 5 {
		t.Errorf("Total/Correct = %d/%d, want 7/5", e.Total, e.Correct)
	}
	if math.Abs(e.Accuracy-5.0/7.0) > 1e-9 {
		t.Errorf("Accuracy = %f, want 5/7", e.Accuracy)
	}
	if math.Abs(e.Precision-2.0/3.0) > 1e-9 {
		t.Errorf("Precision = %f, want 2/3", e.Precision)
	}
	if math.Abs(e.Recall-2.0/3.0) > 1e-9 {
		t.Errorf("Recall = %f, want 2/3", e.Recall)
	}
	if math.Abs(e.F1-2.0/3.0) > 1e-9 {
		t.Errorf("F1 = %f, want 2/3", e.F1)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	e := Evaluate(nil)
	if e.Total != 0 || e.Accuracy != 0 || e.F1 != 0 {
		t.Errorf("empty evaluation = %+v, want zeros", e)
	}
}

func TestEvaluateNoPositivePredictions(t *testing.T) {
	outcomes := []Outcome{
		{Predicted: 0, Actual: 0},
		{Predicted: 0, Actual: 1},
	}

	e := Evaluate(outcomes)
	if math.IsNaN(e.Precision) || math.IsNaN(e.Recall) || math.IsNaN(e.F1) {
		t.Fatal("metrics must not be NaN when a class is empty")
	}
	if e.Precision != 0 || e.F1 != 0 {
		t.Errorf("Precision/F1 = %f/%f, want 0/0", e.Precision, e.F1)
	}
}

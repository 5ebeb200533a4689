// veracity-eval scores a JSONL corpus against a model bundle and prints an
// evaluation report.
//
// Labeled articles feed the confusion matrix and the label association
// ranking; unlabeled articles are still classified and counted. With --db
// every verdict is also persisted to a SQLite store; --json swaps the
// human-readable report for machine-readable output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/veracitylab/veracity/internal/article"
	"github.com/veracitylab/veracity/pkg/veracity"
	"github.com/veracitylab/veracity/pkg/veracity/analytics"
	"github.com/veracitylab/veracity/pkg/veracity/model"
	"github.com/veracitylab/veracity/pkg/veracity/store"
	"github.com/veracitylab/veracity/pkg/veracity/store/sqlite"
)

type report struct {
	Model        string                  `json:"model"`
	Version      string                  `json:"version"`
	TotalDocs    int                     `json:"total_docs"`
	LabeledDocs  int                     `json:"labeled_docs"`
	MeanCoverage float64                 `json:"mean_coverage"`
	Evaluation   *analytics.Evaluation   `json:"evaluation,omitempty"`
	Associations []analytics.Association `json:"associations,omitempty"`
}

func main() {
	var (
		modelPath  = flag.String("model", "", "Model bundle JSON file (required)")
		corpusPath = flag.String("corpus", "", "JSONL corpus of articles (required)")
		dbPath     = flag.String("db", "", "SQLite database to persist verdicts (optional)")
		assocTop   = flag.Int("assoc", 15, "Number of label associations to report")
		jsonOut    = flag.Bool("json", false, "Emit the report as JSON")
	)
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("--model required")
	}
	if *corpusPath == "" {
		log.Fatal("--corpus required")
	}

	ctx := context.Background()

	bundle, err := model.LoadFile(*modelPath)
	if err != nil {
		log.Fatal("Failed to load model:", err)
	}

	var st store.Store
	if *dbPath != "" {
		st, err = sqlite.OpenSQLite(ctx, *dbPath)
		if err != nil {
			log.Fatal("Failed to open store:", err)
		}
	}

	detector, err := veracity.New(veracity.Options{
		Bundle: bundle,
		Store:  st,
	})
	if err != nil {
		log.Fatal("Failed to build detector:", err)
	}
	defer detector.Close()

	articles, err := article.LoadFromJSONL(*corpusPath)
	if err != nil {
		log.Fatal("Failed to load corpus:", err)
	}
	log.Printf("Loaded %d articles from %s", len(articles), *corpusPath)

	// Classify the corpus
	var (
		outcomes    []analytics.Outcome
		docs        []analytics.LabeledDoc
		classified  int
		sumCoverage float64
	)

	for i, art := range articles {
		verdict, err := detector.Classify(ctx, veracity.Input{
			Source: art.Source,
			Text:   art.Text,
		})
		if err != nil {
			log.Printf("Failed to classify article %d (%s): %v", i, art.Title, err)
			continue
		}

		classified++
		sumCoverage += verdict.Coverage

		if art.Labeled() {
			outcomes = append(outcomes, analytics.Outcome{
				Predicted: verdict.Label,
				Actual:    *art.Label,
			})
			docs = append(docs, analytics.LabeledDoc{
				Tokens: detector.Normalize(art.Text),
				Label:  *art.Label,
			})
		}

		if (i+1)%100 == 0 {
			log.Printf("Classified %d/%d articles", i+1, len(articles))
		}
	}

	log.Printf("✓ Evaluation complete: %d articles scored, %d labeled", classified, len(outcomes))

	// Assemble the report
	rep := report{
		Model:       bundle.Name,
		Version:     bundle.Version,
		TotalDocs:   len(articles),
		LabeledDocs: len(outcomes),
	}
	if classified > 0 {
		rep.MeanCoverage = sumCoverage / float64(classified)
	}
	if len(outcomes) > 0 {
		eval := analytics.Evaluate(outcomes)
		rep.Evaluation = &eval
	}
	if len(docs) > 0 {
		calc := analytics.NewCalculator(0)
		rep.Associations = calc.Associations(docs, *assocTop)
	}

	if *jsonOut {
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			log.Fatalf("marshal report: %v", err)
		}
		fmt.Println(string(out))
		return
	}
	printReport(rep)
}

func printReport(rep report) {
	fmt.Printf("=== Evaluation: %s %s ===\n", rep.Model, rep.Version)
	fmt.Printf("Articles:      %d (%d labeled)\n", rep.TotalDocs, rep.LabeledDocs)
	fmt.Printf("Mean coverage: %.1f%%\n", rep.MeanCoverage*100)

	if e := rep.Evaluation; e != nil {
		fmt.Println()
		fmt.Printf("Accuracy:  %.4f (%d/%d)\n", e.Accuracy, e.Correct, e.Total)
		fmt.Printf("Precision: %.4f\n", e.Precision)
		fmt.Printf("Recall:    %.4f\n", e.Recall)
		fmt.Printf("F1:        %.4f\n", e.F1)
		fmt.Printf("Confusion: TP=%d FP=%d TN=%d FN=%d\n",
			e.TruePositives, e.FalsePositives, e.TrueNegatives, e.FalseNegatives)
	}

	if len(rep.Associations) > 0 {
		fmt.Println()
		fmt.Println("Terms most associated with fabricated articles:")
		for _, a := range rep.Associations {
			fmt.Printf("  %-16s PMI=%+.4f (%d of %d docs fabricated)\n",
				a.Term, a.PMI, a.WithLabel, a.Count)
		}
	}
}

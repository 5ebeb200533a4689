// veracity-report summarizes a verdict store: overall totals, per-source
// breakdown, and the most recent verdicts. With --prune-days it also
// deletes verdicts older than the given age before reporting.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/veracitylab/veracity/pkg/veracity/analytics"
	"github.com/veracitylab/veracity/pkg/veracity/classify"
	"github.com/veracitylab/veracity/pkg/veracity/store"
	"github.com/veracitylab/veracity/pkg/veracity/store/sqlite"
)

type report struct {
	Stats    store.Stats       `json:"stats"`
	Summary  analytics.Summary `json:"summary"`
	Verdicts []store.Verdict   `json:"verdicts"`
	Pruned   int64             `json:"pruned,omitempty"`
}

func main() {
	var (
		dbPath    = flag.String("db", "", "SQLite database of verdicts (required)")
		source    = flag.String("source", "", "Only report verdicts from this source")
		limit     = flag.Int("limit", store.DefaultListLimit, "Number of recent verdicts to include")
		pruneDays = flag.Int("prune-days", 0, "Delete verdicts older than this many days before reporting")
		asJSON    = flag.Bool("json", false, "Emit the report as JSON")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()

	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer st.Close()

	var pruned int64
	if *pruneDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -*pruneDays)
		pruned, err = st.PruneBefore(ctx, cutoff)
		if err != nil {
			log.Fatal("Failed to prune verdicts:", err)
		}
		log.Printf("Pruned %d verdicts older than %d days", pruned, *pruneDays)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		log.Fatal("Failed to read stats:", err)
	}

	verdicts, err := st.ListVerdicts(ctx, store.ListOptions{
		Source: *source,
		Limit:  *limit,
	})
	if err != nil {
		log.Fatal("Failed to list verdicts:", err)
	}

	summary := analytics.Summarize(verdicts)

	if *asJSON {
		out, err := json.MarshalIndent(report{
			Stats:    stats,
			Summary:  summary,
			Verdicts: verdicts,
			Pruned:   pruned,
		}, "", "  ")
		if err != nil {
			log.Fatalf("marshal report: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	printReport(stats, summary, verdicts)
}

func printReport(stats store.Stats, summary analytics.Summary, verdicts []store.Verdict) {
	fmt.Println("=== Verdict store report ===")
	fmt.Println()
	fmt.Println("Totals:")
	fmt.Printf("  Verdicts:        %d\n", stats.Total)
	fmt.Printf("  Fabricated:      %d\n", stats.Fabricated)
	fmt.Printf("  Genuine:         %d\n", stats.Genuine)
	fmt.Printf("  Mean confidence: %.4f\n", stats.MeanConfidence)

	if len(summary.BySource) > 0 {
		sources := make([]string, 0, len(summary.BySource))
		for src := range summary.BySource {
			sources = append(sources, src)
		}
		sort.Strings(sources)

		fmt.Println("\nBy source:")
		for _, src := range sources {
			counts := summary.BySource[src]
			fmt.Printf("  %-24s %4d verdicts, %d fabricated\n", src, counts.Total, counts.Fabricated)
		}
	}

	if len(verdicts) == 0 {
		fmt.Println("\nNo verdicts recorded.")
		return
	}

	fmt.Println("\nProbability distribution:")
	for i, n := range summary.Histogram {
		if n == 0 {
			continue
		}
		fmt.Printf("  %.1f-%.1f  %d\n", float64(i)/10, float64(i+1)/10, n)
	}

	fmt.Printf("\nRecent verdicts (%d):\n", len(verdicts))
	for _, v := range verdicts {
		label := "genuine"
		if v.Label == classify.LabelFabricated {
			label = "FABRICATED"
		}
		title := v.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("  %s  %s  %-10s  p=%.3f  %s\n",
			v.ID, v.CreatedAt.Format("2006-01-02 15:04"), label, v.Probability, title)
	}
}

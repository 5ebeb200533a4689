package store

import (
	"context"
	"time"

	"github.com/veracitylab/veracity/pkg/veracity/classify"
)

// DefaultListLimit caps ListVerdicts when the caller does not set one
const DefaultListLimit = 100

// Store is the interface for persisting and querying verdicts
type Store interface {
	Close() error

	// Verdicts
	PutVerdict(ctx context.Context, v Verdict) error
	GetVerdict(ctx context.Context, id string) (Verdict, error)
	ListVerdicts(ctx context.Context, opts ListOptions) ([]Verdict, error)

	// Aggregates & maintenance
	Stats(ctx context.Context) (Stats, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Verdict is one stored classification outcome
type Verdict struct {
	ID           string                  `json:"id"`
	Source       string                  `json:"source,omitempty"`
	Title        string                  `json:"title,omitempty"`
	Label        int                     `json:"label"`
	Probability  float64                 `json:"probability"`
	Confidence   float64                 `json:"confidence"`
	Score        float64                 `json:"score"`
	TokenCount   int                     `json:"token_count"`
	Coverage     float64                 `json:"vocabulary_coverage"`
	TopTerms     []classify.Contribution `json:"top_terms,omitempty"`
	ModelName    string                  `json:"model_name,omitempty"`
	ModelVersion string                  `json:"model_version,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

// ListOptions narrows a verdict listing. The zero value lists the newest
// DefaultListLimit verdicts across all sources.
type ListOptions struct {
	Source string // exact source match, empty for all
	Limit  int    // maximum rows, DefaultListLimit when <= 0
}

// Stats summarizes the stored verdicts
type Stats struct {
	Total          int64   `json:"total"`
	Fabricated     int64   `json:"fabricated"`
	Genuine        int64   `json:"genuine"`
	MeanConfidence float64 `json:"mean_confidence"`
}

package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/veracitylab/veracity/pkg/veracity/classify"
	"github.com/veracitylab/veracity/pkg/veracity/internalerr"
	"github.com/veracitylab/veracity/pkg/veracity/store"
)

// Store is an in-memory implementation of store.Store for tests and
// ephemeral deployments.
type Store struct {
	mu       sync.RWMutex
	verdicts map[string]store.Verdict
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		verdicts: make(map[string]store.Verdict),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// PutVerdict inserts or updates a verdict, keyed by ID.
func (s *Store) PutVerdict(ctx context.Context, v store.Verdict) error {
	if v.ID == "" {
		return fmt.Errorf("%w: verdict has no id", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.verdicts[v.ID] = copyVerdict(v)
	return nil
}

// GetVerdict returns a verdict by ID.
func (s *Store) GetVerdict(ctx context.Context, id string) (store.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.verdicts[id]; ok {
		return copyVerdict(v), nil
	}
	return store.Verdict{}, fmt.Errorf("verdict %s: %w", id, internalerr.ErrNotFound)
}

// ListVerdicts returns verdicts newest first, optionally filtered by source.
func (s *Store) ListVerdicts(ctx context.Context, opts store.ListOptions) ([]store.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	var results []store.Verdict
	for _, v := range s.verdicts {
		if opts.Source != "" && v.Source != opts.Source {
			continue
		}
		results = append(results, copyVerdict(v))
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		// ULIDs sort by creation time, so the ID breaks the tie.
		return results[i].ID > results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Stats summarizes the stored verdicts.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st store.Stats
	var confidenceSum float64
	for _, v := range s.verdicts {
		st.Total++
		if v.Label == classify.LabelFabricated {
			st.Fabricated++
		}
		confidenceSum += v.Confidence
	}
	st.Genuine = st.Total - st.Fabricated
	if st.Total > 0 {
		st.MeanConfidence = confidenceSum / float64(st.Total)
	}
	return st, nil
}

// PruneBefore deletes verdicts created before cutoff.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned int64
	for id, v := range s.verdicts {
		if v.CreatedAt.Before(cutoff) {
			delete(s.verdicts, id)
			pruned++
		}
	}
	return pruned, nil
}

func copyVerdict(v store.Verdict) store.Verdict {
	out := v
	if v.TopTerms != nil {
		out.TopTerms = make([]classify.Contribution, len(v.TopTerms))
		copy(out.TopTerms, v.TopTerms)
	}
	return out
}

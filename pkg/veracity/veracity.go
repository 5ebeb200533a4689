package veracity

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/veracitylab/veracity/pkg/veracity/analytics"
	"github.com/veracitylab/veracity/pkg/veracity/classify"
	"github.com/veracitylab/veracity/pkg/veracity/extract"
	"github.com/veracitylab/veracity/pkg/veracity/internalerr"
	"github.com/veracitylab/veracity/pkg/veracity/model"
	"github.com/veracitylab/veracity/pkg/veracity/stopwords"
	"github.com/veracitylab/veracity/pkg/veracity/store"
	"github.com/veracitylab/veracity/pkg/veracity/tokenize"
	"github.com/veracitylab/veracity/pkg/veracity/vectorize"
)

// DefaultTopTerms is how many contributing terms a verdict carries when the
// caller does not choose
const DefaultTopTerms = 5

// Detector is the main fake-news detection facade. It normalizes text the
// same way the model was trained, vectorizes it against the bundle
// vocabulary, and scores it with the bundle's logistic regression. A
// Detector is safe for concurrent use.
type Detector struct {
	bundle     *model.Bundle
	normalizer *tokenize.Normalizer
	vectorizer *vectorize.Vectorizer
	classifier *classify.Classifier
	store      store.Store
	topTerms   int

	// MonotonicEntropy is not safe for concurrent use on its own.
	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a Detector instance
type Options struct {
	// Bundle holds the trained model parameters. Required.
	Bundle *model.Bundle
	// Stopwords replaces the built-in English list when non-nil.
	Stopwords []string
	// Store, when set, persists every verdict the detector produces.
	Store store.Store
	// TopTerms is how many contributing terms each verdict keeps.
	// Zero means DefaultTopTerms; negative disables them.
	TopTerms int
}

// New creates a Detector with the given dependencies. The bundle is
// validated here so a broken model surfaces at startup, not mid-request.
func New(opts Options) (*Detector, error) {
	if opts.Bundle == nil {
		return nil, fmt.Errorf("%w: no bundle", internalerr.ErrInvalidBundle)
	}
	if err := opts.Bundle.Validate(); err != nil {
		return nil, err
	}

	stops := stopwords.Default()
	if opts.Stopwords != nil {
		stops = stopwords.NewSet(opts.Stopwords)
	}

	topTerms := opts.TopTerms
	if topTerms == 0 {
		topTerms = DefaultTopTerms
	}
	if topTerms < 0 {
		topTerms = 0
	}

	return &Detector{
		bundle:     opts.Bundle,
		normalizer: tokenize.NewNormalizer(stops),
		vectorizer: vectorize.New(opts.Bundle),
		classifier: classify.New(opts.Bundle),
		store:      opts.Store,
		topTerms:   topTerms,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Input is one document to classify
type Input struct {
	// Source identifies where the document came from (site, feed, outlet).
	Source string
	// Text is the document body as plain text.
	Text string
	// HTML, when set, is parsed and its article text classified instead
	// of Text. Nothing is fetched; the caller supplies the markup.
	HTML string
}

// Verdict is a classification outcome, persisted as-is when a store is
// attached
type Verdict = store.Verdict

// Classify runs the full pipeline on one document and returns its verdict.
// When persistence fails the verdict is still returned alongside the error,
// since the classification itself succeeded.
func (d *Detector) Classify(ctx context.Context, in Input) (Verdict, error) {
	text := in.Text
	var title string
	if in.HTML != "" {
		text = extract.Text(in.HTML)
		title = extract.Title(in.HTML)
	}

	tokens := d.normalizer.Tokens(text)
	features := d.vectorizer.Vector(tokens)
	pred, err := d.classifier.Predict(features)
	if err != nil {
		return Verdict{}, err
	}

	v := Verdict{
		ID:           d.newID(),
		Source:       in.Source,
		Title:        title,
		Label:        pred.Label,
		Probability:  pred.Probability,
		Confidence:   pred.Confidence,
		Score:        pred.Score,
		TokenCount:   len(tokens),
		Coverage:     analytics.Coverage(tokens, d.bundle),
		TopTerms:     d.classifier.Contributions(features, d.topTerms),
		ModelName:    d.bundle.Name,
		ModelVersion: d.bundle.Version,
		CreatedAt:    time.Now().UTC(),
	}

	if d.store != nil {
		if err := d.store.PutVerdict(ctx, v); err != nil {
			return v, fmt.Errorf("persist verdict: %w", err)
		}
	}
	return v, nil
}

// ClassifyText classifies a plain-text document
func (d *Detector) ClassifyText(ctx context.Context, text string) (Verdict, error) {
	return d.Classify(ctx, Input{Text: text})
}

// Normalize returns the token stream the model would see for text
func (d *Detector) Normalize(text string) []string {
	return d.normalizer.Tokens(text)
}

// Vectorize returns the feature vector for text, aligned with the bundle
// vocabulary
func (d *Detector) Vectorize(text string) []float64 {
	return d.vectorizer.Vector(d.normalizer.Tokens(text))
}

// Predict scores an already-built feature vector
func (d *Detector) Predict(features []float64) (classify.Prediction, error) {
	return d.classifier.Predict(features)
}

// Bundle returns the model parameters in use
func (d *Detector) Bundle() *model.Bundle {
	return d.bundle
}

// Store returns the attached verdict store, or nil when the detector does
// not persist
func (d *Detector) Store() store.Store {
	return d.store
}

// Close releases the attached store, if any
func (d *Detector) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

func (d *Detector) newID() string {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	return ulid.MustNew(ulid.Now(), d.entropy).String()
}

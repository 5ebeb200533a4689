package tokenize

import (
	"strings"

	"github.com/veracitylab/veracity/pkg/veracity/stem"
	"github.com/veracitylab/veracity/pkg/veracity/stopwords"
)

// Normalizer turns raw text into the stemmed token stream the vectorizer
// consumes. Immutable after construction and safe for concurrent use.
type Normalizer struct {
	stops   stopwords.Set
	stemmer *stem.Stemmer
}

// NewNormalizer creates a Normalizer with the given stopword set. A nil set
// means the default English list.
func NewNormalizer(stops stopwords.Set) *Normalizer {
	if stops == nil {
		stops = stopwords.Default()
	}
	return &Normalizer{stops: stops, stemmer: stem.New()}
}

// SetStemmer replaces the stemmer, e.g. with a tracing one. Call before the
// Normalizer is shared across goroutines.
func (n *Normalizer) SetStemmer(s *stem.Stemmer) {
	n.stemmer = s
}

// Tokens splits text into lowercase letter runs, drops stopwords, and stems
// each survivor. Order and multiplicity are preserved; term frequencies
// downstream depend on both. The result is never nil.
func (n *Normalizer) Tokens(text string) []string {
	tokens := []string{}
	var current strings.Builder

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z':
			current.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			current.WriteByte(c - 'A' + 'a')
		default:
			// every byte outside A-Z/a-z separates: digits, punctuation,
			// and each byte of a multi-byte rune
			if current.Len() > 0 {
				if word := n.processToken(current.String()); word != "" {
					tokens = append(tokens, word)
				}
				current.Reset()
			}
		}
	}

	// Don't forget the last token
	if current.Len() > 0 {
		if word := n.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
	}

	return tokens
}

// processToken filters stopwords and stems the survivor; "" means dropped
func (n *Normalizer) processToken(word string) string {
	if n.stops.Contains(word) {
		return ""
	}
	return n.stemmer.Stem(word)
}

package stem

import "strings"

// TraceFunc observes a single stemming step: the step label, the word as it
// entered the step, and the word as it left. Steps that change nothing still
// report.
type TraceFunc func(step, before, after string)

// Stemmer reduces an English word to its stem using the fixed irregular-form
// table plus eight ordered suffix-rewrite steps. Immutable after construction
// and safe for concurrent use.
type Stemmer struct {
	pool  map[string]string
	trace TraceFunc
}

// New creates a Stemmer with the default irregular-form table
func New() *Stemmer {
	return &Stemmer{pool: irregularPool()}
}

// NewTracing creates a Stemmer that reports every step to fn
func NewTracing(fn TraceFunc) *Stemmer {
	s := New()
	s.trace = fn
	return s
}

// Stem returns the stem of word. The word is lowercased first; words of one
// or two characters are returned as-is. Irregular forms bypass the rule steps
// entirely.
func (s *Stemmer) Stem(word string) string {
	w := strings.ToLower(word)

	if stem, ok := s.pool[w]; ok {
		if s.trace != nil {
			s.trace("irregular", w, stem)
		}
		return stem
	}
	if len(w) <= 2 {
		return w
	}

	w = s.apply("1a", step1a, w)
	w = s.apply("1b", step1b, w)
	w = s.apply("1c", step1c, w)
	w = s.apply("2", step2, w)
	w = s.apply("3", step3, w)
	w = s.apply("4", step4, w)
	w = s.apply("5a", step5a, w)
	w = s.apply("5b", step5b, w)
	return w
}

func (s *Stemmer) apply(name string, step func(string) string, word string) string {
	out := step(word)
	if s.trace != nil {
		s.trace(name, word, out)
	}
	return out
}

// isConsonant reports whether word[i] is a consonant. 'y' counts as a
// consonant at position 0 and after a vowel; after a consonant it acts as a
// vowel ("syzygy").
func isConsonant(word string, i int) bool {
	switch word[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(word, i-1)
	}
	return true
}

// measure returns Porter's m: the number of vowel-to-consonant transitions
// in the word's cv encoding
func measure(word string) int {
	m := 0
	for i := 1; i < len(word); i++ {
		if !isConsonant(word, i-1) && isConsonant(word, i) {
			m++
		}
	}
	return m
}

func positiveMeasure(stem string) bool { return measure(stem) > 0 }

func containsVowel(word string) bool {
	for i := 0; i < len(word); i++ {
		if !isConsonant(word, i) {
			return true
		}
	}
	return false
}

// endsDoubleConsonant reports the *d condition: the last two characters are
// equal and the final position classifies as a consonant.
func endsDoubleConsonant(word string) bool {
	n := len(word)
	return n >= 2 && word[n-1] == word[n-2] && isConsonant(word, n-1)
}

// endsCVC reports the *o condition: consonant-vowel-consonant with the final
// consonant not w/x/y. A two-letter vowel-consonant word also qualifies, so
// "using" restores its e ("us" -> "use").
func endsCVC(word string) bool {
	n := len(word)
	if n >= 3 && isConsonant(word, n-3) && !isConsonant(word, n-2) && isConsonant(word, n-1) {
		c := word[n-1]
		return c != 'w' && c != 'x' && c != 'y'
	}
	return n == 2 && !isConsonant(word, 0) && isConsonant(word, 1)
}

// suffixRule maps a suffix to its replacement. Rules within a step are
// ordered: the first suffix that matches claims the word, and if the step's
// condition then fails the word leaves the step unchanged. No fallthrough.
type suffixRule struct {
	suffix string
	repl   string
}

// applyFirst applies the first matching rule, gated on cond over the stem.
// The second return reports whether any suffix matched at all.
func applyFirst(word string, rules []suffixRule, cond func(string) bool) (string, bool) {
	for _, r := range rules {
		if !strings.HasSuffix(word, r.suffix) {
			continue
		}
		stem := word[:len(word)-len(r.suffix)]
		if cond == nil || cond(stem) {
			return stem + r.repl, true
		}
		return word, true
	}
	return word, false
}

var step1aRules = []suffixRule{
	{"sses", "ss"},
	{"ies", "i"},
	{"ss", "ss"},
	{"s", ""},
}

func step1a(word string) string {
	// four-letter -ies words keep their e: "dies" -> "die" but
	// "flies" -> "fli"
	if strings.HasSuffix(word, "ies") && len(word) == 4 {
		return word[:len(word)-3] + "ie"
	}
	out, _ := applyFirst(word, step1aRules, nil)
	return out
}

func step1b(word string) string {
	// -ied parallels the -ies special case: "died" -> "die", "spied" -> "spi"
	if strings.HasSuffix(word, "ied") {
		if len(word) == 4 {
			return word[:len(word)-3] + "ie"
		}
		return word[:len(word)-3] + "i"
	}

	if strings.HasSuffix(word, "eed") {
		stem := word[:len(word)-3]
		if measure(stem) > 0 {
			return stem + "ee"
		}
		return word
	}

	stem := word
	stripped := false
	if strings.HasSuffix(word, "ed") {
		if rest := word[:len(word)-2]; containsVowel(rest) {
			stem, stripped = rest, true
		}
	} else if strings.HasSuffix(word, "ing") {
		if rest := word[:len(word)-3]; containsVowel(rest) {
			stem, stripped = rest, true
		}
	}
	if !stripped {
		return word
	}

	switch {
	case strings.HasSuffix(stem, "at"), strings.HasSuffix(stem, "bl"), strings.HasSuffix(stem, "iz"):
		return stem + "e"
	case endsDoubleConsonant(stem):
		// collapse doubled consonants except l/s/z; a match here ends the
		// step either way
		if c := stem[len(stem)-1]; c == 'l' || c == 's' || c == 'z' {
			return stem
		}
		return stem[:len(stem)-1]
	case measure(stem) == 1 && endsCVC(stem):
		return stem + "e"
	}
	return stem
}

func step1c(word string) string {
	// y -> i only after a consonant and only when more than one character
	// precedes it: "happy" -> "happi" but "enjoy" and "by" are untouched
	if strings.HasSuffix(word, "y") {
		stem := word[:len(word)-1]
		if len(stem) > 1 && isConsonant(stem, len(stem)-1) {
			return stem + "i"
		}
	}
	return word
}

var step2Rules = []suffixRule{
	{"ational", "ate"},
	{"tional", "tion"},
	{"enci", "ence"},
	{"anci", "ance"},
	{"izer", "ize"},
	{"bli", "ble"},
	{"alli", "al"},
	{"entli", "ent"},
	{"eli", "e"},
	{"ousli", "ous"},
	{"ization", "ize"},
	{"ation", "ate"},
	{"ator", "ate"},
	{"alism", "al"},
	{"iveness", "ive"},
	{"fulness", "ful"},
	{"ousness", "ous"},
	{"aliti", "al"},
	{"iviti", "ive"},
	{"biliti", "ble"},
	{"fulli", "ful"},
}

func step2(word string) string {
	// alli -> al runs ahead of the table and feeds back through the step,
	// so "formalli" resolves via "formal" like the longer -alli forms
	if strings.HasSuffix(word, "alli") && measure(word[:len(word)-4]) > 0 {
		return step2(word[:len(word)-4] + "al")
	}
	if out, matched := applyFirst(word, step2Rules, positiveMeasure); matched {
		return out
	}
	// the l of -logi stays with the stem, so short stems like "geo" work
	// like "archaeo"; the condition reads the word minus three characters
	if strings.HasSuffix(word, "logi") && measure(word[:len(word)-3]) > 0 {
		return word[:len(word)-1]
	}
	return word
}

var step3Rules = []suffixRule{
	{"icate", "ic"},
	{"ative", ""},
	{"alize", "al"},
	{"iciti", "ic"},
	{"ical", "ic"},
	{"ful", ""},
	{"ness", ""},
}

func step3(word string) string {
	out, _ := applyFirst(word, step3Rules, positiveMeasure)
	return out
}

var step4Suffixes = []string{
	"al", "ance", "ence", "er", "ic", "able", "ible", "ant",
	"ement", "ment", "ent", "ion", "ou", "ism", "ate", "iti",
	"ous", "ive", "ize",
}

func step4(word string) string {
	for _, suf := range step4Suffixes {
		if !strings.HasSuffix(word, suf) {
			continue
		}
		stem := word[:len(word)-len(suf)]
		if measure(stem) > 1 {
			// ion only strips after s or t ("adoption", "decision")
			if suf != "ion" || strings.HasSuffix(stem, "s") || strings.HasSuffix(stem, "t") {
				return stem
			}
		}
		return word
	}
	return word
}

func step5a(word string) string {
	if strings.HasSuffix(word, "e") {
		stem := word[:len(word)-1]
		if measure(stem) > 1 {
			return stem
		}
		if measure(stem) == 1 && !endsCVC(stem) {
			return stem
		}
	}
	return word
}

func step5b(word string) string {
	// the condition measures the word minus a single l, not the bare stem
	if strings.HasSuffix(word, "ll") && measure(word[:len(word)-1]) > 1 {
		return word[:len(word)-1]
	}
	return word
}

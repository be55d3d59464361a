// Package textproc turns raw text into normalized index tokens.
//
// The pipeline is deterministic: identical input always yields the identical
// token sequence. Stages run in order: lowercase, ASCII punctuation removal,
// whitespace split, stopword and short-token filtering, then optional
// single-pass suffix stripping.
package textproc

import (
	"strings"
)

// asciiPunctuation is the set of characters removed before tokenization.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// minTokenLength is the shortest token kept (exclusive lower bound is 1).
const minTokenLength = 2

// stopwords is the built-in stopword set.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "from": {},
	"of": {}, "that": {}, "this": {}, "it": {}, "as": {}, "be": {},
	"not": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "shall": {}, "should": {},
	"can": {}, "could": {}, "may": {}, "might": {}, "must": {},
}

// Processor normalizes text into tokens.
type Processor struct {
	stemming bool
}

// New creates a Processor. When stemming is enabled, each token is suffix
// stripped once after filtering.
func New(stemming bool) *Processor {
	return &Processor{stemming: stemming}
}

// Process converts text into an ordered slice of normalized tokens.
func (p *Processor) Process(text string) []string {
	if text == "" {
		return nil
	}

	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if !strings.ContainsRune(asciiPunctuation, r) {
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())

	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) < minTokenLength {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if p.stemming {
			tok = Stem(tok)
		}
		tokens = append(tokens, tok)
	}

	if len(tokens) == 0 {
		return nil
	}

	return tokens
}

// Stem applies simple suffix stripping. At most one rule fires per word:
// "ing" is stripped first, then "ed", then a trailing "s" unless the word
// ends in "ss".
func Stem(word string) string {
	switch {
	case strings.HasSuffix(word, "ing"):
		return word[:len(word)-3]
	case strings.HasSuffix(word, "ed"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	default:
		return word
	}
}

// Package coherence implements a two-stage text-acceptance filter that
// estimates whether a text fragment is linguistically coherent enough to be
// worth scoring for novelty.
//
// # Methods
//
// The classifier applies two checks in fixed order:
//  1. Dictionary word ratio (primary, fast) — fraction of word-like tokens
//     found in a reference word list.
//  2. N-gram ratio (fallback for technical text) — fraction of two-character
//     windows matching a fixed table of common English bigrams. Only
//     computed when the dictionary check fails.
//
// Inputs shorter than the minimum check length bypass scoring entirely and
// are assumed coherent: the statistical methods are unreliable on short
// input, and rejecting "ok" or "yes" would be a false positive.
//
// The classifier performs no I/O and never returns an error during scoring.
// A missing word list degrades to an empty index, not a failure.
package coherence

import (
	"regexp"
	"strings"
)

// Default tuning values.
const (
	// DefaultThreshold is the minimum ratio (dictionary or n-gram) required
	// to classify text as coherent.
	DefaultThreshold = 0.3

	// DefaultNgramThreshold is the minimum n-gram ratio at which the
	// fallback is reported as the scoring method.
	DefaultNgramThreshold = 0.25

	// DefaultMinLength is the trimmed length below which input bypasses
	// scoring and is assumed coherent.
	DefaultMinLength = 10
)

// Method values reported by Score.
const (
	// MethodShortTextBypass indicates the input was below the minimum
	// check length and was assumed coherent.
	MethodShortTextBypass = "short_text_bypass"

	// MethodDictionary indicates the dictionary ratio passed.
	MethodDictionary = "dictionary"

	// MethodNgram indicates the n-gram fallback passed.
	MethodNgram = "ngram"

	// MethodDictionaryFailed indicates neither check passed; the reported
	// score is the (failing) dictionary ratio.
	MethodDictionaryFailed = "dictionary_failed"
)

// tokenPattern matches maximal runs of ASCII letters of length >= 3.
var tokenPattern = regexp.MustCompile(`[a-z]{3,}`)

// Result is the outcome of one classification call, in the shape consumed
// by the novelty pipeline.
type Result struct {
	// Passed reports whether the text cleared the coherence gate.
	Passed bool `json:"coherence_passed"`

	// Score is the estimated coherence in [0, 1].
	Score float64 `json:"coherence_score"`

	// Method names the check that produced Score.
	Method string `json:"coherence_method"`
}

// Config tunes a Classifier. Zero-value fields fall back to the defaults.
type Config struct {
	// Threshold is the minimum ratio required to classify text as
	// coherent. Default: 0.3.
	Threshold float64

	// NgramThreshold is the minimum n-gram ratio at which the fallback is
	// reported as the scoring method. Default: 0.25.
	NgramThreshold float64

	// MinLength is the trimmed length below which input bypasses scoring.
	// Default: 10.
	MinLength int
}

// Classifier scores text coherence against an injected, immutable word
// index. All methods are pure functions of the input text and the index;
// a Classifier is safe for concurrent use.
type Classifier struct {
	index          Index
	threshold      float64
	ngramThreshold float64
	minLength      int
}

// NewClassifier builds a classifier over the given index.
func NewClassifier(index Index, cfg Config) *Classifier {
	c := &Classifier{
		index:          index,
		threshold:      cfg.Threshold,
		ngramThreshold: cfg.NgramThreshold,
		minLength:      cfg.MinLength,
	}
	if c.threshold <= 0 {
		c.threshold = DefaultThreshold
	}
	if c.ngramThreshold <= 0 {
		c.ngramThreshold = DefaultNgramThreshold
	}
	if c.minLength <= 0 {
		c.minLength = DefaultMinLength
	}
	return c
}

// Threshold returns the configured acceptance threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Tokenize extracts maximal runs of ASCII letters of length >= 3 from text,
// lowercased. Non-alphabetic runs (punctuation, digits, whitespace) are
// discarded entirely. Empty input yields an empty slice.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// NgramRatio returns the fraction of length-2 character windows over the
// lowercased text that belong to the common-bigram table. The windows are
// formed over the raw string, punctuation and whitespace included; this
// check exists to catch technical or jargon-heavy text that the dictionary
// method rejects. Input shorter than 2 characters returns 0.
func NgramRatio(text string) float64 {
	runes := []rune(strings.ToLower(text))
	if len(runes) < 2 {
		return 0
	}

	total := len(runes) - 1
	common := 0
	for i := 0; i < total; i++ {
		if _, ok := commonBigrams[string(runes[i:i+2])]; ok {
			common++
		}
	}
	return float64(common) / float64(total)
}

// DictionaryRatio returns the fraction of tokens found in the word index.
// Input with no tokens returns 0: non-alphabetic text cannot be judged by
// this method.
func (c *Classifier) DictionaryRatio(text string) float64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	found := 0
	for _, t := range tokens {
		if c.index.Contains(t) {
			found++
		}
	}
	return float64(found) / float64(len(tokens))
}

// Score returns the coherence score and the method that produced it.
// The n-gram fallback is only computed when the dictionary check fails.
func (c *Classifier) Score(text string) (float64, string) {
	if len(strings.TrimSpace(text)) < c.minLength {
		return 1.0, MethodShortTextBypass
	}

	dictRatio := c.DictionaryRatio(text)
	if dictRatio >= c.threshold {
		return dictRatio, MethodDictionary
	}

	ngram := NgramRatio(text)
	if ngram >= c.ngramThreshold {
		return ngram, MethodNgram
	}

	// Neither passed: report the dictionary ratio, even if low.
	return dictRatio, MethodDictionaryFailed
}

// IsCoherent reports whether text clears the coherence gate at the
// configured threshold. Short input always passes.
func (c *Classifier) IsCoherent(text string) bool {
	return c.Check(text).Passed
}

// Check scores text once and returns the full result record.
func (c *Classifier) Check(text string) Result {
	score, method := c.Score(text)
	return Result{
		Passed: method == MethodShortTextBypass || score >= c.threshold,
		Score:  score,
		Method: method,
	}
}

// Package novelty scores how dissimilar a text sample is from previously
// recorded content. Every scoring path runs behind the coherence gate:
// incoherent text is assigned 0.0 novelty before any embedding work happens.
//
// The gate exists because plain similarity-based novelty has an inherent
// flaw: as the reference corpus of coherent text grows, gibberish looks
// increasingly unlike anything seen before and would register as highly
// novel. Gating on coherence closes that hole and skips the costlier
// embedding path at the same time.
package novelty

import (
	"github.com/crucible-ai/cips/internal/coherence"
)

// Priority bands for novelty scores.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ScoreFunc maps text to a novelty score in [0, 1] based on similarity to
// previously seen content. It is an injected capability: the gate never
// calls into a concrete embedding implementation directly.
type ScoreFunc func(text string) (float64, error)

// Result is the outcome of one gated novelty computation.
type Result struct {
	// Novelty is the score in [0, 1]. Incoherent text always scores 0.
	Novelty float64 `json:"novelty_score"`

	// Priority is the banded urgency derived from Novelty.
	Priority string `json:"priority"`

	// Coherence carries the gate's verdict alongside the score, for the
	// learning pipeline's result record.
	Coherence coherence.Result `json:"coherence"`
}

// Gate wraps a novelty function with the coherence precondition.
type Gate struct {
	classifier *coherence.Classifier
}

// NewGate builds a gate over the given classifier.
func NewGate(classifier *coherence.Classifier) *Gate {
	return &Gate{classifier: classifier}
}

// Score runs text through the coherence gate and, only when it passes,
// delegates to fn. The delegate's score is returned verbatim; a failing
// gate returns 0.0 without invoking fn at all.
func (g *Gate) Score(text string, fn ScoreFunc) (Result, error) {
	check := g.classifier.Check(text)
	if !check.Passed {
		return Result{
			Novelty:   0,
			Priority:  PriorityLow,
			Coherence: check,
		}, nil
	}

	score, err := fn(text)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Novelty:   score,
		Priority:  Priority(score),
		Coherence: check,
	}, nil
}

// Priority bands a novelty score: high above 0.5, medium above 0.3,
// otherwise low.
func Priority(score float64) string {
	switch {
	case score > 0.5:
		return PriorityHigh
	case score > 0.3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

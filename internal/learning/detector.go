// Package learning detects learning events in conversation messages and
// drafts skill candidates from them.
//
// A learning event fires when at least two of four signals are present:
// high novelty, a teaching moment (the user correcting the assistant), a
// newly coined term, or a generalisation (a specific solution stated as a
// principle). Detection is pure pattern matching over the message text;
// the novelty score is supplied by the caller, typically from the
// coherence-gated novelty engine.
package learning

import (
	"regexp"
	"strings"
	"time"

	"github.com/crucible-ai/cips/internal/types"
)

// Default detection thresholds.
const (
	// DefaultNoveltyThreshold is the novelty score above which the
	// high-novelty trigger fires.
	DefaultNoveltyThreshold = 0.4

	// DefaultMinTriggers is how many triggers must fire before a message
	// counts as a learning event.
	DefaultMinTriggers = 2
)

// Composite score contributions. Novelty is capped so that a single signal
// can never carry the event on its own.
const (
	noveltyCap           = 0.4
	teachingWeight       = 0.3
	newTermWeight        = 0.2
	generalisationWeight = 0.1
)

// teachingPatterns match correction language from the user.
var teachingPatterns = compilePatterns(
	`you should have`,
	`obvious enhancement`,
	`you missed`,
	`should've`,
	`better approach would be`,
	`correct way is`,
	`anti-pattern`,
	`don't do this`,
	`always use`,
	`never use`,
	`remember to`,
	`lesson learned`,
)

// namingPatterns match the user coining or invoking a named concept.
var namingPatterns = compilePatterns(
	`let's call this`,
	`I'll name this`,
	`this is (?:called|known as)`,
	`the \w+ principle`,
	`the \w+ pattern`,
	`(?:YSH|YAGNI|DRY|KISS|SOLID|GRASP)`,
)

// generalisationPatterns match a specific solution stated as a principle.
var generalisationPatterns = compilePatterns(
	`in general`,
	`as a rule`,
	`this applies to`,
	`universally`,
	`always works`,
	`pattern that`,
	`principle:`,
	`lesson:`,
	`takeaway:`,
	`generalise`,
)

func compilePatterns(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return compiled
}

// Config tunes a Detector. Zero-value fields fall back to defaults.
type Config struct {
	// NoveltyThreshold is the score above which the high-novelty trigger
	// fires. Default: 0.4.
	NoveltyThreshold float64

	// MinTriggers is how many triggers must fire for a learning event.
	// Default: 2.
	MinTriggers int
}

// Detector runs the learning trigger checks. It is stateless and safe for
// concurrent use.
type Detector struct {
	noveltyThreshold float64
	minTriggers      int
}

// NewDetector builds a detector.
func NewDetector(cfg Config) *Detector {
	d := &Detector{
		noveltyThreshold: cfg.NoveltyThreshold,
		minTriggers:      cfg.MinTriggers,
	}
	if d.noveltyThreshold <= 0 {
		d.noveltyThreshold = DefaultNoveltyThreshold
	}
	if d.minTriggers <= 0 {
		d.minTriggers = DefaultMinTriggers
	}
	return d
}

// DetectTeachingMoment reports whether the message is the user correcting
// the assistant, and which pattern matched. The context slice holds prior
// conversation messages, oldest first: an explicit "wrong"/"incorrect"
// following a previous message also counts as a correction.
func DetectTeachingMoment(message string, context []string) (bool, string) {
	for _, p := range teachingPatterns {
		if p.MatchString(message) {
			return true, p.String()
		}
	}

	if len(context) >= 2 {
		lower := strings.ToLower(message)
		prev := strings.TrimSpace(context[len(context)-2])
		if (strings.Contains(lower, "wrong") || strings.Contains(lower, "incorrect")) && prev != "" {
			return true, "correction_detected"
		}
	}

	return false, ""
}

// DetectNewTerm reports whether the user coins or introduces a new term,
// and returns the matched text.
func DetectNewTerm(message string) (bool, string) {
	for _, p := range namingPatterns {
		if m := p.FindString(message); m != "" {
			return true, m
		}
	}
	return false, ""
}

// DetectGeneralisation reports whether a specific solution is stated as a
// general principle, and which pattern matched.
func DetectGeneralisation(message string) (bool, string) {
	for _, p := range generalisationPatterns {
		if p.MatchString(message) {
			return true, p.String()
		}
	}
	return false, ""
}

// CompositeScore combines the signals into a single learning score in
// [0, 1]. Novelty contributes at most 0.4; teaching adds 0.3, a new term
// 0.2, generalisation 0.1.
func CompositeScore(noveltyScore float64, teaching, newTerm, generalisation bool) float64 {
	score := noveltyScore
	if score > noveltyCap {
		score = noveltyCap
	}
	if score < 0 {
		score = 0
	}
	if teaching {
		score += teachingWeight
	}
	if newTerm {
		score += newTermWeight
	}
	if generalisation {
		score += generalisationWeight
	}
	if score > 1 {
		score = 1
	}
	return score
}

// Detect runs all trigger checks against a message and returns the learning
// event record. noveltyScore is supplied by the caller; context holds prior
// conversation messages, oldest first.
func (d *Detector) Detect(message string, noveltyScore float64, context []string) types.LearningEvent {
	teaching, teachingPattern := DetectTeachingMoment(message, context)
	newTerm, term := DetectNewTerm(message)
	generalisation, generalisationPattern := DetectGeneralisation(message)

	triggers := types.Triggers{
		HighNovelty:    noveltyScore > d.noveltyThreshold,
		TeachingMoment: teaching,
		NewTerm:        newTerm,
		Generalisation: generalisation,
	}
	count := triggers.Count()

	return types.LearningEvent{
		IsLearningEvent: count >= d.minTriggers,
		LearningScore:   CompositeScore(noveltyScore, teaching, newTerm, generalisation),
		TriggerCount:    count,
		Triggers:        triggers,
		Details: types.TriggerDetails{
			NoveltyScore:          noveltyScore,
			TeachingPattern:       teachingPattern,
			NewTerm:               term,
			GeneralisationPattern: generalisationPattern,
		},
		Timestamp: time.Now().UTC(),
	}
}

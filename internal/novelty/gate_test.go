package novelty

import (
	"errors"
	"testing"

	"github.com/crucible-ai/cips/internal/coherence"
)

// testClassifier returns a classifier over a small deterministic index.
func testClassifier() *coherence.Classifier {
	index := coherence.NewIndex(
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
		"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
	)
	return coherence.NewClassifier(index, coherence.Config{})
}

func TestGateBlocksIncoherent(t *testing.T) {
	g := NewGate(testClassifier())

	calls := 0
	fn := func(text string) (float64, error) {
		calls++
		return 0.9, nil
	}

	res, err := g.Score("asofsdnow wpifjsipfjs speijf pie", fn)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if calls != 0 {
		t.Errorf("novelty function called %d times for incoherent text, want 0", calls)
	}
	if res.Novelty != 0 {
		t.Errorf("novelty = %f, want 0", res.Novelty)
	}
	if res.Priority != PriorityLow {
		t.Errorf("priority = %q, want %q", res.Priority, PriorityLow)
	}
	if res.Coherence.Passed {
		t.Error("coherence_passed = true for gibberish")
	}
}

func TestGatePassesThroughVerbatim(t *testing.T) {
	g := NewGate(testClassifier())

	calls := 0
	fn := func(text string) (float64, error) {
		calls++
		return 0.42, nil
	}

	res, err := g.Score("the quick brown fox jumps over", fn)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("novelty function called %d times, want 1", calls)
	}
	if res.Novelty != 0.42 {
		t.Errorf("novelty = %f, want 0.42 (delegate return value, unmodified)", res.Novelty)
	}
	if !res.Coherence.Passed {
		t.Error("coherence_passed = false for valid text")
	}
}

func TestGateShortTextInvokesDelegate(t *testing.T) {
	// Short input bypasses coherence scoring and counts as coherent, so the
	// delegate still runs.
	g := NewGate(testClassifier())

	calls := 0
	fn := func(text string) (float64, error) {
		calls++
		return 1.0, nil
	}

	res, err := g.Score("ok", fn)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("delegate called %d times, want 1", calls)
	}
	if res.Coherence.Method != coherence.MethodShortTextBypass {
		t.Errorf("method = %q, want %q", res.Coherence.Method, coherence.MethodShortTextBypass)
	}
}

func TestGatePropagatesDelegateError(t *testing.T) {
	g := NewGate(testClassifier())

	wantErr := errors.New("model unavailable")
	fn := func(text string) (float64, error) {
		return 0, wantErr
	}

	_, err := g.Score("the quick brown fox jumps over", fn)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.0, PriorityHigh},
		{0.51, PriorityHigh},
		{0.5, PriorityMedium},
		{0.31, PriorityMedium},
		{0.3, PriorityLow},
		{0.0, PriorityLow},
	}

	for _, tt := range tests {
		if got := Priority(tt.score); got != tt.want {
			t.Errorf("Priority(%f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

package novelty

import "errors"

// Sentinel errors for engine construction and scoring.
var (
	// ErrNoEmbedder is returned when an Engine is constructed without an
	// embedding capability.
	ErrNoEmbedder = errors.New("embedder is required")
	// ErrNoClassifier is returned when an Engine or Gate is constructed
	// without a coherence classifier.
	ErrNoClassifier = errors.New("coherence classifier is required")
	// ErrEmptyDBPath is returned when an Engine is constructed without a
	// database path.
	ErrEmptyDBPath = errors.New("database path cannot be empty")
	// ErrEmptyVector is returned when the embedder produces a zero-length
	// vector.
	ErrEmptyVector = errors.New("embedder returned an empty vector")
)

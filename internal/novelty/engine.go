package novelty

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/crucible-ai/cips/internal/coherence"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Default engine tuning values.
const (
	// DefaultRecentLimit is how many recent embeddings a novelty
	// computation compares against.
	DefaultRecentLimit = 20

	// maxEmbedChars truncates embedder input; longer text adds latency
	// without improving the similarity signal.
	maxEmbedChars = 2000

	// maxStoredContent truncates the content column; the vector carries
	// the semantics, the text is for inspection only.
	maxStoredContent = 500
)

// Embedder maps text to a dense vector. The model behind it is an external
// collaborator; the engine only depends on this capability.
type Embedder interface {
	Embed(text string) ([]float32, error)
}

// EmbedderFunc adapts a plain function to the Embedder interface.
type EmbedderFunc func(text string) ([]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(text string) ([]float32, error) {
	return f(text)
}

// EngineConfig tunes an Engine. Zero-value fields fall back to defaults.
type EngineConfig struct {
	// DBPath is the SQLite database location. Required.
	DBPath string

	// RecentLimit is how many recent embeddings to compare against.
	// Default: 20.
	RecentLimit int
}

// Engine is a concrete novelty scorer: it keeps a corpus of previously seen
// embeddings in SQLite and scores new text as one minus the maximum cosine
// similarity against the most recent corpus entries. All scoring runs
// behind the coherence gate.
type Engine struct {
	db          *sql.DB
	embedder    Embedder
	classifier  *coherence.Classifier
	recentLimit int
}

// Stats holds aggregate corpus statistics.
type Stats struct {
	TotalEmbeddings int            `json:"total_embeddings"`
	ByType          map[string]int `json:"by_type"`
	CacheSize       int            `json:"cache_size"`
}

// NewEngine opens (or creates) the corpus database and prepares the schema.
func NewEngine(classifier *coherence.Classifier, embedder Embedder, cfg EngineConfig) (*Engine, error) {
	if classifier == nil {
		return nil, ErrNoClassifier
	}
	if embedder == nil {
		return nil, ErrNoEmbedder
	}
	if cfg.DBPath == "" {
		return nil, ErrEmptyDBPath
	}

	db, err := openDB("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	e := &Engine{
		db:          db,
		embedder:    embedder,
		classifier:  classifier,
		recentLimit: cfg.RecentLimit,
	}
	if e.recentLimit <= 0 {
		e.recentLimit = DefaultRecentLimit
	}

	if err := e.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return e, nil
}

// Close releases the database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

func (e *Engine) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS embeddings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hash TEXT UNIQUE,
			vector BLOB,
			type TEXT NOT NULL,
			content TEXT,
			novelty_score REAL DEFAULT 0.5,
			created_at TEXT DEFAULT (datetime('now')),
			updated_at TEXT DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_type ON embeddings(type)`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_hash ON embeddings(hash)`,
		`CREATE TABLE IF NOT EXISTS prompt_cache (
			hash TEXT PRIMARY KEY,
			vector BLOB,
			created_at TEXT DEFAULT (datetime('now'))
		)`,
	}
	for _, stmt := range stmts {
		if _, err := e.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// hashText returns the corpus key for a text sample.
func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:32]
}

// embed returns the vector for text, consulting the prompt cache first.
func (e *Engine) embed(text string) ([]float32, error) {
	hash := hashText(text)

	var blob []byte
	err := e.db.QueryRow(`SELECT vector FROM prompt_cache WHERE hash = ?`, hash).Scan(&blob)
	if err == nil {
		return decodeVector(blob), nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("read prompt cache: %w", err)
	}

	input := text
	if len(input) > maxEmbedChars {
		input = input[:maxEmbedChars]
	}
	vec, err := e.embedder.Embed(input)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(vec) == 0 {
		return nil, ErrEmptyVector
	}

	if _, err := e.db.Exec(
		`INSERT OR REPLACE INTO prompt_cache (hash, vector) VALUES (?, ?)`,
		hash, encodeVector(vec),
	); err != nil {
		return nil, fmt.Errorf("write prompt cache: %w", err)
	}
	return vec, nil
}

// CalculateNovelty scores text against the recent corpus. Incoherent text
// returns 0.0 without touching the embedder; an empty corpus returns 1.0.
func (e *Engine) CalculateNovelty(text string) (Result, error) {
	check := e.classifier.Check(text)
	if !check.Passed {
		return Result{Novelty: 0, Priority: PriorityLow, Coherence: check}, nil
	}

	vec, err := e.embed(text)
	if err != nil {
		return Result{}, err
	}

	rows, err := e.db.Query(
		`SELECT vector FROM embeddings ORDER BY created_at DESC, id DESC LIMIT ?`,
		e.recentLimit,
	)
	if err != nil {
		return Result{}, fmt.Errorf("load recent embeddings: %w", err)
	}
	defer rows.Close()

	maxSim := math.Inf(-1)
	seen := false
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return Result{}, fmt.Errorf("scan embedding: %w", err)
		}
		seen = true
		if sim := cosineSimilarity(vec, decodeVector(blob)); sim > maxSim {
			maxSim = sim
		}
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate embeddings: %w", err)
	}

	if !seen {
		return Result{Novelty: 1.0, Priority: Priority(1.0), Coherence: check}, nil
	}

	score := clamp01(1.0 - maxSim)
	return Result{Novelty: score, Priority: Priority(score), Coherence: check}, nil
}

// Store records text in the corpus. Duplicate content (by hash) refreshes
// the existing row instead of inserting a new one; the existing row ID is
// returned either way.
func (e *Engine) Store(text, embedType string, noveltyScore float64) (int64, error) {
	hash := hashText(text)

	var existing int64
	err := e.db.QueryRow(`SELECT id FROM embeddings WHERE hash = ?`, hash).Scan(&existing)
	if err == nil {
		if _, err := e.db.Exec(
			`UPDATE embeddings SET updated_at = datetime('now') WHERE id = ?`, existing,
		); err != nil {
			return 0, fmt.Errorf("refresh embedding: %w", err)
		}
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("check existing embedding: %w", err)
	}

	vec, err := e.embed(text)
	if err != nil {
		return 0, err
	}

	content := text
	if len(content) > maxStoredContent {
		content = content[:maxStoredContent]
	}

	res, err := e.db.Exec(
		`INSERT INTO embeddings (hash, vector, type, content, novelty_score)
		 VALUES (?, ?, ?, ?, ?)`,
		hash, encodeVector(vec), embedType, content, noveltyScore,
	)
	if err != nil {
		return 0, fmt.Errorf("insert embedding: %w", err)
	}
	return res.LastInsertId()
}

// Stats returns aggregate corpus statistics.
func (e *Engine) Stats() (Stats, error) {
	s := Stats{ByType: make(map[string]int)}

	if err := e.db.QueryRow(`SELECT COUNT(*) FROM embeddings`).Scan(&s.TotalEmbeddings); err != nil {
		return Stats{}, fmt.Errorf("count embeddings: %w", err)
	}

	rows, err := e.db.Query(`SELECT type, COUNT(*) FROM embeddings GROUP BY type`)
	if err != nil {
		return Stats{}, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return Stats{}, fmt.Errorf("scan type count: %w", err)
		}
		s.ByType[typ] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate type counts: %w", err)
	}

	if err := e.db.QueryRow(`SELECT COUNT(*) FROM prompt_cache`).Scan(&s.CacheSize); err != nil {
		return Stats{}, fmt.Errorf("count cache: %w", err)
	}
	return s, nil
}

// Prune removes corpus entries older than the given number of days whose
// recorded novelty fell below minNovelty. Returns the number of rows
// removed.
func (e *Engine) Prune(days int, minNovelty float64) (int64, error) {
	res, err := e.db.Exec(
		`DELETE FROM embeddings
		 WHERE novelty_score < ?
		   AND created_at < datetime('now', ?)`,
		minNovelty, fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("prune embeddings: %w", err)
	}
	return res.RowsAffected()
}

// encodeVector serializes a vector as little-endian float32s.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector is the inverse of encodeVector. Trailing partial values are
// dropped.
func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths compare over the shorter prefix; a zero-norm input
// yields 0.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// clamp01 bounds a score to [0, 1] against floating point drift.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

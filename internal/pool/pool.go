// Package pool manages the skill candidate pool for the learning pipeline.
// Candidates flow through: pending → approved (or rejected)
package pool

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/crucible-ai/cips/internal/types"
)

// validIDPattern matches safe candidate IDs (alphanumeric, hyphens, underscores).
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateCandidateID checks if an ID is safe for use in file paths.
func validateCandidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(id) > 128 {
		return ErrIDTooLong
	}
	if !validIDPattern.MatchString(id) {
		return ErrIDInvalidChars
	}
	return nil
}

const (
	// PoolDir is the base directory for pool storage.
	PoolDir = ".cips/learning"

	// PendingDir holds candidates awaiting human review.
	PendingDir = "pending"

	// ApprovedDir holds approved candidates.
	ApprovedDir = "approved"

	// RejectedDir holds rejected candidates for audit.
	RejectedDir = "rejected"

	// MetricsFile records all pool operations, one JSON event per line.
	MetricsFile = "metrics.jsonl"

	// MaxReasonLength caps rejection reasons.
	MaxReasonLength = 1000
)

// Entry wraps a stored candidate with operational fields computed at read
// time.
type Entry struct {
	types.SkillCandidate

	// FilePath is where this entry is stored.
	FilePath string `json:"file_path,omitempty"`

	// Age is how long since the candidate was drafted.
	Age time.Duration `json:"-"`

	// AgeString is the human-readable age.
	AgeString string `json:"age,omitempty"`
}

// MetricEvent records a pool operation in the metrics log.
type MetricEvent struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Operation is the action taken (add, approve, reject).
	Operation string `json:"operation"`

	// CandidateID is the affected candidate.
	CandidateID string `json:"candidate_id"`

	// Status is the candidate's status after the operation.
	Status types.CandidateStatus `json:"status,omitempty"`

	// LearningScore is the candidate's composite score, recorded on add.
	LearningScore float64 `json:"learning_score,omitempty"`

	// Reason explains why the operation occurred.
	Reason string `json:"reason,omitempty"`
}

// Pool manages skill candidates on disk.
type Pool struct {
	// BaseDir is the working directory.
	BaseDir string

	// PoolPath is the full path to .cips/learning.
	PoolPath string
}

// NewPool creates a pool manager rooted at baseDir.
func NewPool(baseDir string) *Pool {
	return &Pool{
		BaseDir:  baseDir,
		PoolPath: filepath.Join(baseDir, PoolDir),
	}
}

// Init creates the required directory structure.
func (p *Pool) Init() error {
	dirs := []string{
		filepath.Join(p.PoolPath, PendingDir),
		filepath.Join(p.PoolPath, ApprovedDir),
		filepath.Join(p.PoolPath, RejectedDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Add writes a new candidate to the pending pool.
func (p *Pool) Add(candidate types.SkillCandidate) error {
	if err := validateCandidateID(candidate.ID); err != nil {
		return fmt.Errorf("invalid candidate ID: %w", err)
	}

	if err := p.Init(); err != nil {
		return fmt.Errorf("init pool: %w", err)
	}

	if existing, err := p.Get(candidate.ID); err == nil && existing != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateID, candidate.ID)
	}

	candidate.Status = types.StatusPending
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}

	path := filepath.Join(p.PoolPath, PendingDir, candidate.ID+".json")
	if err := p.writeEntry(path, &Entry{SkillCandidate: candidate}); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}

	if err := p.recordEvent(MetricEvent{
		Timestamp:     time.Now().UTC(),
		Operation:     "add",
		CandidateID:   candidate.ID,
		Status:        types.StatusPending,
		LearningScore: candidate.LearningScore,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record event: %v\n", err)
	}

	return nil
}

// Get retrieves a candidate by ID, searching all status directories.
func (p *Pool) Get(candidateID string) (*Entry, error) {
	if err := validateCandidateID(candidateID); err != nil {
		return nil, fmt.Errorf("invalid candidate ID: %w", err)
	}

	dirs := []string{
		filepath.Join(p.PoolPath, PendingDir),
		filepath.Join(p.PoolPath, ApprovedDir),
		filepath.Join(p.PoolPath, RejectedDir),
	}

	filename := candidateID + ".json"
	for _, dir := range dirs {
		path := filepath.Join(dir, filename)
		entry, err := p.readEntry(path)
		if err != nil {
			continue
		}
		entry.FilePath = path
		entry.Age = time.Since(entry.CreatedAt)
		entry.AgeString = formatDuration(entry.Age)
		return entry, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, candidateID)
}

// List returns candidates with the given status, or all candidates when
// status is empty, newest first.
func (p *Pool) List(status types.CandidateStatus) ([]Entry, error) {
	dirs := map[types.CandidateStatus]string{
		types.StatusPending:  filepath.Join(p.PoolPath, PendingDir),
		types.StatusApproved: filepath.Join(p.PoolPath, ApprovedDir),
		types.StatusRejected: filepath.Join(p.PoolPath, RejectedDir),
	}

	var entries []Entry
	for s, dir := range dirs {
		if status != "" && status != s {
			continue
		}
		dirEntries, err := p.scanDirectory(dir, s)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		entries = append(entries, dirEntries...)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}

// ListPending returns candidates awaiting review, newest first.
func (p *Pool) ListPending() ([]Entry, error) {
	return p.List(types.StatusPending)
}

// Approve moves a pending candidate to the approved directory.
func (p *Pool) Approve(candidateID string) error {
	entry, err := p.Get(candidateID)
	if err != nil {
		return err
	}
	if entry.Status != types.StatusPending {
		return fmt.Errorf("%w (current: %s)", ErrNotPending, entry.Status)
	}

	entry.Status = types.StatusApproved
	entry.ApprovedAt = time.Now().UTC()

	newPath := filepath.Join(p.PoolPath, ApprovedDir, filepath.Base(entry.FilePath))
	if err := p.moveEntry(entry, newPath); err != nil {
		return fmt.Errorf("move to approved: %w", err)
	}

	if err := p.recordEvent(MetricEvent{
		Timestamp:   time.Now().UTC(),
		Operation:   "approve",
		CandidateID: candidateID,
		Status:      types.StatusApproved,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record event: %v\n", err)
	}

	return nil
}

// Reject moves a pending candidate to the rejected directory, recording the
// reason.
func (p *Pool) Reject(candidateID, reason string) error {
	if len(reason) > MaxReasonLength {
		return ErrReasonTooLong
	}

	entry, err := p.Get(candidateID)
	if err != nil {
		return err
	}
	if entry.Status != types.StatusPending {
		return fmt.Errorf("%w (current: %s)", ErrNotPending, entry.Status)
	}

	entry.Status = types.StatusRejected
	entry.RejectedAt = time.Now().UTC()
	entry.RejectionReason = reason

	newPath := filepath.Join(p.PoolPath, RejectedDir, filepath.Base(entry.FilePath))
	if err := p.moveEntry(entry, newPath); err != nil {
		return fmt.Errorf("move to rejected: %w", err)
	}

	if err := p.recordEvent(MetricEvent{
		Timestamp:   time.Now().UTC(),
		Operation:   "reject",
		CandidateID: candidateID,
		Status:      types.StatusRejected,
		Reason:      reason,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record event: %v\n", err)
	}

	return nil
}

// Metrics returns all recorded pool events, oldest first.
func (p *Pool) Metrics() (events []MetricEvent, err error) {
	metricsPath := filepath.Join(p.PoolPath, MetricsFile)

	f, err := os.Open(metricsPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event MetricEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		events = append(events, event)
	}

	return events, scanner.Err()
}

// scanDirectory reads all entries from a pool directory.
func (p *Pool) scanDirectory(dir string, status types.CandidateStatus) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, file.Name())
		entry, err := p.readEntry(path)
		if err != nil {
			continue // Skip malformed entries
		}

		entry.FilePath = path
		entry.Status = status
		entry.Age = time.Since(entry.CreatedAt)
		entry.AgeString = formatDuration(entry.Age)

		entries = append(entries, *entry)
	}

	return entries, nil
}

// readEntry loads a single pool entry from file.
func (p *Pool) readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// writeEntry writes a pool entry to a JSON file.
func (p *Pool) writeEntry(path string, entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// moveEntry writes the updated entry to its new status directory and removes
// the old file. The new file is written via temp-and-rename so a crash never
// leaves a partial entry.
func (p *Pool) moveEntry(entry *Entry, newPath string) error {
	oldPath := entry.FilePath
	entry.FilePath = ""

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	randBytes := make([]byte, 4)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generate random suffix: %w", err)
	}
	tempPath := newPath + ".tmp." + hex.EncodeToString(randBytes)

	if err := writeTempFile(tempPath, data); err != nil {
		return err
	}

	if err := os.Rename(tempPath, newPath); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // cleanup in error path
		return fmt.Errorf("rename to destination: %w", err)
	}

	if err := os.Remove(oldPath); err != nil {
		// Non-fatal: the move succeeded, just cleanup failed
		fmt.Fprintf(os.Stderr, "Warning: failed to remove source file %s: %v\n", oldPath, err)
	}

	entry.FilePath = newPath
	return nil
}

// recordEvent appends an event to the metrics file.
func (p *Pool) recordEvent(event MetricEvent) (err error) {
	metricsPath := filepath.Join(p.PoolPath, MetricsFile)

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(metricsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = f.Write(append(data, '\n'))
	return err
}

// formatDuration formats a duration as human-readable.
func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// writeTempFile creates a temp file, writes data, syncs to disk, and closes.
// On any error before Close it cleans up the temp file before returning.
func writeTempFile(tempPath string, data []byte) error {
	tempFile, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()    //nolint:errcheck // cleanup in error path
		_ = os.Remove(tempPath) //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()    //nolint:errcheck // cleanup in error path
		_ = os.Remove(tempPath) //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // cleanup in error path
		return fmt.Errorf("close temp file: %w", err)
	}

	return nil
}

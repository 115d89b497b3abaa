package pool

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crucible-ai/cips/internal/types"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	return NewPool(t.TempDir())
}

func testCandidate(id string, createdAt time.Time) types.SkillCandidate {
	return types.SkillCandidate{
		ID:            id,
		SkillName:     "use-prepared-statements",
		Description:   "always use prepared statements",
		FullContent:   "always use prepared statements when touching the database",
		LearningScore: 0.5,
		Triggers:      types.Triggers{TeachingMoment: true, Generalisation: true},
		Status:        types.StatusPending,
		CreatedAt:     createdAt,
		Source:        types.CandidateSource{Type: "dialectical_learning"},
	}
}

func TestNewPool(t *testing.T) {
	p := NewPool("/tmp/test")
	if p.BaseDir != "/tmp/test" {
		t.Errorf("expected BaseDir /tmp/test, got %s", p.BaseDir)
	}
	if p.PoolPath != "/tmp/test/.cips/learning" {
		t.Errorf("expected PoolPath /tmp/test/.cips/learning, got %s", p.PoolPath)
	}
}

func TestPoolInit(t *testing.T) {
	p := newTestPool(t)

	if err := p.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	dirs := []string{
		filepath.Join(p.PoolPath, PendingDir),
		filepath.Join(p.PoolPath, ApprovedDir),
		filepath.Join(p.PoolPath, RejectedDir),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory not created: %s", dir)
		}
	}
}

func TestValidateCandidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"valid", "skill-20260824120000", nil},
		{"valid with underscore", "skill_a1", nil},
		{"empty", "", ErrEmptyID},
		{"too long", strings.Repeat("a", 129), ErrIDTooLong},
		{"path traversal", "../../etc/passwd", ErrIDInvalidChars},
		{"slash", "a/b", ErrIDInvalidChars},
		{"spaces", "skill 1", ErrIDInvalidChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCandidateID(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateCandidateID(%q) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestAddAndGet(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("skill-20260824120000", time.Now().UTC())
	if err := p.Add(cand); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := p.Get(cand.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SkillName != cand.SkillName {
		t.Errorf("skill name = %q, want %q", got.SkillName, cand.SkillName)
	}
	if got.Status != types.StatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if !strings.HasSuffix(got.FilePath, filepath.Join(PendingDir, cand.ID+".json")) {
		t.Errorf("file path = %q, want under pending/", got.FilePath)
	}
}

func TestAddRejectsDuplicateID(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("skill-dup", time.Now().UTC())
	if err := p.Add(cand); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := p.Add(cand); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("second Add = %v, want ErrDuplicateID", err)
	}
}

func TestAddRejectsInvalidID(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("../escape", time.Now().UTC())
	if err := p.Add(cand); !errors.Is(err, ErrIDInvalidChars) {
		t.Errorf("Add = %v, want ErrIDInvalidChars", err)
	}
}

func TestGetNotFound(t *testing.T) {
	p := newTestPool(t)
	if err := p.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if _, err := p.Get("skill-missing"); !errors.Is(err, ErrCandidateNotFound) {
		t.Errorf("Get = %v, want ErrCandidateNotFound", err)
	}
}

func TestListPendingNewestFirst(t *testing.T) {
	p := newTestPool(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"skill-old", "skill-mid", "skill-new"} {
		cand := testCandidate(id, base.Add(time.Duration(i)*time.Minute))
		if err := p.Add(cand); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}

	entries, err := p.ListPending()
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	want := []string{"skill-new", "skill-mid", "skill-old"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Errorf("entries[%d].ID = %q, want %q", i, entries[i].ID, id)
		}
	}
}

func TestApproveLifecycle(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("skill-approve", time.Now().UTC())
	if err := p.Add(cand); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := p.Approve(cand.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	got, err := p.Get(cand.ID)
	if err != nil {
		t.Fatalf("Get after approve: %v", err)
	}
	if got.Status != types.StatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.ApprovedAt.IsZero() {
		t.Error("ApprovedAt not set")
	}
	if !strings.Contains(got.FilePath, ApprovedDir) {
		t.Errorf("file path = %q, want under approved/", got.FilePath)
	}

	// The pending file must be gone after the move.
	oldPath := filepath.Join(p.PoolPath, PendingDir, cand.ID+".json")
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("pending file still exists: %v", err)
	}

	pending, err := p.ListPending()
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending, want 0", len(pending))
	}
}

func TestApproveNonPending(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("skill-twice", time.Now().UTC())
	if err := p.Add(cand); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Approve(cand.ID); err != nil {
		t.Fatalf("first Approve: %v", err)
	}
	if err := p.Approve(cand.ID); !errors.Is(err, ErrNotPending) {
		t.Errorf("second Approve = %v, want ErrNotPending", err)
	}
}

func TestRejectLifecycle(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("skill-reject", time.Now().UTC())
	if err := p.Add(cand); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := p.Reject(cand.ID, "too project specific"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	got, err := p.Get(cand.ID)
	if err != nil {
		t.Fatalf("Get after reject: %v", err)
	}
	if got.Status != types.StatusRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}
	if got.RejectionReason != "too project specific" {
		t.Errorf("rejection reason = %q", got.RejectionReason)
	}
	if got.RejectedAt.IsZero() {
		t.Error("RejectedAt not set")
	}
	if !strings.Contains(got.FilePath, RejectedDir) {
		t.Errorf("file path = %q, want under rejected/", got.FilePath)
	}
}

func TestRejectReasonTooLong(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("skill-longreason", time.Now().UTC())
	if err := p.Add(cand); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reason := strings.Repeat("x", MaxReasonLength+1)
	if err := p.Reject(cand.ID, reason); !errors.Is(err, ErrReasonTooLong) {
		t.Errorf("Reject = %v, want ErrReasonTooLong", err)
	}
}

func TestRejectAfterApprove(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("skill-flip", time.Now().UTC())
	if err := p.Add(cand); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Approve(cand.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := p.Reject(cand.ID, "changed my mind"); !errors.Is(err, ErrNotPending) {
		t.Errorf("Reject = %v, want ErrNotPending", err)
	}
}

func TestListAllStatuses(t *testing.T) {
	p := newTestPool(t)

	now := time.Now().UTC()
	for _, id := range []string{"skill-a", "skill-b", "skill-c"} {
		if err := p.Add(testCandidate(id, now)); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}
	if err := p.Approve("skill-a"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := p.Reject("skill-b", "no"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	all, err := p.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d entries, want 3", len(all))
	}

	approved, err := p.List(types.StatusApproved)
	if err != nil {
		t.Fatalf("List approved: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != "skill-a" {
		t.Errorf("approved = %+v, want [skill-a]", approved)
	}
}

func TestMetricsLog(t *testing.T) {
	p := newTestPool(t)

	cand := testCandidate("skill-metrics", time.Now().UTC())
	if err := p.Add(cand); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Reject(cand.ID, "noise"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	events, err := p.Metrics()
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Operation != "add" || events[1].Operation != "reject" {
		t.Errorf("operations = %q, %q; want add, reject", events[0].Operation, events[1].Operation)
	}
	if events[1].Reason != "noise" {
		t.Errorf("reject reason = %q, want noise", events[1].Reason)
	}
}

func TestMetricsEmptyPool(t *testing.T) {
	p := newTestPool(t)

	events, err := p.Metrics()
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if events != nil {
		t.Errorf("got %d events, want none", len(events))
	}
}

func TestListSkipsMalformedEntries(t *testing.T) {
	p := newTestPool(t)

	if err := p.Add(testCandidate("skill-good", time.Now().UTC())); err != nil {
		t.Fatalf("Add: %v", err)
	}

	bad := filepath.Join(p.PoolPath, PendingDir, "skill-bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write malformed: %v", err)
	}

	entries, err := p.ListPending()
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "skill-good" {
		t.Errorf("entries = %+v, want only skill-good", entries)
	}
}

// Package types defines the data structures shared across the CIPS learning
// pipeline: detection triggers, learning events, generalisability
// evaluations, and skill candidates.
package types

import "time"

// Triggers records which learning signals fired for a message.
type Triggers struct {
	// HighNovelty fires when the novelty score exceeds the configured
	// threshold.
	HighNovelty bool `json:"high_novelty"`

	// TeachingMoment fires on correction language ("you should have", ...).
	TeachingMoment bool `json:"teaching_moment"`

	// NewTerm fires when the user coins or introduces a new concept.
	NewTerm bool `json:"new_term"`

	// Generalisation fires when a specific solution is stated as a
	// general principle.
	Generalisation bool `json:"generalisation"`
}

// Count returns how many triggers fired.
func (tr Triggers) Count() int {
	n := 0
	for _, fired := range []bool{tr.HighNovelty, tr.TeachingMoment, tr.NewTerm, tr.Generalisation} {
		if fired {
			n++
		}
	}
	return n
}

// TriggerDetails carries the evidence behind each fired trigger.
type TriggerDetails struct {
	// NoveltyScore is the score supplied to (or computed for) detection.
	NoveltyScore float64 `json:"novelty_score"`

	// TeachingPattern is the matched correction pattern, if any.
	TeachingPattern string `json:"teaching_pattern,omitempty"`

	// NewTerm is the extracted coined term, if any.
	NewTerm string `json:"new_term,omitempty"`

	// GeneralisationPattern is the matched generalisation pattern, if any.
	GeneralisationPattern string `json:"generalisation_pattern,omitempty"`
}

// LearningEvent is the outcome of running a message through the learning
// detectors.
type LearningEvent struct {
	// IsLearningEvent reports whether enough triggers fired to treat the
	// message as a learning event.
	IsLearningEvent bool `json:"is_learning_event"`

	// LearningScore is the composite signal strength in [0, 1].
	LearningScore float64 `json:"learning_score"`

	// TriggerCount is how many triggers fired.
	TriggerCount int `json:"trigger_count"`

	// Triggers records which signals fired.
	Triggers Triggers `json:"triggers"`

	// Details carries the evidence behind the triggers.
	Details TriggerDetails `json:"details"`

	// Timestamp is when detection ran.
	Timestamp time.Time `json:"timestamp"`
}

// Action is the recommended follow-up for a detected learning.
type Action string

const (
	// ActionDocumentProject: the learning is project-specific; document it
	// in the project rather than generalising.
	ActionDocumentProject Action = "document_project"

	// ActionUpdateInfrastructure: the learning concerns the assistant's
	// own tooling; flag it for infrastructure updates.
	ActionUpdateInfrastructure Action = "update_infrastructure"

	// ActionGenerateSkill: the learning generalises across projects; draft
	// a skill candidate.
	ActionGenerateSkill Action = "generate_skill"
)

// Evaluation is the generalisability assessment of a learning event.
type Evaluation struct {
	// IsGeneralisable reports whether the learning applies beyond the
	// current project.
	IsGeneralisable bool `json:"is_generalisable"`

	// Action is the recommended follow-up.
	Action Action `json:"action"`

	// Reason explains the recommendation.
	Reason string `json:"reason"`

	// IsProjectSpecific reports project-scoped language in the message.
	IsProjectSpecific bool `json:"is_project_specific"`

	// IsInfraImprovement reports tooling/infrastructure language.
	IsInfraImprovement bool `json:"is_infra_improvement"`

	// SuggestedSkillName is derived from a coined term when one was
	// detected.
	SuggestedSkillName string `json:"suggested_skill_name,omitempty"`

	// ProjectPath is the project the message came from, if known.
	ProjectPath string `json:"project_path,omitempty"`
}

// CandidateStatus is the lifecycle state of a skill candidate.
type CandidateStatus string

const (
	// StatusPending awaits human review.
	StatusPending CandidateStatus = "pending"

	// StatusApproved was accepted by a reviewer.
	StatusApproved CandidateStatus = "approved"

	// StatusRejected was declined by a reviewer.
	StatusRejected CandidateStatus = "rejected"
)

// CandidateSource tracks where a skill candidate came from.
type CandidateSource struct {
	// Type names the detection pipeline that produced the candidate.
	Type string `json:"type"`

	// Project is the originating project path, if known.
	Project string `json:"project,omitempty"`
}

// SkillCandidate is a proposed skill drafted from a detected learning,
// awaiting human review in the candidate pool.
type SkillCandidate struct {
	// ID is the unique identifier (e.g. "skill-20260824153000").
	ID string `json:"id"`

	// SkillName is the proposed skill slug.
	SkillName string `json:"skill_name"`

	// Description is the truncated message preview.
	Description string `json:"description"`

	// FullContent is the complete source message.
	FullContent string `json:"full_content"`

	// LearningScore is the composite signal strength at detection time.
	LearningScore float64 `json:"learning_score"`

	// Triggers records which signals fired.
	Triggers Triggers `json:"triggers"`

	// Evaluation is the generalisability assessment.
	Evaluation Evaluation `json:"evaluation"`

	// Status is the review lifecycle state.
	Status CandidateStatus `json:"status"`

	// CreatedAt is when the candidate was drafted.
	CreatedAt time.Time `json:"created_at"`

	// ApprovedAt is when the candidate was approved, if it was.
	ApprovedAt time.Time `json:"approved_at,omitempty"`

	// RejectedAt is when the candidate was rejected, if it was.
	RejectedAt time.Time `json:"rejected_at,omitempty"`

	// RejectionReason records why a rejected candidate was declined.
	RejectionReason string `json:"rejection_reason,omitempty"`

	// Source tracks candidate provenance.
	Source CandidateSource `json:"source"`
}

package learning

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/crucible-ai/cips/internal/types"
)

// descriptionLimit truncates the candidate description preview.
const descriptionLimit = 200

// projectIndicators suggest the learning is scoped to the current project.
var projectIndicators = []string{
	"this project",
	"this codebase",
	"in this repo",
	"specific to",
	"only for",
	"this file",
	"this function",
}

// infraIndicators suggest the learning concerns the assistant's own tooling.
var infraIndicators = []string{
	"claude.md",
	"rules/",
	"skills/",
	"hooks/",
	"cips",
	"session",
	"infrastructure",
}

var (
	skillNameInvalid  = regexp.MustCompile(`[^a-z0-9-]`)
	skillNameHyphens  = regexp.MustCompile(`-+`)
	lowercaseWordOnly = regexp.MustCompile(`\b[a-z]+\b`)
)

// Evaluate decides whether a detected learning generalises beyond the
// current project and recommends a follow-up action:
//
//	project-specific  -> document in the project, don't generalise
//	infrastructure    -> flag for tooling updates
//	otherwise         -> draft a skill candidate
func Evaluate(message string, event types.LearningEvent, projectPath string) types.Evaluation {
	lower := strings.ToLower(message)

	projectSpecific := containsAny(lower, projectIndicators)
	infraImprovement := containsAny(lower, infraIndicators)

	eval := types.Evaluation{
		IsGeneralisable:    !projectSpecific,
		IsProjectSpecific:  projectSpecific,
		IsInfraImprovement: infraImprovement,
		ProjectPath:        projectPath,
	}

	switch {
	case projectSpecific:
		eval.Action = types.ActionDocumentProject
		eval.Reason = "Learning appears specific to current project"
	case infraImprovement:
		eval.Action = types.ActionUpdateInfrastructure
		eval.Reason = "Learning relates to assistant infrastructure"
	default:
		eval.Action = types.ActionGenerateSkill
		eval.Reason = "Learning appears generalisable across projects"
	}

	if event.Triggers.NewTerm && event.Details.NewTerm != "" {
		eval.SuggestedSkillName = slugify(event.Details.NewTerm)
	}

	return eval
}

// NewCandidate drafts a skill candidate from a learning event and its
// evaluation.
func NewCandidate(message string, event types.LearningEvent, eval types.Evaluation) types.SkillCandidate {
	now := time.Now().UTC()
	id := fmt.Sprintf("skill-%s", now.Format("20060102150405"))

	name := eval.SuggestedSkillName
	if name == "" {
		if words := lowercaseWordOnly.FindAllString(strings.ToLower(message), 3); len(words) > 0 {
			name = strings.Join(words, "-")
		} else {
			name = "learned-" + id
		}
	}

	description := message
	if len(description) > descriptionLimit {
		description = description[:descriptionLimit]
	}

	return types.SkillCandidate{
		ID:            id,
		SkillName:     name,
		Description:   description,
		FullContent:   message,
		LearningScore: event.LearningScore,
		Triggers:      event.Triggers,
		Evaluation:    eval,
		Status:        types.StatusPending,
		CreatedAt:     now,
		Source: types.CandidateSource{
			Type:    "dialectical_learning",
			Project: eval.ProjectPath,
		},
	}
}

// slugify turns a coined term into a skill-name slug: lowercased, with
// non-alphanumeric runs collapsed to single hyphens.
func slugify(term string) string {
	s := strings.ToLower(strings.TrimSpace(term))
	s = skillNameInvalid.ReplaceAllString(s, "-")
	s = skillNameHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

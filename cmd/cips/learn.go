package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crucible-ai/cips/internal/config"
	"github.com/crucible-ai/cips/internal/formatter"
	"github.com/crucible-ai/cips/internal/learning"
	"github.com/crucible-ai/cips/internal/pool"
	"github.com/crucible-ai/cips/internal/types"
)

var (
	learnNovelty  float64
	learnProject  string
	learnNoNotify bool
	learnReason   string
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Detect learning events and manage skill candidates",
	Long: `Detect learning events in conversation messages and manage the
resulting skill candidates.

A learning event fires when at least two signals are present: high
novelty, a teaching moment, a newly coined term, or a generalisation.
Detected events become skill candidates awaiting human review.

Examples:
  cips learn detect "you should have used the builder pattern"
  cips learn process "always use prepared statements" --novelty=0.6
  cips learn list
  cips learn approve skill-20260824120000
  cips learn reject skill-20260824120000 --reason="too vague"`,
}

// newDetector builds a detector from resolved configuration.
func newDetector(cfg *config.Config) *learning.Detector {
	return learning.NewDetector(learning.Config{
		NoveltyThreshold: cfg.Learning.NoveltyThreshold,
		MinTriggers:      cfg.Learning.MinTriggers,
	})
}

var learnDetectCmd = &cobra.Command{
	Use:   "detect <message>",
	Short: "Run learning trigger detection on a message",
	Long: `Run the learning trigger checks against a message and report the
result. The novelty score is supplied with --novelty; compute one with
'cips novelty' first when an embedding corpus is available.

Examples:
  cips learn detect "you should have used the builder pattern"
  cips learn detect "in general, validate at the boundary" --novelty=0.7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		event := newDetector(cfg).Detect(args[0], learnNovelty, nil)
		return outputAny(cfg.Output, event, func() {
			fmt.Printf("Learning event:  %v\n", event.IsLearningEvent)
			fmt.Printf("Score:           %.3f\n", event.LearningScore)
			fmt.Printf("Triggers:        %d\n", event.TriggerCount)
			if event.Triggers.TeachingMoment {
				fmt.Printf("  teaching moment (%s)\n", event.Details.TeachingPattern)
			}
			if event.Triggers.NewTerm {
				fmt.Printf("  new term (%s)\n", event.Details.NewTerm)
			}
			if event.Triggers.Generalisation {
				fmt.Printf("  generalisation (%s)\n", event.Details.GeneralisationPattern)
			}
			if event.Triggers.HighNovelty {
				fmt.Printf("  high novelty (%.2f)\n", event.Details.NoveltyScore)
			}
		})
	},
}

// processResult is the learn process command's output record.
type processResult struct {
	Event      types.LearningEvent `json:"event" yaml:"event"`
	Evaluation *types.Evaluation   `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
	Candidate  string              `json:"candidate_id,omitempty" yaml:"candidate_id,omitempty"`
	Saved      bool                `json:"saved" yaml:"saved"`
}

var learnProcessCmd = &cobra.Command{
	Use:   "process <message>",
	Short: "Run the full learning pipeline on a message",
	Long: `Detect a learning event, evaluate whether it generalises, draft a
skill candidate, and save it to the pending pool.

Messages that do not reach the trigger threshold are reported and
discarded. Project-specific and infrastructure learnings are evaluated
but still saved, carrying their recommended action for the reviewer.

Examples:
  cips learn process "always use prepared statements" --novelty=0.6
  cips learn process "let's call this the flywheel approach" --project=$PWD`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		message := args[0]
		event := newDetector(cfg).Detect(message, learnNovelty, nil)
		result := processResult{Event: event}

		if !event.IsLearningEvent {
			return outputAny(cfg.Output, result, func() {
				fmt.Printf("No learning event detected (%d/%d triggers)\n",
					event.TriggerCount, cfg.Learning.MinTriggers)
			})
		}

		eval := learning.Evaluate(message, event, learnProject)
		cand := learning.NewCandidate(message, event, eval)
		result.Evaluation = &eval
		result.Candidate = cand.ID

		if GetDryRun() {
			return outputAny(cfg.Output, result, func() {
				fmt.Printf("[dry-run] Would save candidate %s (%s)\n", cand.ID, cand.SkillName)
			})
		}

		p := pool.NewPool(cfg.Learning.BaseDir)
		if err := p.Add(cand); err != nil {
			return fmt.Errorf("save candidate: %w", err)
		}
		result.Saved = true

		if !learnNoNotify {
			fmt.Fprintf(os.Stderr, "Learning event detected (score %.2f): saved %s for review. Run 'cips learn list' to review.\n",
				event.LearningScore, cand.ID)
		}

		return outputAny(cfg.Output, result, func() {
			fmt.Printf("Candidate:  %s\n", cand.ID)
			fmt.Printf("Skill:      %s\n", cand.SkillName)
			fmt.Printf("Score:      %.3f\n", cand.LearningScore)
			fmt.Printf("Action:     %s\n", eval.Action)
		})
	},
}

var learnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skill candidates awaiting review",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		p := pool.NewPool(cfg.Learning.BaseDir)
		entries, err := p.ListPending()
		if err != nil {
			return fmt.Errorf("list candidates: %w", err)
		}

		switch cfg.Output {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			return enc.Encode(entries)
		default:
			if len(entries) == 0 {
				fmt.Println("No pending candidates")
				return nil
			}
			tbl := formatter.NewTable(os.Stdout, "ID", "SKILL", "SCORE", "AGE", "ACTION")
			tbl.SetMaxWidth(1, 32)
			for _, e := range entries {
				tbl.AddRow(
					e.ID,
					e.SkillName,
					fmt.Sprintf("%.2f", e.LearningScore),
					e.AgeString,
					string(e.Evaluation.Action),
				)
			}
			return tbl.Render()
		}
	},
}

var learnApproveCmd = &cobra.Command{
	Use:   "approve <candidate-id>",
	Short: "Approve a pending skill candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidateID := args[0]

		if GetDryRun() {
			fmt.Printf("[dry-run] Would approve candidate %s\n", candidateID)
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		p := pool.NewPool(cfg.Learning.BaseDir)
		if err := p.Approve(candidateID); err != nil {
			return fmt.Errorf("approve candidate: %w", err)
		}

		fmt.Printf("Approved: %s\n", candidateID)
		return nil
	},
}

var learnRejectCmd = &cobra.Command{
	Use:   "reject <candidate-id>",
	Short: "Reject a pending skill candidate",
	Long: `Reject a pending candidate and move it to the rejected directory.

A reason must be provided for audit purposes.

Examples:
  cips learn reject skill-20260824120000 --reason="too project specific"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidateID := args[0]

		if learnReason == "" {
			return fmt.Errorf("--reason is required for rejection")
		}

		if GetDryRun() {
			fmt.Printf("[dry-run] Would reject candidate %s with reason: %s\n", candidateID, learnReason)
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		p := pool.NewPool(cfg.Learning.BaseDir)
		if err := p.Reject(candidateID, learnReason); err != nil {
			return fmt.Errorf("reject candidate: %w", err)
		}

		fmt.Printf("Rejected: %s\n", candidateID)
		fmt.Printf("Reason: %s\n", learnReason)
		return nil
	},
}

var learnInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the candidate pool directory structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		p := pool.NewPool(cfg.Learning.BaseDir)

		if GetDryRun() {
			fmt.Printf("[dry-run] Would create pool directories under %s\n", p.PoolPath)
			return nil
		}

		if err := p.Init(); err != nil {
			return fmt.Errorf("init pool: %w", err)
		}

		fmt.Printf("Initialized pool at %s\n", p.PoolPath)
		return nil
	},
}

// outputAny encodes v as json/yaml, or falls back to the table renderer.
func outputAny(format string, v interface{}, table func()) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(v)
	default:
		table()
		return nil
	}
}

func init() {
	rootCmd.AddCommand(learnCmd)

	learnCmd.AddCommand(learnDetectCmd)
	learnCmd.AddCommand(learnProcessCmd)
	learnCmd.AddCommand(learnListCmd)
	learnCmd.AddCommand(learnApproveCmd)
	learnCmd.AddCommand(learnRejectCmd)
	learnCmd.AddCommand(learnInitCmd)

	learnDetectCmd.Flags().Float64Var(&learnNovelty, "novelty", 0, "Pre-computed novelty score in [0, 1]")

	learnProcessCmd.Flags().Float64Var(&learnNovelty, "novelty", 0, "Pre-computed novelty score in [0, 1]")
	learnProcessCmd.Flags().StringVar(&learnProject, "project", "", "Originating project path")
	learnProcessCmd.Flags().BoolVar(&learnNoNotify, "no-notify", false, "Suppress the review notification")

	learnRejectCmd.Flags().StringVar(&learnReason, "reason", "", "Reason for rejection (required)")
	_ = learnRejectCmd.MarkFlagRequired("reason") //nolint:errcheck
}

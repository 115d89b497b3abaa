package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crucible-ai/cips/internal/coherence"
)

var (
	coherenceThreshold float64
	coherenceMinLength int
)

// coherenceVerdict is the coherence command's output record. Verbose mode
// fills the diagnostic fields.
type coherenceVerdict struct {
	coherence.Result `yaml:",inline"`

	DictionaryRatio *float64 `json:"dictionary_ratio,omitempty" yaml:"dictionary_ratio,omitempty"`
	NgramScore      *float64 `json:"ngram_score,omitempty" yaml:"ngram_score,omitempty"`
	WordCount       *int     `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	TextLength      *int     `json:"text_length,omitempty" yaml:"text_length,omitempty"`
}

var coherenceCmd = &cobra.Command{
	Use:   "coherence <text>",
	Short: "Classify text as coherent or gibberish",
	Long: `Classify a text sample as coherent language or gibberish.

The check runs a dictionary word-ratio first and falls back to a
common-bigram ratio for technical text the dictionary rejects. Input
shorter than the minimum check length bypasses scoring and is assumed
coherent.

Examples:
  cips coherence "the quick brown fox jumps over the lazy dog"
  cips coherence "asdkjhqwlekjhzxc" --threshold=0.5
  cips coherence "kubectl rollout restart deployment/api" -v`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Coherence.Threshold = coherenceThreshold
		}
		if cmd.Flags().Changed("min-length") {
			cfg.Coherence.MinLength = coherenceMinLength
		}

		text := args[0]
		cls := newClassifier(cfg)
		verdict := coherenceVerdict{Result: cls.Check(text)}

		if GetVerbose() || cfg.Verbose {
			dict := cls.DictionaryRatio(text)
			ngram := coherence.NgramRatio(text)
			words := len(coherence.Tokenize(text))
			length := len(text)
			verdict.DictionaryRatio = &dict
			verdict.NgramScore = &ngram
			verdict.WordCount = &words
			verdict.TextLength = &length
		}

		return outputCoherence(cfg.Output, verdict)
	},
}

func outputCoherence(format string, v coherenceVerdict) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(v)

	default: // table
		fmt.Printf("Passed:  %v\n", v.Passed)
		fmt.Printf("Score:   %.3f\n", v.Score)
		fmt.Printf("Method:  %s\n", v.Method)
		if v.DictionaryRatio != nil {
			fmt.Println()
			fmt.Printf("Dictionary ratio: %.3f\n", *v.DictionaryRatio)
			fmt.Printf("N-gram score:     %.3f\n", *v.NgramScore)
			fmt.Printf("Word count:       %d\n", *v.WordCount)
			fmt.Printf("Text length:      %d\n", *v.TextLength)
		}
		return nil
	}
}

func init() {
	rootCmd.AddCommand(coherenceCmd)

	coherenceCmd.Flags().Float64Var(&coherenceThreshold, "threshold", coherence.DefaultThreshold, "Minimum ratio to classify as coherent")
	coherenceCmd.Flags().IntVar(&coherenceMinLength, "min-length", coherence.DefaultMinLength, "Trimmed length below which input bypasses the check")
}

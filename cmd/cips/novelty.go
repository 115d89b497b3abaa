package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crucible-ai/cips/internal/config"
	"github.com/crucible-ai/cips/internal/novelty"
)

var (
	noveltyStore    bool
	noveltyType     string
	pruneDays       int
	pruneMinNovelty float64
)

// embeddingDims sizes the built-in feature-hash embedder's vectors.
const embeddingDims = 256

// hashEmbedder is the CLI's built-in embedder: a deterministic bag-of-words
// feature hash. It captures lexical overlap only; library users wanting
// semantic similarity inject a model-backed Embedder into the engine
// instead.
type hashEmbedder struct{}

// Embed hashes each whitespace token into one of embeddingDims buckets with
// a hash-derived sign.
func (hashEmbedder) Embed(text string) ([]float32, error) {
	vec := make([]float32, embeddingDims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := sum % embeddingDims
		if sum>>63 == 1 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	return vec, nil
}

// openEngine builds the novelty engine over the configured corpus database.
func openEngine(cfg *config.Config) (*novelty.Engine, error) {
	if dir := filepath.Dir(cfg.Novelty.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return novelty.NewEngine(newClassifier(cfg), hashEmbedder{}, novelty.EngineConfig{
		DBPath:      cfg.Novelty.DBPath,
		RecentLimit: cfg.Novelty.RecentLimit,
	})
}

var noveltyCmd = &cobra.Command{
	Use:   "novelty <text>",
	Short: "Score text novelty behind the coherence gate",
	Long: `Score how dissimilar a text sample is from recently recorded content.

The score is 1 minus the maximum cosine similarity against the most
recent corpus embeddings. Text that fails the coherence gate scores
0.0 without any embedding work; an empty corpus scores 1.0.

Examples:
  cips novelty "we moved session state into sqlite"
  cips novelty "we moved session state into sqlite" --store
  cips novelty stats
  cips novelty prune --days=90 --min-novelty=0.3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		text := args[0]

		if GetDryRun() {
			fmt.Printf("[dry-run] Would score novelty for %d bytes of text\n", len(text))
			return nil
		}

		eng, err := openEngine(cfg)
		if err != nil {
			return fmt.Errorf("open engine: %w", err)
		}
		defer eng.Close() //nolint:errcheck

		res, err := eng.CalculateNovelty(text)
		if err != nil {
			return fmt.Errorf("calculate novelty: %w", err)
		}

		// Incoherent text is never recorded: a corpus of gibberish would
		// drag down every later similarity comparison.
		if noveltyStore && res.Coherence.Passed {
			id, err := eng.Store(text, noveltyType, res.Novelty)
			if err != nil {
				return fmt.Errorf("store embedding: %w", err)
			}
			VerbosePrintf("Stored embedding %d\n", id)
		}

		return outputNovelty(cfg.Output, res)
	},
}

func outputNovelty(format string, res novelty.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)

	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		return enc.Encode(res)

	default: // table
		fmt.Printf("Novelty:   %.3f\n", res.Novelty)
		fmt.Printf("Priority:  %s\n", res.Priority)
		fmt.Printf("Coherent:  %v (%s, %.3f)\n", res.Coherence.Passed, res.Coherence.Method, res.Coherence.Score)
		return nil
	}
}

var noveltyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		eng, err := openEngine(cfg)
		if err != nil {
			return fmt.Errorf("open engine: %w", err)
		}
		defer eng.Close() //nolint:errcheck

		stats, err := eng.Stats()
		if err != nil {
			return fmt.Errorf("corpus stats: %w", err)
		}

		switch cfg.Output {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			return enc.Encode(stats)
		default:
			fmt.Printf("Embeddings:  %d\n", stats.TotalEmbeddings)
			fmt.Printf("Cache size:  %d\n", stats.CacheSize)
			for typ, n := range stats.ByType {
				fmt.Printf("  %s: %d\n", typ, n)
			}
			return nil
		}
	},
}

var noveltyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old low-novelty corpus entries",
	Long: `Remove corpus entries older than --days whose recorded novelty fell
below --min-novelty.

Examples:
  cips novelty prune
  cips novelty prune --days=30 --min-novelty=0.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if GetDryRun() {
			fmt.Printf("[dry-run] Would prune entries older than %d days with novelty < %.2f\n", pruneDays, pruneMinNovelty)
			return nil
		}

		eng, err := openEngine(cfg)
		if err != nil {
			return fmt.Errorf("open engine: %w", err)
		}
		defer eng.Close() //nolint:errcheck

		removed, err := eng.Prune(pruneDays, pruneMinNovelty)
		if err != nil {
			return fmt.Errorf("prune corpus: %w", err)
		}

		fmt.Printf("Pruned %d entries\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(noveltyCmd)
	noveltyCmd.AddCommand(noveltyStatsCmd)
	noveltyCmd.AddCommand(noveltyPruneCmd)

	noveltyCmd.Flags().BoolVar(&noveltyStore, "store", false, "Record the embedding in the corpus after scoring")
	noveltyCmd.Flags().StringVar(&noveltyType, "type", "prompt", "Embedding type label for stored entries")

	noveltyPruneCmd.Flags().IntVar(&pruneDays, "days", 90, "Minimum age in days")
	noveltyPruneCmd.Flags().Float64Var(&pruneMinNovelty, "min-novelty", 0.3, "Prune entries with recorded novelty below this")
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucible-ai/cips/internal/coherence"
	"github.com/crucible-ai/cips/internal/config"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cips",
	Short: "Coherence-gated novelty and learning pipeline CLI",
	Long: `cips scores text for coherence and novelty and turns teaching
moments into reviewable skill candidates.

Core Commands:
  coherence    Classify text as coherent or gibberish
  novelty      Score text novelty behind the coherence gate
  learn        Detect learning events and manage skill candidates
  version      Show version information

Novelty scoring is gated on coherence: gibberish scores 0.0 novelty
before any embedding work happens, no matter how unlike the corpus
it looks.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (json, table, yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.cips/config.yaml)")
}

// GetDryRun returns the dry-run flag value for use by subcommands.
func GetDryRun() bool {
	return dryRun
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}

// GetConfigFile returns the config file path for use by subcommands.
func GetConfigFile() string {
	return cfgFile
}

// VerbosePrintf prints only when verbose mode is enabled.
func VerbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("CIPS_CONFIG", path)
}

// loadConfig resolves configuration with global flags layered on top of
// env/file/default values.
func loadConfig() (*config.Config, error) {
	overrides := &config.Config{}
	if rootCmd.PersistentFlags().Changed("output") {
		overrides.Output = output
	}
	if verbose {
		overrides.Verbose = true
	}
	return config.Load(overrides)
}

// newClassifier builds a coherence classifier from resolved configuration,
// loading the word list from the configured (or default) locations.
func newClassifier(cfg *config.Config) *coherence.Classifier {
	paths := cfg.Coherence.DictionaryPaths
	if len(paths) == 0 {
		paths = coherence.DefaultDictionaryPaths()
	}
	index := coherence.LoadIndex(paths)
	return coherence.NewClassifier(index, coherence.Config{
		Threshold:      cfg.Coherence.Threshold,
		NgramThreshold: cfg.Coherence.NgramThreshold,
		MinLength:      cfg.Coherence.MinLength,
	})
}

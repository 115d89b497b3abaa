// Package config provides configuration management for CIPS.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (CIPS_*)
// 3. Project config (.cips/config.yaml in cwd)
// 4. Home config (~/.cips/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all CIPS configuration.
type Config struct {
	// Output controls the default output format (table, json, yaml).
	Output string `yaml:"output" json:"output"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Coherence settings
	Coherence CoherenceConfig `yaml:"coherence" json:"coherence"`

	// Novelty settings
	Novelty NoveltyConfig `yaml:"novelty" json:"novelty"`

	// Learning settings
	Learning LearningConfig `yaml:"learning" json:"learning"`
}

// CoherenceConfig holds coherence classifier settings.
type CoherenceConfig struct {
	// Threshold is the dictionary-ratio pass threshold.
	// Default: 0.3
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// NgramThreshold is the bigram-ratio fallback threshold.
	// Default: 0.25
	NgramThreshold float64 `yaml:"ngram_threshold" json:"ngram_threshold"`

	// MinLength is the trimmed length below which text bypasses the check.
	// Default: 10
	MinLength int `yaml:"min_length_for_check" json:"min_length_for_check"`

	// DictionaryPaths overrides the word list search order. Empty means the
	// standard system locations.
	DictionaryPaths []string `yaml:"dictionary_paths" json:"dictionary_paths"`
}

// NoveltyConfig holds novelty engine settings.
type NoveltyConfig struct {
	// DBPath is the SQLite embeddings database location.
	// Default: ~/.cips/data/embeddings.db
	DBPath string `yaml:"db_path" json:"db_path"`

	// RecentLimit is how many recent embeddings the novelty comparison
	// window holds. Default: 20
	RecentLimit int `yaml:"recent_limit" json:"recent_limit"`
}

// LearningConfig holds learning detector and pool settings.
type LearningConfig struct {
	// NoveltyThreshold is the score above which the high-novelty trigger
	// fires. Default: 0.4
	NoveltyThreshold float64 `yaml:"novelty_threshold" json:"novelty_threshold"`

	// MinTriggers is how many triggers must fire for a learning event.
	// Default: 2
	MinTriggers int `yaml:"min_triggers" json:"min_triggers"`

	// BaseDir is where the candidate pool lives (pool data goes under
	// <base_dir>/.cips/learning). Default: current directory.
	BaseDir string `yaml:"base_dir" json:"base_dir"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput         = "table"
	defaultThreshold      = 0.3
	defaultNgramThreshold = 0.25
	defaultMinLength      = 10
	defaultRecentLimit    = 20
	defaultNoveltyTrigger = 0.4
	defaultMinTriggers    = 2
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Output:  defaultOutput,
		Verbose: false,
		Coherence: CoherenceConfig{
			Threshold:      defaultThreshold,
			NgramThreshold: defaultNgramThreshold,
			MinLength:      defaultMinLength,
		},
		Novelty: NoveltyConfig{
			DBPath:      filepath.Join(homeDir, ".cips", "data", "embeddings.db"),
			RecentLimit: defaultRecentLimit,
		},
		Learning: LearningConfig{
			NoveltyThreshold: defaultNoveltyTrigger,
			MinTriggers:      defaultMinTriggers,
			BaseDir:          ".",
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	// Load home config
	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	// Load project config
	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	// Apply environment variables
	cfg = applyEnv(cfg)

	// Apply flag overrides
	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cips", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("CIPS_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".cips", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("CIPS_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if os.Getenv("CIPS_VERBOSE") == "true" || os.Getenv("CIPS_VERBOSE") == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("CIPS_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Coherence.Threshold = f
		}
	}
	if v := os.Getenv("CIPS_NGRAM_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Coherence.NgramThreshold = f
		}
	}
	if v := os.Getenv("CIPS_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Coherence.MinLength = n
		}
	}
	if v := os.Getenv("CIPS_DB_PATH"); v != "" {
		cfg.Novelty.DBPath = v
	}
	if v := os.Getenv("CIPS_RECENT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Novelty.RecentLimit = n
		}
	}
	if v := os.Getenv("CIPS_NOVELTY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Learning.NoveltyThreshold = f
		}
	}
	if v := os.Getenv("CIPS_BASE_DIR"); v != "" {
		cfg.Learning.BaseDir = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// mergeFloat overwrites dst with src when src is non-zero.
func mergeFloat(dst *float64, src float64) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// For booleans, non-default values win through the chain.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeCoherence(&dst.Coherence, &src.Coherence)
	mergeNovelty(&dst.Novelty, &src.Novelty)
	mergeLearning(&dst.Learning, &src.Learning)

	return dst
}

// mergeCoherence merges coherence-specific config fields.
func mergeCoherence(dst, src *CoherenceConfig) {
	mergeFloat(&dst.Threshold, src.Threshold)
	mergeFloat(&dst.NgramThreshold, src.NgramThreshold)
	mergeInt(&dst.MinLength, src.MinLength)
	if len(src.DictionaryPaths) > 0 {
		dst.DictionaryPaths = src.DictionaryPaths
	}
}

// mergeNovelty merges novelty-specific config fields.
func mergeNovelty(dst, src *NoveltyConfig) {
	mergeStr(&dst.DBPath, src.DBPath)
	mergeInt(&dst.RecentLimit, src.RecentLimit)
}

// mergeLearning merges learning-specific config fields.
func mergeLearning(dst, src *LearningConfig) {
	mergeFloat(&dst.NoveltyThreshold, src.NoveltyThreshold)
	mergeInt(&dst.MinTriggers, src.MinTriggers)
	mergeStr(&dst.BaseDir, src.BaseDir)
}

// Package config loads analysis rules from TOML, YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/score"
)

// ErrInvalidRules is returned when a rules file or value is out of range.
var ErrInvalidRules = errors.New("invalid rules")

// Config holds all analysis rules.
type Config struct {
	// File discovery
	Scan ScanConfig `koanf:"scan" toml:"scan" yaml:"scan" json:"scan"`

	Complexity  ComplexityConfig  `koanf:"complexity" toml:"complexity" yaml:"complexity" json:"complexity"`
	Duplication DuplicationConfig `koanf:"duplication" toml:"duplication" yaml:"duplication" json:"duplication"`

	// Weights per finding category. Loaded separately so that
	// non-numeric entries are dropped instead of failing the load.
	Weights score.Weights `koanf:"-" toml:"weights" yaml:"weights" json:"weights"`

	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis" yaml:"analysis" json:"analysis"`
}

// ScanConfig controls which files are analyzed.
type ScanConfig struct {
	Include        []string `koanf:"include" toml:"include" yaml:"include" json:"include"`
	Exclude        []string `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`
	MaxBytes       int64    `koanf:"max_bytes" toml:"max_bytes" yaml:"max_bytes" json:"max_bytes"`
	Gitignore      bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
	FollowSymlinks bool     `koanf:"follow_symlinks" toml:"follow_symlinks" yaml:"follow_symlinks" json:"follow_symlinks"`
}

// ComplexityConfig holds the complexity threshold.
type ComplexityConfig struct {
	WarnAt int `koanf:"warn_at" toml:"warn_at" yaml:"warn_at" json:"warn_at"`
}

// DuplicationConfig tunes near-duplicate detection.
type DuplicationConfig struct {
	KShingle            int     `koanf:"k_shingle" toml:"k_shingle" yaml:"k_shingle" json:"k_shingle"`
	SimilarityThreshold float64 `koanf:"similarity_threshold" toml:"similarity_threshold" yaml:"similarity_threshold" json:"similarity_threshold"`
	MaxFunctions        int     `koanf:"max_functions" toml:"max_functions" yaml:"max_functions" json:"max_functions"`
	MaxChars            int     `koanf:"max_chars" toml:"max_chars" yaml:"max_chars" json:"max_chars"`
	TimeBudgetSeconds   float64 `koanf:"time_budget_seconds" toml:"time_budget_seconds" yaml:"time_budget_seconds" json:"time_budget_seconds"`
}

// TimeBudget returns the duplication wall-clock budget.
func (d DuplicationConfig) TimeBudget() time.Duration {
	return time.Duration(d.TimeBudgetSeconds * float64(time.Second))
}

// AnalysisConfig controls execution of a run.
type AnalysisConfig struct {
	// Workers bounds per-file parallelism (0 = one per CPU).
	Workers int `koanf:"workers" toml:"workers" yaml:"workers" json:"workers"`
	// SourceCacheSize is the number of file contents kept in memory.
	SourceCacheSize int `koanf:"source_cache_size" toml:"source_cache_size" yaml:"source_cache_size" json:"source_cache_size"`
}

// DefaultConfig returns the default rules.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Include: []string{"**/*.py", "**/*.js", "**/*.ts"},
			Exclude: []string{
				".git/**",
				"**/node_modules/**",
				"**/__pycache__/**",
				"**/.venv/**",
				"**/venv/**",
			},
			MaxBytes:  2_000_000,
			Gitignore: true,
		},
		Complexity: ComplexityConfig{
			WarnAt: 10,
		},
		Duplication: DuplicationConfig{
			KShingle:            7,
			SimilarityThreshold: 0.90,
			MaxFunctions:        400,
			MaxChars:            2000,
			TimeBudgetSeconds:   8,
		},
		Weights: score.DefaultWeights(),
		Analysis: AnalysisConfig{
			SourceCacheSize: 512,
		},
	}
}

// Load loads rules from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRules, path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if raw, ok := k.Get("weights").(map[string]any); ok {
		cfg.Weights = cfg.Weights.Override(raw)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// SearchPaths lists the rules files LoadOrDefault looks for, relative to a directory.
var SearchPaths = []string{
	"guardian.toml",
	"guardian.yaml",
	"guardian.yml",
	"guardian.json",
	".guardian.toml",
	".guardian.yaml",
	".guardian.yml",
	".guardian.json",
	filepath.Join("presets", "rules.yaml"),
}

// LoadOrDefault loads the first rules file found under dir.
// When none exists it returns the defaults and an empty path. When the file
// found cannot be loaded it returns the defaults together with the error.
func LoadOrDefault(dir string) (*Config, string, error) {
	for _, name := range SearchPaths {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			return DefaultConfig(), path, err
		}
		return cfg, path, nil
	}
	return DefaultConfig(), "", nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Complexity.WarnAt < 1 {
		errs = append(errs, fmt.Errorf("complexity.warn_at must be >= 1, got %d", c.Complexity.WarnAt))
	}
	if c.Duplication.KShingle < 1 {
		errs = append(errs, fmt.Errorf("duplication.k_shingle must be >= 1, got %d", c.Duplication.KShingle))
	}
	if t := c.Duplication.SimilarityThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("duplication.similarity_threshold must be in [0, 1], got %v", t))
	}
	if c.Duplication.MaxChars < 1 {
		errs = append(errs, fmt.Errorf("duplication.max_chars must be >= 1, got %d", c.Duplication.MaxChars))
	}
	if c.Duplication.TimeBudgetSeconds <= 0 {
		errs = append(errs, fmt.Errorf("duplication.time_budget_seconds must be > 0, got %v", c.Duplication.TimeBudgetSeconds))
	}
	if c.Scan.MaxBytes < 1 {
		errs = append(errs, fmt.Errorf("scan.max_bytes must be >= 1, got %d", c.Scan.MaxBytes))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRules, errors.Join(errs...))
}

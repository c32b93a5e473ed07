package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for augur.
type Config struct {
	Analyzer AnalyzerConfig `koanf:"analyzer" toml:"analyzer"`
	Cache    CacheConfig    `koanf:"cache" toml:"cache"`
	Output   OutputConfig   `koanf:"output" toml:"output"`
	Workers  int            `koanf:"workers" toml:"workers"` // 0 = 2x NumCPU
}

// AnalyzerConfig controls which analyzers run and how strict they are.
type AnalyzerConfig struct {
	EnableDeadExports           bool                 `koanf:"enable_dead_exports" toml:"enable_dead_exports"`
	EnableComplexityAnalysis    bool                 `koanf:"enable_complexity_analysis" toml:"enable_complexity_analysis"`
	ComplexityThresholds        ComplexityThresholds `koanf:"complexity_thresholds" toml:"complexity_thresholds"`
	IgnorePatterns              []string             `koanf:"ignore_patterns" toml:"ignore_patterns"`
	RespectUnderscoreConvention bool                 `koanf:"respect_underscore_convention" toml:"respect_underscore_convention"`
}

// ComplexityThresholds defines the per-metric warning thresholds. Each is
// configurable independently.
type ComplexityThresholds struct {
	CyclomaticComplexity int `koanf:"cyclomatic_complexity" toml:"cyclomatic_complexity"`
	CognitiveComplexity  int `koanf:"cognitive_complexity" toml:"cognitive_complexity"`
	MaxNestingDepth      int `koanf:"max_nesting_depth" toml:"max_nesting_depth"`
}

// CacheConfig controls the analysis result cache.
type CacheConfig struct {
	Enabled      bool  `koanf:"enabled" toml:"enabled"`
	TTLSeconds   int64 `koanf:"ttl_seconds" toml:"ttl_seconds"`
	MaxSizeBytes int64 `koanf:"max_size_bytes" toml:"max_size_bytes"`
}

// OutputConfig controls report formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			EnableDeadExports:        true,
			EnableComplexityAnalysis: true,
			ComplexityThresholds: ComplexityThresholds{
				CyclomaticComplexity: 10,
				CognitiveComplexity:  15,
				MaxNestingDepth:      4,
			},
			IgnorePatterns:              nil,
			RespectUnderscoreConvention: true,
		},
		Cache: CacheConfig{
			Enabled:      true,
			TTLSeconds:   3600,
			MaxSizeBytes: 64 << 20,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Workers: 0,
	}
}

// Load loads configuration from a file, choosing the parser by extension.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries standard config locations, falling back to defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"augur.toml",
		"augur.yaml",
		"augur.yml",
		"augur.json",
		".augur.toml",
		".augur.yaml",
		".augur.yml",
		".augur.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}

// Package config handles configuration loading for planforge.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for planforge.
type Config struct {
	Anthropic   AnthropicConfig   `mapstructure:"anthropic"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Duplicates  DuplicatesConfig  `mapstructure:"duplicates"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Audit       AuditConfig       `mapstructure:"audit"`
	Environment string            `mapstructure:"environment"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	MaxTokens  int    `mapstructure:"max_tokens"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
}

// PipelineConfig holds settings for the compilation pipeline.
type PipelineConfig struct {
	// MaxConcurrent bounds parallel contract generation.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// ConfidenceMin is the global confidence floor for routing decisions.
	ConfidenceMin float64 `mapstructure:"confidence_min"`
	// GenerationTimeout is the per-area timeout for contract generation.
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
	// MaxRetries caps retry attempts against transient provider failures.
	MaxRetries int `mapstructure:"max_retries"`
}

// DuplicatesConfig holds duplicate detection settings.
type DuplicatesConfig struct {
	// SimilarityThreshold is the cosine score above which a contract
	// is treated as a duplicate of a prior one.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	// TopK is the number of nearest matches consulted per check.
	TopK int `mapstructure:"top_k"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// AuditConfig holds audit trail persistence settings.
type AuditConfig struct {
	// Path is the SQLite database location; empty selects the default
	// under the user data directory.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.planforge.yaml in current directory or parent)
// 3. User config (~/.config/planforge/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.use_bedrock", "PLANFORGE_USE_BEDROCK")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that loaded values fall within working bounds.
func (c *Config) Validate() error {
	if c.Pipeline.MaxConcurrent < 1 {
		return fmt.Errorf("pipeline.max_concurrent must be at least 1, got %d", c.Pipeline.MaxConcurrent)
	}
	if c.Pipeline.ConfidenceMin < 0 || c.Pipeline.ConfidenceMin > 1 {
		return fmt.Errorf("pipeline.confidence_min must be in [0,1], got %v", c.Pipeline.ConfidenceMin)
	}
	if c.Duplicates.SimilarityThreshold < 0 || c.Duplicates.SimilarityThreshold > 1 {
		return fmt.Errorf("duplicates.similarity_threshold must be in [0,1], got %v", c.Duplicates.SimilarityThreshold)
	}
	if c.Duplicates.TopK < 1 {
		return fmt.Errorf("duplicates.top_k must be at least 1, got %d", c.Duplicates.TopK)
	}
	if c.Pipeline.MaxRetries < 1 {
		return fmt.Errorf("pipeline.max_retries must be at least 1, got %d", c.Pipeline.MaxRetries)
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("pipeline.max_concurrent", 5)
	v.SetDefault("pipeline.confidence_min", 0.5)
	v.SetDefault("pipeline.generation_timeout", "2m")
	v.SetDefault("pipeline.max_retries", 3)

	v.SetDefault("duplicates.similarity_threshold", 0.85)
	v.SetDefault("duplicates.top_k", 5)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "15m")

	v.SetDefault("audit.path", "")
	v.SetDefault("environment", "development")
}

// getUserConfigDir returns the XDG config directory for planforge.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "planforge")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "planforge")
	}
	return filepath.Join(home, ".config", "planforge")
}

// findProjectConfig searches for .planforge.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".planforge.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Pipeline: PipelineConfig{
			MaxConcurrent:     5,
			ConfidenceMin:     0.5,
			GenerationTimeout: 2 * time.Minute,
			MaxRetries:        3,
		},
		Duplicates: DuplicatesConfig{
			SimilarityThreshold: 0.85,
			TopK:                5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Environment: "development",
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all sigma configuration.
type Config struct {
	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Persisted frame-builder block list
	Store StoreConfig `yaml:"store"`

	// Batch translation
	Translate TranslateConfig `yaml:"translate"`

	// Optional keyword tables
	Lexicon LexiconConfig `yaml:"lexicon"`

	// Interactive frame builder
	UI UIConfig `yaml:"ui"`
}

// StoreConfig configures the block list database.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// TranslateConfig configures batch translation.
type TranslateConfig struct {
	// BatchWorkers bounds concurrent translations for file input.
	BatchWorkers int `yaml:"batch_workers"`
}

// LexiconConfig points at a YAML lexicon file.
type LexiconConfig struct {
	Path string      `yaml:"path"`
	Mode LexiconMode `yaml:"mode"` // replace, extend
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			DatabasePath: filepath.Join(".sigma", "blocks.db"),
		},
		Translate: TranslateConfig{
			BatchWorkers: 8,
		},
		Lexicon: LexiconConfig{
			Mode: LexiconExtend,
		},
		UI: *DefaultUIConfig(),
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults still honor the environment
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("SIGMA_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if level := os.Getenv("SIGMA_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if path := os.Getenv("SIGMA_LEXICON"); path != "" {
		c.Lexicon.Path = path
	}
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	if c.Store.DatabasePath == "" {
		return fmt.Errorf("store.database_path must not be empty")
	}
	if c.Translate.BatchWorkers < 1 {
		return fmt.Errorf("translate.batch_workers must be at least 1, got %d", c.Translate.BatchWorkers)
	}
	switch c.Lexicon.Mode {
	case LexiconReplace, LexiconExtend, "":
	default:
		return fmt.Errorf("invalid lexicon mode: %s (valid: replace, extend)", c.Lexicon.Mode)
	}
	if _, ok := themes[c.UI.Theme]; !ok {
		return fmt.Errorf("invalid ui theme: %s (valid: dark, light)", c.UI.Theme)
	}

	return nil
}

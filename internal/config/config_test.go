package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Logging.Level)
	}
	if cfg.Translate.BatchWorkers != 8 {
		t.Errorf("expected BatchWorkers=8, got %d", cfg.Translate.BatchWorkers)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected Theme=dark, got %s", cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SIGMA_DB", "")
	t.Setenv("SIGMA_LOG_LEVEL", "")
	t.Setenv("SIGMA_LEXICON", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "sigma.yaml")

	cfg := DefaultConfig()
	cfg.Store.DatabasePath = "/tmp/blocks.db"
	cfg.Translate.BatchWorkers = 2
	cfg.UI.Theme = "light"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	assert.Equal(t, cfg, loaded)
	assert.False(t, loaded.UI.IsDark())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("SIGMA_DB", "")
	t.Setenv("SIGMA_LOG_LEVEL", "")
	t.Setenv("SIGMA_LEXICON", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SIGMA_DB", "/tmp/test.db")
	t.Setenv("SIGMA_LOG_LEVEL", "DEBUG")
	t.Setenv("SIGMA_LEXICON", "/etc/sigma/lexicon.yaml")

	cfg := &Config{}
	cfg.applyEnvOverrides()

	assert.Equal(t, "/tmp/test.db", cfg.Store.DatabasePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/etc/sigma/lexicon.yaml", cfg.Lexicon.Path)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"empty db path", func(c *Config) { c.Store.DatabasePath = "" }},
		{"zero workers", func(c *Config) { c.Translate.BatchWorkers = 0 }},
		{"bad lexicon mode", func(c *Config) { c.Lexicon.Mode = "merge" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	c := LoggingConfig{}
	assert.True(t, c.IsCategoryEnabled("store"))

	c.Categories = map[string]bool{"store": false, "watch": true}
	assert.False(t, c.IsCategoryEnabled("store"))
	assert.True(t, c.IsCategoryEnabled("watch"))
	assert.True(t, c.IsCategoryEnabled("translate"))
}

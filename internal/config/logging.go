package config

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`                     // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty"`                   // json, console
	File       string          `yaml:"file" json:"file,omitempty"`                       // empty = stderr
	Categories map[string]bool `yaml:"categories,omitempty" json:"categories,omitempty"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

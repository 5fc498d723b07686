package config

// UIConfig holds frame builder configuration.
type UIConfig struct {
	// Theme selects the color palette: dark or light.
	Theme string `json:"theme" yaml:"theme"`

	// SortPreview starts the builder with the sorted preview visible.
	SortPreview bool `json:"sort_preview" yaml:"sort_preview"`
}

var themes = map[string]struct{}{
	"dark":  {},
	"light": {},
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:       "dark",
		SortPreview: false,
	}
}

// IsDark reports whether the dark palette is selected.
func (u UIConfig) IsDark() bool {
	return u.Theme != "light"
}

// Package ui provides the styling and the interactive frame builder for the
// sigma CLI, with light and dark palettes.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	// Light mode
	LightBackground = lipgloss.Color("#f6f5f2")
	LightForeground = lipgloss.Color("#1d2230")
	LightPrimary    = lipgloss.Color("#3a3f8f") // Indigo
	LightAccent     = lipgloss.Color("#c2772b") // Amber
	LightMuted      = lipgloss.Color("#8a8f9c")
	LightBorder     = lipgloss.Color("#d4d6dc")

	// Dark mode
	DarkBackground = lipgloss.Color("#161a24")
	DarkForeground = lipgloss.Color("#e9e9ee")
	DarkPrimary    = lipgloss.Color("#9aa5ff") // Soft indigo
	DarkAccent     = lipgloss.Color("#f0a954") // Amber
	DarkMuted      = lipgloss.Color("#6c7386")
	DarkBorder     = lipgloss.Color("#2e3546")

	// Semantic colors, shared by both modes
	Destructive = lipgloss.Color("#e5484d")
	Success     = lipgloss.Color("#46a758")
	Warning     = lipgloss.Color("#f5b400")
	Info        = lipgloss.Color("#3e9bdc")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeByName maps a configured ui.theme to a Theme. Unknown or empty names
// fall back to DetectTheme.
func ThemeByName(name string) Theme {
	switch strings.ToLower(name) {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses from the terminal background, defaulting to dark.
func DetectTheme() Theme {
	if v := os.Getenv("SIGMA_DARK_MODE"); v != "" {
		if dark, err := strconv.ParseBool(v); err == nil {
			if dark {
				return DarkTheme()
			}
			return LightTheme()
		}
	}

	// COLORFGBG is "foreground;background"; ANSI 7 and 9-15 are light.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && (bg == 7 || bg > 8) {
			return LightTheme()
		}
	}
	return DarkTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Panes
	FocusedPane lipgloss.Style
	BlurredPane lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Prompt   lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Block list
	Selected  lipgloss.Style
	Block     lipgloss.Style
	Moved     lipgloss.Style
	Duplicate lipgloss.Style

	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.Background).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(0, 1),

		FocusedPane: pane.BorderForeground(theme.Accent),
		BlurredPane: pane.BorderForeground(theme.Border),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Selected: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Block: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Moved: lipgloss.NewStyle().
			Foreground(Info),

		Duplicate: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Strikethrough(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(theme.Background).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider renders a horizontal rule of the given width
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}

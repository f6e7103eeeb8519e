// Package tui is the terminal front-end for the recipe and inventory managers.
// Each screen is a bubbletea model; all network work runs in tea.Cmds and
// comes back as messages, so models are only touched on the event loop.
package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette, taken from the mint look of the kitchen web pages.
var (
	Mint100 = lipgloss.Color("#a2ecd9")
	Mint500 = lipgloss.Color("#22d8ad")
	Mint700 = lipgloss.Color("#118b73")

	DarkForeground  = lipgloss.Color("#e9fffa")
	DarkMuted       = lipgloss.Color("#8dd7c6")
	DarkBorder      = lipgloss.Color("#2a5a50")
	LightForeground = lipgloss.Color("#0c2924")
	LightMuted      = lipgloss.Color("#5b7a73")
	LightBorder     = lipgloss.Color("#b6e6d9")

	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    Mint500,
		Accent:     Mint100,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    Mint700,
		Accent:     Mint700,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// ThemeFor resolves a configured theme name. "auto" (or anything unknown)
// looks at COLORFGBG and defaults to dark.
func ThemeFor(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	}
	// Format is usually "foreground;background"; 7 and 15 are light backgrounds.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil && (bg == 7 || bg == 15) {
			return LightTheme()
		}
	}
	return DarkTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	Header lipgloss.Style
	Footer lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Bold   lipgloss.Style
	Title  lipgloss.Style

	Selected lipgloss.Style
	LowStock lipgloss.Style
	Error    lipgloss.Style
	Total    lipgloss.Style

	Card         lipgloss.Style
	SelectedCard lipgloss.Style
	Dialog       lipgloss.Style
	Label        lipgloss.Style
	Spinner      lipgloss.Style
}

func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),
		Body:  lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted: lipgloss.NewStyle().Foreground(theme.Muted),
		Bold:  lipgloss.NewStyle().Foreground(theme.Foreground).Bold(true),
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Selected: lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		LowStock: lipgloss.NewStyle().Foreground(Destructive),
		Error:    lipgloss.NewStyle().Foreground(Destructive),
		Total:    lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		SelectedCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(1, 2),
		Label:   lipgloss.NewStyle().Foreground(theme.Muted).Width(12),
		Spinner: lipgloss.NewStyle().Foreground(Warning),
	}
}

// DefaultStyles uses the auto-detected theme.
func DefaultStyles() Styles {
	return NewStyles(ThemeFor("auto"))
}

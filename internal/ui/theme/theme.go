// Package theme holds the colors and lipgloss styles shared by every
// screen.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#6366F1") // indigo
	Secondary = lipgloss.Color("#14B8A6") // teal
	Accent    = lipgloss.Color("#F59E0B") // amber
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// levelColors follows the default bands from lowest to highest.
var levelColors = map[string]color.Color{
	"beginner":     TextDim,
	"intermediate": Secondary,
	"advanced":     Primary,
	"expert":       Accent,
}

// LevelColor returns the display color for an augmentation level. Custom
// band names use Primary.
func LevelColor(level string) color.Color {
	if c, ok := levelColors[level]; ok {
		return c
	}
	return Primary
}

var (
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Bar frames the header and footer rows.
	Bar = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Disabled   = lipgloss.NewStyle().Foreground(Border)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Warning    = lipgloss.NewStyle().Foreground(Accent)

	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)
)

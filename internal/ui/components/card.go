package components

import (
	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

// ContentWidth returns the inner width used for cards so that stacked
// sections line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border box at content width cw.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}

// LevelBadge renders an augmentation level in its band color.
func LevelBadge(level string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.LevelColor(level)).
		Padding(0, 1).
		Render(level)
}

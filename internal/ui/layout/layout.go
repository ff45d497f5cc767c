// Package layout composes the header, content and footer of a frame and
// formats the small pieces of text the header and footer show.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// Bordered bar heights.
	HeaderHeight = 3
	FooterHeight = 3

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

const appName = "AIBORG Assess"

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool   { return width < CompactWidthThreshold }
func IsCompactHeight(height int) bool { return height < CompactHeightThreshold }

// IsTooSmall reports whether the terminal cannot fit a question screen.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight is what remains of totalHeight between header and footer.
func ContentHeight(totalHeight int) int {
	return max(0, totalHeight-HeaderHeight-FooterHeight)
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal too small.\n\nAn assessment needs at least %d x %d.\nCurrent size: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Body.Align(lipgloss.Center).Render(msg))
}

// RenderHeader shows the app name on the left, title in the middle and
// status (for example the running ability estimate) on the right.
func RenderHeader(title, status string, width int) string {
	inner := max(0, width-4)
	third := inner / 3

	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
		Width(third).Render(" " + appName)
	right := lipgloss.NewStyle().Foreground(theme.Accent).
		Width(third).Align(lipgloss.Right).Render(Truncate(status, third))
	middle := lipgloss.NewStyle().Foreground(theme.Text).
		Width(inner - 2*third).Align(lipgloss.Center).Render(Truncate(title, inner-2*third))

	return theme.Bar.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, left, middle, right))
}

// RenderFooter lists key hints.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return theme.Bar.Width(width).Render(" " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, giving content whatever
// height the bars leave.
func RenderFrame(header, content, footer string, width, height int) string {
	bodyHeight := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := lipgloss.NewStyle().Width(width).Height(bodyHeight).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// AbilityStatus formats the running estimate, e.g. "Q 7  θ 0.42 ± 0.61".
func AbilityStatus(answered int, theta, se float64) string {
	return fmt.Sprintf("Q %d  θ %.2f ± %.2f", answered, theta, se)
}

// Truncate shortens s to at most width cells, ending with an ellipsis when
// cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

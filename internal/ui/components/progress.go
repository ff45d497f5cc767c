package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar with an optional label on
// the left and caption on the right.
type ProgressBar struct {
	Label   string
	Caption string
	Percent float64
	Width   int
}

// NewProgressBar creates a new progress bar. percent is clamped to [0, 1].
func NewProgressBar(label string, percent float64, caption string, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Caption: caption,
		Percent: percent,
		Width:   width,
	}
}

// AssessmentProgress is the fraction of an assessment done given answered
// questions and the estimated remaining count.
func AssessmentProgress(answered, remaining int) float64 {
	total := answered + remaining
	if total <= 0 {
		return 0
	}
	return float64(answered) / float64(total)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	caption := ""
	if p.Caption != "" {
		caption = "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(p.Caption)
	}

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(caption)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	return result + caption
}

package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/components"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

// renderQuestionView renders the active question.
func (s *SessionScreen) renderQuestionView(width int) string {
	q := s.question
	cw := components.ContentWidth(width)

	var b strings.Builder

	// Category and difficulty on the left, progress on the right.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s", q.Category))
	if q.Difficulty != "" {
		infoLeft += theme.Hint.Render(fmt.Sprintf("  %s", q.Difficulty))
	}
	progress := components.NewProgressBar("",
		components.AssessmentProgress(s.answered, s.remaining+1),
		fmt.Sprintf("Q %d of ~%d", s.answered+1, s.answered+s.remaining+1),
		min(36, width/3),
	)
	infoRight := progress.View()

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true).Render(q.Text)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.options.View(cw)))
	b.WriteString("\n")

	hint := "Press 1-9 or use arrows + Enter"
	if s.options.Multi {
		hint = "Select all that apply: Space to toggle, Enter to submit"
	}
	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Render(hint))

	if s.warning != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Warning.Width(width).Align(lipgloss.Center).Render(s.warning))
	}
	return b.String()
}

// renderFeedback shows whether the answer was correct, the correct options
// and how the estimate moved.
func (s *SessionScreen) renderFeedback(width int) string {
	res := s.feedback
	cw := components.ContentWidth(width)
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder
	b.WriteString("\n")
	if res.IsCorrect {
		b.WriteString(center(theme.Correct, "Correct"))
	} else {
		b.WriteString(center(theme.Incorrect, "Not quite"))
	}
	b.WriteString("\n\n")

	if s.question != nil {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(s.question.Text)))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.options.View(cw)))
		b.WriteString("\n")
	}

	if res.PointsEarned > 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent), fmt.Sprintf("+%d points", res.PointsEarned)))
		b.WriteString("\n")
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text),
		fmt.Sprintf("Ability %s %.2f  (± %.2f)", trendArrow(res.Trend), res.NewTheta, res.NewStandardError)))
	b.WriteString("\n\n")

	if res.Ended {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), "That's the last question."))
		b.WriteString("\n")
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Press any key to continue..."))
	return b.String()
}

func trendArrow(d scoring.Direction) string {
	switch d {
	case scoring.TrendUp:
		return "▲"
	case scoring.TrendDown:
		return "▼"
	default:
		return "●"
	}
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	line := func(color lipgloss.Style, text string) string {
		return color.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "End assessment early?"))
	b.WriteString("\n")
	b.WriteString(line(lipgloss.NewStyle().Foreground(theme.TextDim), "You will be scored on the questions answered so far."))
	b.WriteString("\n\n")
	b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, end and score"))
	b.WriteString("\n")
	b.WriteString(line(lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

func (s *SessionScreen) renderLoading(width int) string {
	text := "Selecting the next question..."
	switch {
	case s.id == "":
		text = "Preparing your assessment..."
	case s.finalizing:
		text = "Scoring your assessment..."
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n" + s.spinner.View() + " " + text)
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

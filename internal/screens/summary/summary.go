package summary

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/router"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screen"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/components"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/layout"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

// SummaryScreen shows the final result of an assessment.
type SummaryScreen struct {
	result  scoring.Result
	summary session.Summary
	warning string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a results screen. warning, if set, is shown under the title
// (for example when the result could not be saved).
func New(result scoring.Result, summary session.Summary, warning string) *SummaryScreen {
	return &SummaryScreen{result: result, summary: summary, warning: warning}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	perf := s.summary.Performance
	cw := components.ContentWidth(width)
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Assessment complete"))
	b.WriteString("\n")
	if s.warning != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(s.warning))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Headline card.
	var head strings.Builder
	head.WriteString("Level  " + components.LevelBadge(res.AugmentationLevel) + "\n\n")
	head.WriteString(fmt.Sprintf("Ability %.2f   Score %.1f/100   Confidence %.0f%%\n",
		res.AbilityScore, res.ScaledScore, res.ConfidencePercentage))
	head.WriteString(theme.Hint.Render(fmt.Sprintf("standard error %.3f after %d questions (%s)",
		res.StandardError, res.QuestionsAnswered, ReasonText(s.summary.EndReason))))
	b.WriteString(center(components.Card(head.String(), cw)))
	b.WriteString("\n\n")

	// Performance line.
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf(
		"Correct %d/%d   Accuracy %.0f%%   Points %d/%d   Best streak %d   Time %s",
		perf.Correct, perf.QuestionsAnswered, perf.Accuracy,
		perf.PointsEarned, perf.MaxPointsPossible, perf.BestStreak, FormatDuration(s.summary.Duration)))))
	b.WriteString("\n")
	if spark := Sparkline(perf.AbilityTrajectory, cw-12); spark != "" {
		b.WriteString(center(theme.Hint.Render("Ability  ") + lipgloss.NewStyle().Foreground(theme.Secondary).Render(spark)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Categories.
	if len(s.summary.Categories) > 0 {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))
		b.WriteString(center(theme.Hint.Render("Categories")))
		b.WriteString("\n")
		b.WriteString(center(divider))
		b.WriteString("\n")
		for _, c := range s.summary.Categories {
			bar := components.NewProgressBar(
				layout.Truncate(fmt.Sprintf("%-18s", c.Category), 18),
				c.Accuracy/100,
				fmt.Sprintf("%d/%d", c.CorrectCount, c.TotalAttempts),
				cw,
			)
			b.WriteString(center(bar.View()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Recommendation.
	if rec := s.summary.Recommendation; rec.Recommended != "" {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(rec.Recommended)))
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(rec.Reasoning)))
	}

	return b.String()
}

// ReasonText describes why an assessment ended.
func ReasonText(r session.EndReason) string {
	switch r {
	case session.ReasonPrecision:
		return "target precision reached"
	case session.ReasonMaxQuestions:
		return "question limit reached"
	case session.ReasonBankExhausted:
		return "no questions left"
	case session.ReasonManual:
		return "ended early"
	default:
		return string(r)
	}
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of block characters scaled between
// their min and max, keeping at most width of the latest values.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1)))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

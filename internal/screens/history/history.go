package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/router"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screen"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screens/summary"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/store"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/layout"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

// historyLimit caps how many results are loaded.
const historyLimit = 50

type historyLoadedMsg struct {
	Results []store.ResultRecord
	Err     error
}

// HistoryScreen lists finished assessments, newest first.
type HistoryScreen struct {
	results  store.ResultRepo
	records  []store.ResultRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(results store.ResultRepo) *HistoryScreen {
	return &HistoryScreen{
		results:  results,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.results
	return func() tea.Msg {
		recs, err := repo.ListResults(context.Background(), historyLimit)
		return historyLoadedMsg{Results: recs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Results
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No assessments yet. Start one from the home screen.")
	}

	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, rec := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		res := rec.Result
		line := fmt.Sprintf("%s%s  %-12s  θ %5.2f  %5.1f/100  %2d questions  %s",
			prefix,
			rec.CompletedAt.Local().Format("Jan 02, 2006 15:04"),
			res.AugmentationLevel,
			res.AbilityScore,
			res.ScaledScore,
			res.QuestionsAnswered,
			summary.ReasonText(rec.EndReason))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(center(style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(center(renderDetails(rec)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderDetails(rec store.ResultRecord) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	perf := rec.Summary.Performance

	var lines []string
	lines = append(lines, dim.Render(fmt.Sprintf("    Accuracy %.0f%%  Points %d/%d  Confidence %.0f%%  Time %s",
		perf.Accuracy, perf.PointsEarned, perf.MaxPointsPossible,
		rec.Result.ConfidencePercentage, summary.FormatDuration(rec.Summary.Duration))))
	for _, c := range rec.Summary.Categories {
		lines = append(lines, dim.Render(fmt.Sprintf("    %-20s %d/%d correct", c.Category, c.CorrectCount, c.TotalAttempts)))
	}
	if spark := summary.Sparkline(perf.AbilityTrajectory, 40); spark != "" {
		lines = append(lines, dim.Render("    Ability ")+lipgloss.NewStyle().Foreground(theme.Secondary).Render(spark))
	}
	if r := rec.Summary.Recommendation.Recommended; r != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Accent).Render("    "+r))
	}
	return strings.Join(lines, "\n")
}

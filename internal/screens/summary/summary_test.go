package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/router"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
)

func testResult() scoring.Result {
	return scoring.Result{
		AbilityScore:         1.318,
		ScaledScore:          66.5,
		AugmentationLevel:    "expert",
		ConfidencePercentage: 38.2,
		StandardError:        0.618,
		QuestionsAnswered:    5,
	}
}

func testSummary() session.Summary {
	return session.Summary{
		SessionID: "s-1",
		Status:    session.StatusEnded,
		EndReason: session.ReasonManual,
		Duration:  4*time.Minute + 5*time.Second,
		Performance: scoring.PerformanceSummary{
			QuestionsAnswered: 5,
			Correct:           5,
			Accuracy:          100,
			PointsEarned:      50,
			MaxPointsPossible: 50,
			BestStreak:        5,
			AbilityTrajectory: []float64{0.41, 0.72, 0.95, 1.14, 1.318},
		},
		Categories: []session.CategoryProgress{
			{Category: "prompting", TotalAttempts: 3, CorrectCount: 3, Accuracy: 100},
			{Category: "ethics", TotalAttempts: 2, CorrectCount: 2, Accuracy: 100},
		},
		Recommendation: scoring.Recommendation{
			CurrentLevel: "expert",
			Recommended:  "Increase to more challenging content",
			Reasoning:    "High accuracy.",
		},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testResult(), testSummary(), "")
	if s.Title() != "Results" {
		t.Errorf("Title = %q, want %q", s.Title(), "Results")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	view := New(testResult(), testSummary(), "").View(100, 40)
	for _, want := range []string{"expert", "Ability 1.32", "Confidence 38%", "prompting", "ended early", "4:05", "Increase to more challenging content"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestSummaryScreen_Warning(t *testing.T) {
	view := New(testResult(), testSummary(), "result not saved").View(100, 40)
	if !strings.Contains(view, "result not saved") {
		t.Error("expected warning in view")
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, key := range []tea.KeyPressMsg{{Code: tea.KeyEnter}, {Code: tea.KeyEscape}} {
		s := New(testResult(), testSummary(), "")
		_, cmd := s.Update(key)
		if cmd == nil {
			t.Fatalf("expected a command on %s", key.String())
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Errorf("expected PopScreenMsg on %s", key.String())
		}
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testResult(), testSummary(), "")
	if len(s.KeyHints()) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(s.KeyHints()))
	}
}

func TestSparkline(t *testing.T) {
	if Sparkline(nil, 10) != "" {
		t.Error("expected empty sparkline for no values")
	}
	got := Sparkline([]float64{0, 1, 2}, 10)
	if got != "▁▅█" {
		t.Errorf("Sparkline = %q, want %q", got, "▁▅█")
	}
	flat := Sparkline([]float64{1, 1}, 10)
	if []rune(flat)[0] != []rune(flat)[1] {
		t.Errorf("expected flat sparkline, got %q", flat)
	}
	if n := len([]rune(Sparkline([]float64{1, 2, 3, 4, 5}, 3))); n != 3 {
		t.Errorf("expected sparkline truncated to 3, got %d", n)
	}
}

func TestReasonText(t *testing.T) {
	if ReasonText(session.ReasonPrecision) != "target precision reached" {
		t.Errorf("unexpected text %q", ReasonText(session.ReasonPrecision))
	}
	if ReasonText("custom") != "custom" {
		t.Error("expected unknown reasons to pass through")
	}
}

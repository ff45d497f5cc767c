package scoring

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestLevel_DefaultBands(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		theta float64
		want  string
	}{
		{-3, "beginner"},
		{-1.01, "beginner"},
		{-1, "intermediate"},
		{-0.2, "intermediate"},
		{0, "advanced"},
		{0.99, "advanced"},
		{1, "expert"},
		{4, "expert"},
	}
	for _, tt := range tests {
		if got := e.Level(tt.theta); got != tt.want {
			t.Errorf("Level(%v) = %q, want %q", tt.theta, got, tt.want)
		}
	}
}

func TestLevel_CustomBands(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CutPoints = []float64{0}
	cfg.Levels = []string{"novice", "proficient"}
	e := NewEngine(cfg)

	if got := e.Level(-0.1); got != "novice" {
		t.Errorf("Level(-0.1) = %q, want novice", got)
	}
	if got := e.Level(0.1); got != "proficient" {
		t.Errorf("Level(0.1) = %q, want proficient", got)
	}
}

func TestNewEngine_MismatchedBandsFallBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Levels = []string{"only"}
	e := NewEngine(cfg)
	if got := e.Level(2); got != "expert" {
		t.Errorf("Level(2) = %q, want expert from default bands", got)
	}
}

func TestConfidence_MonotonicInStandardError(t *testing.T) {
	e := NewEngine(DefaultConfig())
	prev := math.Inf(1)
	for se := 0.0; se <= 2.0; se += 0.01 {
		c := e.Confidence(se)
		if c < 0 || c > 100 {
			t.Fatalf("Confidence(%v) = %v, out of range", se, c)
		}
		if c > prev {
			t.Fatalf("Confidence(%v) = %v rose above %v", se, c, prev)
		}
		prev = c
	}
	if got := e.Confidence(0); got != 100 {
		t.Errorf("Confidence(0) = %v, want 100", got)
	}
	if got := e.Confidence(1); got != 0 {
		t.Errorf("Confidence(1) = %v, want 0", got)
	}
	if got := e.Confidence(0.3); got != 70 {
		t.Errorf("Confidence(0.3) = %v, want 70", got)
	}
}

func TestFinalize_Idempotent(t *testing.T) {
	e := NewEngine(DefaultConfig())
	in := Input{Theta: 0.734, StandardError: 0.41, QuestionsAnswered: 9}

	a := e.Finalize(in)
	b := e.Finalize(in)
	if a != b {
		t.Errorf("Finalize not idempotent: %+v vs %+v", a, b)
	}
	if a.AugmentationLevel != "advanced" {
		t.Errorf("AugmentationLevel = %q, want advanced", a.AugmentationLevel)
	}
	if a.QuestionsAnswered != 9 {
		t.Errorf("QuestionsAnswered = %d, want 9", a.QuestionsAnswered)
	}
}

func TestFinalize_PriorOnly(t *testing.T) {
	e := NewEngine(DefaultConfig())
	r := e.Finalize(Input{Theta: 0, StandardError: 1})

	if r.ScaledScore != 50 {
		t.Errorf("ScaledScore = %v, want 50", r.ScaledScore)
	}
	if r.ConfidencePercentage != 0 {
		t.Errorf("ConfidencePercentage = %v, want 0", r.ConfidencePercentage)
	}
	if r.QuestionsAnswered != 0 {
		t.Errorf("QuestionsAnswered = %d, want 0", r.QuestionsAnswered)
	}
}

func TestFinalize_NonFiniteInput(t *testing.T) {
	e := NewEngine(DefaultConfig())
	r := e.Finalize(Input{Theta: math.NaN(), StandardError: math.NaN()})

	if math.IsNaN(r.AbilityScore) || math.IsNaN(r.ConfidencePercentage) || math.IsNaN(r.ScaledScore) {
		t.Errorf("Finalize produced NaN: %+v", r)
	}
}

func TestScaledScore_Bounds(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if got := e.ScaledScore(-10); got != 0 {
		t.Errorf("ScaledScore(-10) = %v, want 0", got)
	}
	if got := e.ScaledScore(10); got != 100 {
		t.Errorf("ScaledScore(10) = %v, want 100", got)
	}
	if got := e.ScaledScore(2); got != 75 {
		t.Errorf("ScaledScore(2) = %v, want 75", got)
	}
}

func TestConfigCheck(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"level count", func(c *Config) { c.Levels = c.Levels[:2] }, true},
		{"descending", func(c *Config) { c.CutPoints = []float64{1, 0, -1} }, true},
		{"duplicate", func(c *Config) { c.CutPoints = []float64{0, 0, 1} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Check()
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Response{
		{Correct: true, TimeSpent: 10 * time.Second, Points: 10, MaxPoints: 10, Difficulty: -1, ThetaAfter: 0.3},
		{Correct: true, TimeSpent: 20 * time.Second, Points: 5, MaxPoints: 5, Difficulty: 0, ThetaAfter: 0.6},
		{Correct: false, TimeSpent: 30 * time.Second, MaxPoints: 10, Difficulty: 1, ThetaAfter: 0.4},
		{Correct: true, TimeSpent: 20 * time.Second, Points: 5, MaxPoints: 5, Difficulty: 0.5, ThetaAfter: 0.5},
	})

	if s.Accuracy != 75 {
		t.Errorf("Accuracy = %v, want 75", s.Accuracy)
	}
	if s.AverageTime != 20*time.Second {
		t.Errorf("AverageTime = %v, want 20s", s.AverageTime)
	}
	if s.PointsEarned != 20 || s.MaxPointsPossible != 30 {
		t.Errorf("points = %d/%d, want 20/30", s.PointsEarned, s.MaxPointsPossible)
	}
	if s.ScorePercentage != 66.7 {
		t.Errorf("ScorePercentage = %v, want 66.7", s.ScorePercentage)
	}
	if s.BestStreak != 2 {
		t.Errorf("BestStreak = %d, want 2", s.BestStreak)
	}
	if len(s.AbilityTrajectory) != 4 || s.AbilityTrajectory[1] != 0.6 {
		t.Errorf("AbilityTrajectory = %v", s.AbilityTrajectory)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Accuracy != 0 || s.AverageTime != 0 || s.ScorePercentage != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero values", s)
	}
}

func TestRecommend(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		name     string
		theta    float64
		accuracy float64
		want     string
		reason   string
	}{
		{"strong", 1.2, 90, "Increase to more challenging content", "accuracy"},
		{"weak", -1.1, 40, "Reduce to foundational content", "basics"},
		{"good", 0.2, 75, "Maintain current level with slight increase", "progression"},
		{"average", 0.1, 60, "Maintain current level", "appropriate"},
		{"high accuracy low theta", 0.2, 95, "Maintain current level", "appropriate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.Recommend(tt.theta, tt.accuracy)
			if r.Recommended != tt.want {
				t.Errorf("Recommended = %q, want %q", r.Recommended, tt.want)
			}
			if !strings.Contains(r.Reasoning, tt.reason) {
				t.Errorf("Reasoning %q does not mention %q", r.Reasoning, tt.reason)
			}
			if r.CurrentLevel != e.Level(tt.theta) {
				t.Errorf("CurrentLevel = %q, want %q", r.CurrentLevel, e.Level(tt.theta))
			}
		})
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		before, after float64
		want          Direction
	}{
		{0, 0.5, TrendUp},
		{0, 0.2, TrendStable},
		{0, -0.1, TrendStable},
		{0.4, 0.1, TrendDown},
	}
	for _, tt := range tests {
		if got := Trend(tt.before, tt.after, 0.2); got != tt.want {
			t.Errorf("Trend(%v, %v) = %q, want %q", tt.before, tt.after, got, tt.want)
		}
	}
}

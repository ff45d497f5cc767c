package scoring

import (
	"fmt"
	"time"
)

// Response is one answered item as seen by the summary.
type Response struct {
	Correct    bool
	TimeSpent  time.Duration
	Points     int
	MaxPoints  int
	Difficulty float64
	ThetaAfter float64
}

// PerformanceSummary describes how a session went, for completion screens
// and stored results.
type PerformanceSummary struct {
	QuestionsAnswered     int           `json:"questions_answered"`
	Correct               int           `json:"correct"`
	Accuracy              float64       `json:"accuracy"`
	TotalTime             time.Duration `json:"total_time"`
	AverageTime           time.Duration `json:"average_time"`
	PointsEarned          int           `json:"points_earned"`
	MaxPointsPossible     int           `json:"max_points_possible"`
	ScorePercentage       float64       `json:"score_percentage"`
	BestStreak            int           `json:"best_streak"`
	DifficultyProgression []float64     `json:"difficulty_progression"`
	AbilityTrajectory     []float64     `json:"ability_trajectory"`
}

// Summarize aggregates responses in answer order.
func Summarize(responses []Response) PerformanceSummary {
	s := PerformanceSummary{
		QuestionsAnswered:     len(responses),
		DifficultyProgression: make([]float64, 0, len(responses)),
		AbilityTrajectory:     make([]float64, 0, len(responses)),
	}

	streak := 0
	for _, r := range responses {
		if r.Correct {
			s.Correct++
			streak++
			if streak > s.BestStreak {
				s.BestStreak = streak
			}
		} else {
			streak = 0
		}
		s.TotalTime += r.TimeSpent
		s.PointsEarned += r.Points
		s.MaxPointsPossible += r.MaxPoints
		s.DifficultyProgression = append(s.DifficultyProgression, r.Difficulty)
		s.AbilityTrajectory = append(s.AbilityTrajectory, r.ThetaAfter)
	}

	if s.QuestionsAnswered > 0 {
		s.Accuracy = round(100*float64(s.Correct)/float64(s.QuestionsAnswered), 1)
		s.AverageTime = s.TotalTime / time.Duration(s.QuestionsAnswered)
	}
	if s.MaxPointsPossible > 0 {
		s.ScorePercentage = round(100*float64(s.PointsEarned)/float64(s.MaxPointsPossible), 1)
	}
	return s
}

// Recommendation suggests how to adjust content difficulty next.
type Recommendation struct {
	CurrentLevel string `json:"current_level"`
	Recommended  string `json:"recommended_level"`
	Reasoning    string `json:"reasoning"`
}

// Recommend suggests a difficulty adjustment from the final ability and
// accuracy (0-100).
func (e *Engine) Recommend(theta, accuracy float64) Recommendation {
	r := Recommendation{CurrentLevel: e.Level(theta)}

	switch {
	case accuracy >= 85 && theta > 0.5:
		r.Recommended = "Increase to more challenging content"
		r.Reasoning = fmt.Sprintf("High accuracy (%.1f%%) and strong ability estimate (%.2f) indicate readiness for harder material.", accuracy, theta)
	case accuracy <= 50 && theta < -0.5:
		r.Recommended = "Reduce to foundational content"
		r.Reasoning = fmt.Sprintf("Low accuracy (%.1f%%) and lower ability estimate (%.2f) suggest a review of the basics.", accuracy, theta)
	case accuracy >= 70 && accuracy < 85:
		r.Recommended = "Maintain current level with slight increase"
		r.Reasoning = fmt.Sprintf("Good performance (%.1f%%) suggests readiness for gradual progression.", accuracy)
	default:
		r.Recommended = "Maintain current level"
		r.Reasoning = "Performance is appropriate for the current difficulty level."
	}
	return r
}

// Direction is the short-term movement of the ability estimate.
type Direction string

const (
	TrendUp     Direction = "up"
	TrendDown   Direction = "down"
	TrendStable Direction = "stable"
)

// Trend compares two consecutive estimates.
func Trend(before, after, threshold float64) Direction {
	switch {
	case after > before+threshold:
		return TrendUp
	case after < before-threshold:
		return TrendDown
	default:
		return TrendStable
	}
}

package session

import (
	"time"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
)

// Summary holds the data displayed on the completion screen.
type Summary struct {
	SessionID      string                     `json:"session_id"`
	Status         Status                     `json:"status"`
	EndReason      EndReason                  `json:"end_reason,omitempty"`
	Duration       time.Duration              `json:"duration"`
	Performance    scoring.PerformanceSummary `json:"performance"`
	Categories     []CategoryProgress         `json:"categories"`
	Recommendation scoring.Recommendation     `json:"recommendation"`
}

// buildSummary must be called with s.mu held.
func buildSummary(s *Session) Summary {
	responses := make([]scoring.Response, len(s.ability.History))
	for i, h := range s.ability.History {
		responses[i] = scoring.Response{
			Correct:    h.Correct,
			TimeSpent:  h.TimeSpent,
			Points:     h.PointsEarned,
			MaxPoints:  h.MaxPoints,
			Difficulty: h.Difficulty,
			ThetaAfter: h.ThetaAfter,
		}
	}
	perf := scoring.Summarize(responses)

	end := s.endedAt
	if end.IsZero() {
		end = s.now()
	}

	return Summary{
		SessionID:      s.id,
		Status:         s.status,
		EndReason:      s.endReason,
		Duration:       end.Sub(s.startedAt),
		Performance:    perf,
		Categories:     categoryProgress(s.ability.History),
		Recommendation: s.scorer.Recommend(s.ability.Theta, perf.Accuracy),
	}
}

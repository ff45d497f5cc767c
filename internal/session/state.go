package session

import (
	"time"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/irt"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
)

// Status is the lifecycle state of a session. Active -> Ended is the only
// transition.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// HistoryEntry is one answered item. History is append-only.
type HistoryEntry struct {
	QuestionID     string  `json:"question_id"`
	Category       string  `json:"category"`
	Difficulty     float64 `json:"irt_difficulty"`
	Discrimination float64 `json:"discrimination"`
	Guessing       float64 `json:"guessing"`
	Correct        bool    `json:"correct"`
	ThetaBefore    float64 `json:"theta_before"`
	ThetaAfter     float64 `json:"theta_after"`

	// StandardErrorAfter and Information record the estimator step for
	// audits and the remaining-questions estimate.
	StandardErrorAfter float64 `json:"standard_error_after"`
	Information        float64 `json:"information"`

	SelectedOptionIDs []string      `json:"selected_option_ids"`
	PointsEarned      int           `json:"points_earned"`
	MaxPoints         int           `json:"max_points"`
	TimeSpent         time.Duration `json:"time_spent"`
	AnsweredAt        time.Time     `json:"answered_at"`
}

// AbilityState is the current estimate and how it got there.
type AbilityState struct {
	Theta         float64        `json:"theta"`
	StandardError float64        `json:"standard_error"`
	History       []HistoryEntry `json:"history"`
}

// Snapshot is a serializable copy of a session, sufficient to resume it.
type Snapshot struct {
	SessionID         string         `json:"session_id"`
	Theta             float64        `json:"theta"`
	StandardError     float64        `json:"standard_error"`
	QuestionsAnswered int            `json:"questions_answered"`
	AskedQuestionIDs  []string       `json:"asked_question_ids"`
	Status            Status         `json:"status"`
	EndReason         EndReason      `json:"end_reason,omitempty"`
	PendingQuestionID string         `json:"pending_question_id,omitempty"`
	History           []HistoryEntry `json:"history"`
	Seed              uint64         `json:"seed"`
	StartedAt         time.Time      `json:"started_at"`
	EndedAt           time.Time      `json:"ended_at,omitzero"`
}

// AnswerResult is returned by RecordAnswer.
type AnswerResult struct {
	IsCorrect        bool
	NewTheta         float64
	NewStandardError float64
	PointsEarned     int
	Trend            scoring.Direction
	Ended            bool
	EndReason        EndReason
	Entry            HistoryEntry

	// Issues lists item parameters replaced with defaults for this update.
	Issues []irt.Issue
}

package store

import (
	"context"
	"time"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SnapshotInfo is the listing view of a stored session.
type SnapshotInfo struct {
	SessionID         string
	Status            session.Status
	EndReason         session.EndReason
	Theta             float64
	StandardError     float64
	QuestionsAnswered int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SnapshotRepo manages resumable session state. There is one row per
// session, overwritten on every transition.
type SnapshotRepo interface {
	// Save creates or replaces the snapshot for snap.SessionID.
	Save(ctx context.Context, snap session.Snapshot) error

	// Get returns the snapshot for id, or nil if none exists.
	Get(ctx context.Context, id string) (*session.Snapshot, error)

	// List returns the most recently updated sessions first. An empty
	// status lists all sessions.
	List(ctx context.Context, status session.Status, limit int) ([]SnapshotInfo, error)

	// Delete removes the snapshot for id. Deleting a missing id is not an
	// error.
	Delete(ctx context.Context, id string) error

	// Prune deletes ended sessions last updated before cutoff and returns
	// how many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)
}

// ResultRecord is a finalized assessment.
type ResultRecord struct {
	SessionID   string
	Result      scoring.Result
	EndReason   session.EndReason
	Summary     session.Summary
	CompletedAt time.Time
}

// ResultRepo stores final results. A session has at most one result.
type ResultRepo interface {
	// SaveResult writes rec, replacing any earlier result for the session.
	SaveResult(ctx context.Context, rec ResultRecord) error

	// GetResult returns the result for a session, or nil if none exists.
	GetResult(ctx context.Context, sessionID string) (*ResultRecord, error)

	// ListResults returns the most recent results first.
	ListResults(ctx context.Context, limit int) ([]ResultRecord, error)
}

// AnswerEventData captures one scored response.
type AnswerEventData struct {
	SessionID     string
	QuestionID    string
	Category      string
	Correct       bool
	Selected      []string
	ThetaBefore   float64
	ThetaAfter    float64
	StandardError float64
	PointsEarned  int
	TimeSpent     time.Duration
}

// AnswerEvent is a stored AnswerEventData with its sequence and timestamp.
type AnswerEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// Engagement event types.
const (
	EventAssessmentStarted   = "assessment_started"
	EventQuestionAnswered    = "question_answered"
	EventAssessmentCompleted = "assessment_completed"
)

// EngagementEventData captures a lifecycle event.
type EngagementEventData struct {
	SessionID string
	EventType string
	Payload   map[string]any
}

// EngagementEvent is a stored EngagementEventData.
type EngagementEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	EngagementEventData
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendAnswerEvent records a scored response.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// AppendEngagementEvent records a lifecycle event.
	AppendEngagementEvent(ctx context.Context, data EngagementEventData) error

	// AnswerEvents returns a session's answers in sequence order.
	AnswerEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]AnswerEvent, error)

	// EngagementEvents returns a session's lifecycle events in sequence
	// order. An empty sessionID returns events for all sessions.
	EngagementEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]EngagementEvent, error)
}

// QuestionRepo stores the question bank.
type QuestionRepo interface {
	// ImportQuestions inserts or replaces questions by id.
	ImportQuestions(ctx context.Context, qs []bank.Question) (int, error)

	// ListQuestions returns questions ordered by id. An empty category
	// lists every question.
	ListQuestions(ctx context.Context, category string) ([]bank.Question, error)

	// CountByCategory returns the number of questions per category.
	CountByCategory(ctx context.Context) (map[string]int, error)
}

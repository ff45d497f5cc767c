package session

import (
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	sess "github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
)

// sessionInitMsg is sent once the assessment has been started or resumed.
type sessionInitMsg struct {
	ID  string
	Err error
}

// questionReadyMsg carries the next question. A nil Question with no error
// means the assessment should end.
type questionReadyMsg struct {
	Question  *bank.Question
	Ability   sess.AbilityState
	Answered  int
	Remaining int
	Err       error
}

// answerRecordedMsg is sent after RecordAnswer returns.
type answerRecordedMsg struct {
	Result sess.AnswerResult
	Err    error
}

// feedbackDoneMsg is sent when the learner dismisses the feedback view.
type feedbackDoneMsg struct{}

// sessionEndMsg starts the finalize flow.
type sessionEndMsg struct{}

// finalizedMsg carries the scored result.
type finalizedMsg struct {
	Result  scoring.Result
	Summary sess.Summary
	Err     error
}

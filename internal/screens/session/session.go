package session

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/assessment"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/router"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screen"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screens/summary"
	sess "github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/components"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/layout"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

// Engine is the part of assessment.Service the question screen drives.
type Engine interface {
	Start(ctx context.Context) (string, error)
	Resume(ctx context.Context, id string) error
	ShouldEnd(ctx context.Context, id string) (bool, error)
	NextQuestion(ctx context.Context, id string) (*bank.Question, error)
	RecordAnswer(ctx context.Context, id, questionID string, selected []string, timeSpent time.Duration) (sess.AnswerResult, error)
	Finalize(ctx context.Context, id string) (scoring.Result, error)
	Summary(ctx context.Context, id string) (sess.Summary, error)
	EstimatedQuestionsRemaining(ctx context.Context, id string) (int, error)
	Session(ctx context.Context, id string) (*sess.Session, error)
}

var _ Engine = (*assessment.Service)(nil)

// SessionScreen runs one adaptive assessment: it asks questions until the
// stopping rule fires or the learner quits, then hands over to the results
// screen.
type SessionScreen struct {
	engine   Engine
	resumeID string

	id        string
	question  *bank.Question
	options   components.OptionList
	started   time.Time
	ability   sess.AbilityState
	answered  int
	remaining int

	feedback     *sess.AnswerResult
	quitConfirm  bool
	finalizing   bool
	warning      string
	errMsg       string
	spinner      spinner.Model
	pendingReply bool
	now          func() time.Time
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)

// New creates a question screen. A non-empty resumeID continues a stored
// assessment instead of starting a new one.
func New(engine Engine, resumeID string) *SessionScreen {
	return &SessionScreen{
		engine:   engine,
		resumeID: resumeID,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
		now: time.Now,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.initSession())
}

func (s *SessionScreen) Title() string {
	return "Assessment"
}

// HeaderStatus shows the running ability estimate once a question has been
// asked.
func (s *SessionScreen) HeaderStatus() string {
	if s.id == "" {
		return ""
	}
	return layout.AbilityStatus(s.answered, s.ability.Theta, s.ability.StandardError)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End assessment"},
			{Key: "N", Description: "Keep going"},
		}
	case s.feedback != nil:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.question != nil && s.options.Multi:
		return []layout.KeyHint{
			{Key: "Space", Description: "Toggle"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	case s.question != nil:
		return []layout.KeyHint{
			{Key: "1-9", Description: "Answer"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return nil
}

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.quitConfirm:
		return renderQuitConfirm(width)
	case s.feedback != nil:
		return s.renderFeedback(width)
	case s.question == nil || s.finalizing:
		return s.renderLoading(width)
	}
	return s.renderQuestionView(width)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionInitMsg:
		return s.handleInit(msg)
	case questionReadyMsg:
		return s.handleQuestionReady(msg)
	case answerRecordedMsg:
		return s.handleAnswerRecorded(msg)
	case feedbackDoneMsg:
		return s.handleFeedbackDone()
	case sessionEndMsg:
		return s.handleSessionEnd()
	case finalizedMsg:
		return s.handleFinalized(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) initSession() tea.Cmd {
	engine, resumeID := s.engine, s.resumeID
	return func() tea.Msg {
		ctx := context.Background()
		if resumeID != "" {
			if err := engine.Resume(ctx, resumeID); err != nil {
				return sessionInitMsg{Err: err}
			}
			return sessionInitMsg{ID: resumeID}
		}
		id, err := engine.Start(ctx)
		if id == "" {
			return sessionInitMsg{Err: err}
		}
		// A persistence error here leaves a usable in-memory session.
		return sessionInitMsg{ID: id, Err: err}
	}
}

func (s *SessionScreen) handleInit(msg sessionInitMsg) (screen.Screen, tea.Cmd) {
	if msg.ID == "" {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.id = msg.ID
	s.noteErr(msg.Err)
	return s, s.nextQuestion()
}

// nextQuestion checks the stopping rule and fetches the next item.
func (s *SessionScreen) nextQuestion() tea.Cmd {
	engine, id := s.engine, s.id
	return func() tea.Msg {
		ctx := context.Background()
		end, err := engine.ShouldEnd(ctx, id)
		if err != nil {
			return questionReadyMsg{Err: err}
		}
		if end {
			return sessionEndMsg{}
		}
		q, qerr := engine.NextQuestion(ctx, id)
		if q == nil {
			if qerr != nil {
				return questionReadyMsg{Err: qerr}
			}
			return sessionEndMsg{}
		}
		msg := questionReadyMsg{Question: q, Err: qerr}
		if live, err := engine.Session(ctx, id); err == nil {
			msg.Ability = live.Ability()
			msg.Answered = live.QuestionsAnswered()
		}
		msg.Remaining, _ = engine.EstimatedQuestionsRemaining(ctx, id)
		return msg
	}
}

func (s *SessionScreen) handleQuestionReady(msg questionReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Question == nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.noteErr(msg.Err)
	s.question = msg.Question
	s.options = components.NewOptionList(*msg.Question)
	s.ability = msg.Ability
	s.answered = msg.Answered
	s.remaining = msg.Remaining
	s.started = s.now()
	s.pendingReply = false
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.quitConfirm = false
			return s, func() tea.Msg { return sessionEndMsg{} }
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	if s.feedback != nil {
		return s, func() tea.Msg { return feedbackDoneMsg{} }
	}

	if s.question == nil || s.pendingReply || s.finalizing {
		return s, nil
	}

	if key == "esc" {
		s.quitConfirm = true
		return s, nil
	}

	var cmd tea.Cmd
	s.options, cmd = s.options.Update(msg)
	if s.options.Submitted {
		return s, s.submitAnswer()
	}
	return s, cmd
}

func (s *SessionScreen) submitAnswer() tea.Cmd {
	s.pendingReply = true
	engine, id, qid := s.engine, s.id, s.question.ID
	selected := s.options.SelectedIDs()
	spent := s.now().Sub(s.started)
	return func() tea.Msg {
		res, err := engine.RecordAnswer(context.Background(), id, qid, selected, spent)
		return answerRecordedMsg{Result: res, Err: err}
	}
}

func (s *SessionScreen) handleAnswerRecorded(msg answerRecordedMsg) (screen.Screen, tea.Cmd) {
	s.pendingReply = false
	if msg.Err != nil && !errors.Is(msg.Err, assessment.ErrPersist) {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.noteErr(msg.Err)
	res := msg.Result
	s.feedback = &res
	s.options.Reveal = true
	s.answered++
	s.ability.Theta = res.NewTheta
	s.ability.StandardError = res.NewStandardError
	return s, nil
}

func (s *SessionScreen) handleFeedbackDone() (screen.Screen, tea.Cmd) {
	if s.feedback == nil {
		return s, nil
	}
	ended := s.feedback.Ended
	s.feedback = nil
	s.question = nil
	if ended {
		return s, func() tea.Msg { return sessionEndMsg{} }
	}
	return s, s.nextQuestion()
}

func (s *SessionScreen) handleSessionEnd() (screen.Screen, tea.Cmd) {
	if s.id == "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.finalizing {
		return s, nil
	}
	s.finalizing = true
	engine, id := s.engine, s.id
	return s, func() tea.Msg {
		ctx := context.Background()
		res, err := engine.Finalize(ctx, id)
		if err != nil && !errors.Is(err, assessment.ErrPersist) {
			return finalizedMsg{Err: err}
		}
		sum, serr := engine.Summary(ctx, id)
		return finalizedMsg{Result: res, Summary: sum, Err: errors.Join(err, serr)}
	}
}

func (s *SessionScreen) handleFinalized(msg finalizedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil && !errors.Is(msg.Err, assessment.ErrPersist) {
		s.finalizing = false
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	warning := ""
	if msg.Err != nil {
		warning = "The result could not be saved."
	}
	results := summary.New(msg.Result, msg.Summary, warning)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: results} }
}

// noteErr keeps a persistence failure visible without stopping the
// assessment.
func (s *SessionScreen) noteErr(err error) {
	if err != nil {
		s.warning = "Progress is not being saved."
	}
}

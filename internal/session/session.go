package session

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/irt"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/logger"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/selector"
)

// Session is a single adaptive assessment for one respondent.
//
// Methods are safe to call from multiple goroutines. NextQuestion and
// RecordAnswer are single-flight: an overlapping call returns ErrBusy
// without touching state.
type Session struct {
	id        string
	cfg       Config
	bank      bank.Bank
	estimator *irt.Estimator
	scorer    *scoring.Engine
	log       *logger.Logger
	now       func() time.Time

	inFlight atomic.Bool

	mu sync.Mutex
	// selector owns the session's random source and is only used while
	// inFlight is held.
	selector       *selector.Selector
	seed           uint64
	ability        AbilityState
	asked          map[string]bool
	askedOrder     []string
	categoryCounts map[string]int
	knownCats      map[string]bool
	status         Status
	endReason      EndReason
	pending        *bank.Question
	pendingAt      time.Time
	startedAt      time.Time
	endedAt        time.Time
}

// Option customises a session.
type Option func(*Session)

// WithLogger sets the logger for data-quality warnings.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSeed overrides the config seed for this session.
func WithSeed(seed uint64) Option {
	return func(s *Session) { s.seed = seed }
}

// New starts a session: status Active, ability at the prior, nothing
// answered.
func New(id string, cfg Config, b bank.Bank, opts ...Option) *Session {
	s := newSession(id, cfg, b, opts...)
	s.ability.Theta, s.ability.StandardError = s.estimator.Prior()
	s.status = StatusActive
	s.startedAt = s.now()
	s.selector = selector.New(cfg.Selector, cfg.Estimator, newRand(s.seed))
	s.log.Debug("session started", "session_id", id, "seed", s.seed)
	return s
}

func newSession(id string, cfg Config, b bank.Bank, opts ...Option) *Session {
	s := &Session{
		id:             id,
		cfg:            cfg,
		bank:           b,
		estimator:      irt.NewEstimator(cfg.Estimator),
		scorer:         scoring.NewEngine(cfg.Scoring),
		log:            logger.Nop(),
		now:            time.Now,
		seed:           cfg.Seed,
		asked:          make(map[string]bool),
		categoryCounts: make(map[string]int),
		knownCats:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == 0 {
		s.seed = rand.Uint64()
	}
	s.log = s.log.With("session_id", id)
	return s
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Status returns the current status and, once ended, the reason.
func (s *Session) Status() (Status, EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.endReason
}

// Ability returns a copy of the ability state.
func (s *Session) Ability() AbilityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abilityCopy()
}

// QuestionsAnswered returns the number of recorded answers.
func (s *Session) QuestionsAnswered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ability.History)
}

// Pending returns the question awaiting an answer, if any.
func (s *Session) Pending() *bank.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	q := *s.pending
	return &q
}

// NextQuestion returns the next item to administer. While a question is
// pending it returns that question again. When no eligible item remains
// the session ends with ReasonBankExhausted and (nil, nil) is returned.
func (s *Session) NextQuestion(ctx context.Context) (*bank.Question, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	if s.status != StatusActive {
		err := &TransitionError{Op: "next_question", Status: s.status}
		s.mu.Unlock()
		return nil, err
	}
	if s.pending != nil {
		q := *s.pending
		s.mu.Unlock()
		return &q, nil
	}
	exclude := copySet(s.asked)
	counts := copyCounts(s.categoryCounts)
	hint := s.categoryHint()
	theta := s.ability.Theta
	s.mu.Unlock()

	candidates, err := s.bank.FetchCandidates(ctx, exclude, hint)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	pick := s.selector.SelectNext(selector.Request{
		Theta:          theta,
		Asked:          exclude,
		Candidates:     candidates,
		CategoryCounts: counts,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range candidates {
		s.knownCats[c.Category] = true
	}
	if s.status != StatusActive {
		// Finalized while the bank was being queried.
		return nil, &TransitionError{Op: "next_question", Status: s.status}
	}
	if pick == nil {
		s.end(ReasonBankExhausted)
		return nil, nil
	}
	if len(pick.Issues) > 0 {
		s.log.Warn("degenerate item parameters",
			"question_id", pick.Question.ID,
			"issues", issueStrings(pick.Issues))
	}

	q := pick.Question
	s.pending = &q
	s.pendingAt = s.now()
	out := q
	return &out, nil
}

// RecordAnswer scores the pending question and updates the estimate. A
// non-positive timeSpent is measured from when the question was issued.
// Answering anything other than the pending question, or answering an
// ended session, returns a *TransitionError and changes nothing.
func (s *Session) RecordAnswer(ctx context.Context, questionID string, selectedOptionIDs []string, timeSpent time.Duration) (AnswerResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return AnswerResult{}, ErrBusy
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	if err := s.checkAnswerable(questionID); err != nil {
		s.mu.Unlock()
		return AnswerResult{}, err
	}

	q := *s.pending
	correct := q.IsCorrectSelection(selectedOptionIDs)
	before := s.ability.Theta

	upd := s.estimator.Update(s.ability.Theta, s.ability.StandardError, q.Params(), correct)
	if upd.Recovered {
		s.log.Warn("estimator recovered from non-finite values", "question_id", q.ID)
	}
	if timeSpent <= 0 && !s.pendingAt.IsZero() {
		timeSpent = s.now().Sub(s.pendingAt)
	}

	entry := HistoryEntry{
		QuestionID:         q.ID,
		Category:           q.Category,
		Difficulty:         upd.Params.Difficulty,
		Discrimination:     upd.Params.Discrimination,
		Guessing:           upd.Params.Guessing,
		Correct:            correct,
		ThetaBefore:        before,
		ThetaAfter:         upd.Theta,
		StandardErrorAfter: upd.StandardError,
		Information:        upd.Information,
		SelectedOptionIDs:  append([]string(nil), selectedOptionIDs...),
		PointsEarned:       q.PointsFor(selectedOptionIDs),
		MaxPoints:          q.MaxPoints(),
		TimeSpent:          timeSpent,
		AnsweredAt:         s.now(),
	}

	s.ability.Theta = upd.Theta
	s.ability.StandardError = upd.StandardError
	s.ability.History = append(s.ability.History, entry)
	s.asked[q.ID] = true
	s.askedOrder = append(s.askedOrder, q.ID)
	s.categoryCounts[q.Category]++
	s.knownCats[q.Category] = true
	s.pending = nil

	answered := len(s.ability.History)
	decision := Evaluate(StopInput{
		QuestionsAnswered: answered,
		StandardError:     s.ability.StandardError,
		BankAvailable:     true,
	}, s.cfg.Stopping)
	exclude := copySet(s.asked)
	s.mu.Unlock()

	// Bank availability only matters when nothing else ends the session.
	if !decision.End {
		available, err := s.bankAvailable(ctx, exclude)
		if err != nil {
			s.log.Warn("bank availability check failed", "error", err)
			available = true
		}
		decision = Evaluate(StopInput{
			QuestionsAnswered: answered,
			StandardError:     upd.StandardError,
			BankAvailable:     available,
		}, s.cfg.Stopping)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if decision.End && s.status == StatusActive {
		s.end(decision.Reason)
	}

	return AnswerResult{
		IsCorrect:        correct,
		NewTheta:         upd.Theta,
		NewStandardError: upd.StandardError,
		PointsEarned:     entry.PointsEarned,
		Trend:            scoring.Trend(before, upd.Theta, s.cfg.Scoring.TrendThreshold),
		Ended:            s.status == StatusEnded,
		EndReason:        s.endReason,
		Entry:            entry,
		Issues:           upd.Issues,
	}, nil
}

func (s *Session) checkAnswerable(questionID string) error {
	if s.status != StatusActive {
		return &TransitionError{Op: "record_answer", Status: s.status, Got: questionID}
	}
	if s.pending == nil || s.pending.ID != questionID {
		te := &TransitionError{Op: "record_answer", Status: s.status, Got: questionID}
		if s.pending != nil {
			te.Pending = s.pending.ID
		}
		return te
	}
	return nil
}

// ShouldEnd applies the stopping rule to the current state without
// changing it.
func (s *Session) ShouldEnd(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.status == StatusEnded {
		s.mu.Unlock()
		return true, nil
	}
	in := StopInput{
		QuestionsAnswered: len(s.ability.History),
		StandardError:     s.ability.StandardError,
		BankAvailable:     true,
	}
	exclude := copySet(s.asked)
	hasPending := s.pending != nil
	s.mu.Unlock()

	if d := Evaluate(in, s.cfg.Stopping); d.End {
		return true, nil
	}
	if hasPending {
		return false, nil
	}
	available, err := s.bankAvailable(ctx, exclude)
	if err != nil {
		return false, fmt.Errorf("check bank: %w", err)
	}
	in.BankAvailable = available
	return Evaluate(in, s.cfg.Stopping).End, nil
}

// Finalize ends the session, if it is still active, and scores it. It is
// valid in any state and returns the same result every time it is called.
func (s *Session) Finalize() scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusActive {
		s.end(ReasonManual)
	}
	return s.scorer.Finalize(scoring.Input{
		Theta:             s.ability.Theta,
		StandardError:     s.ability.StandardError,
		QuestionsAnswered: len(s.ability.History),
	})
}

// EstimatedQuestionsRemaining is an advisory count for progress displays.
// It never affects the stopping rule. The raw estimate is
// ceil((SE - PrecisionTarget) / averageInformation). Rather than a plain
// max(0, raw) it is clamped to [MinQuestions-answered, MaxQuestions-answered]
// because a session cannot stop before the minimum or run past the maximum.
// An ended session reports 0.
func (s *Session) EstimatedQuestionsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusEnded {
		return 0
	}

	answered := len(s.ability.History)
	stop := s.cfg.Stopping

	avg := 0.0
	for _, h := range s.ability.History {
		avg += h.Information
	}
	if answered > 0 {
		avg /= float64(answered)
	}
	if avg <= 0 || math.IsNaN(avg) {
		// A perfectly targeted item with default parameters.
		est := s.cfg.Estimator
		avg = irt.Information(0, irt.Params{Discrimination: est.DefaultDiscrimination, Guessing: est.DefaultGuessing})
	}

	remaining := 0
	if gap := s.ability.StandardError - stop.PrecisionTarget; gap > 0 && avg > 0 {
		remaining = int(math.Ceil(gap / avg))
	}

	lo := max(0, stop.MinQuestions-answered)
	hi := max(0, stop.MaxQuestions-answered)
	return min(max(remaining, lo), hi)
}

// Summary reports performance so far.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildSummary(s)
}

// Snapshot returns a serializable copy of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:         s.id,
		Theta:             s.ability.Theta,
		StandardError:     s.ability.StandardError,
		QuestionsAnswered: len(s.ability.History),
		AskedQuestionIDs:  append([]string(nil), s.askedOrder...),
		Status:            s.status,
		EndReason:         s.endReason,
		History:           s.abilityCopy().History,
		Seed:              s.seed,
		StartedAt:         s.startedAt,
		EndedAt:           s.endedAt,
	}
	if s.pending != nil {
		snap.PendingQuestionID = s.pending.ID
	}
	return snap
}

// Restore rebuilds a session from a snapshot. A pending question is looked
// up in the bank again; if it is gone the session simply picks a new one.
func Restore(ctx context.Context, snap Snapshot, cfg Config, b bank.Bank, opts ...Option) (*Session, error) {
	if err := checkSnapshot(snap); err != nil {
		return nil, err
	}

	s := newSession(snap.SessionID, cfg, b, append([]Option{WithSeed(snap.Seed)}, opts...)...)
	s.ability = AbilityState{
		Theta:         snap.Theta,
		StandardError: snap.StandardError,
		History:       append([]HistoryEntry(nil), snap.History...),
	}
	for _, h := range snap.History {
		s.asked[h.QuestionID] = true
		s.askedOrder = append(s.askedOrder, h.QuestionID)
		s.categoryCounts[h.Category]++
		s.knownCats[h.Category] = true
	}
	s.status = snap.Status
	s.endReason = snap.EndReason
	s.startedAt = snap.StartedAt
	s.endedAt = snap.EndedAt

	// Reseed past the answers already drawn so a resumed session does not
	// replay the tie-breaks it started with.
	s.selector = selector.New(cfg.Selector, cfg.Estimator, newRand(s.seed+uint64(len(snap.History))))

	if snap.PendingQuestionID != "" && s.status == StatusActive {
		candidates, err := b.FetchCandidates(ctx, copySet(s.asked), "")
		if err != nil {
			return nil, fmt.Errorf("restore pending question: %w", err)
		}
		for _, c := range candidates {
			if c.ID == snap.PendingQuestionID {
				q := c
				s.pending = &q
				s.pendingAt = s.now()
				break
			}
		}
		if s.pending == nil {
			s.log.Warn("pending question no longer in bank", "question_id", snap.PendingQuestionID)
		}
	}
	return s, nil
}

func checkSnapshot(snap Snapshot) error {
	switch {
	case snap.SessionID == "":
		return fmt.Errorf("%w: missing session id", ErrInvalidSnapshot)
	case snap.Status != StatusActive && snap.Status != StatusEnded:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSnapshot, snap.Status)
	case snap.QuestionsAnswered != len(snap.History) || len(snap.AskedQuestionIDs) != len(snap.History):
		return fmt.Errorf("%w: answered=%d asked=%d history=%d", ErrInvalidSnapshot,
			snap.QuestionsAnswered, len(snap.AskedQuestionIDs), len(snap.History))
	case !finite(snap.Theta) || !finite(snap.StandardError) || snap.StandardError <= 0:
		return fmt.Errorf("%w: non-finite ability", ErrInvalidSnapshot)
	}
	seen := make(map[string]bool, len(snap.History))
	for i, h := range snap.History {
		if seen[h.QuestionID] {
			return fmt.Errorf("%w: question %q asked twice", ErrInvalidSnapshot, h.QuestionID)
		}
		seen[h.QuestionID] = true
		if snap.AskedQuestionIDs[i] != h.QuestionID {
			return fmt.Errorf("%w: asked ids out of order at %d", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

// end must be called with mu held.
func (s *Session) end(reason EndReason) {
	s.status = StatusEnded
	s.endReason = reason
	s.pending = nil
	s.endedAt = s.now()
	s.log.Info("session ended",
		"reason", string(reason),
		"answered", len(s.ability.History),
		"theta", s.ability.Theta,
		"standard_error", s.ability.StandardError)
}

// categoryHint is the least-asked category seen so far. Must be called
// with mu held.
func (s *Session) categoryHint() string {
	if len(s.knownCats) == 0 {
		return ""
	}
	cats := make([]string, 0, len(s.knownCats))
	for c := range s.knownCats {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	best := cats[0]
	for _, c := range cats[1:] {
		if s.categoryCounts[c] < s.categoryCounts[best] {
			best = c
		}
	}
	return best
}

func (s *Session) bankAvailable(ctx context.Context, exclude map[string]bool) (bool, error) {
	candidates, err := s.bank.FetchCandidates(ctx, exclude, "")
	if err != nil {
		return false, err
	}
	for _, c := range candidates {
		if c.ID != "" && !exclude[c.ID] {
			return true, nil
		}
	}
	return false, nil
}

func (s *Session) abilityCopy() AbilityState {
	out := s.ability
	out.History = make([]HistoryEntry, len(s.ability.History))
	for i, h := range s.ability.History {
		h.SelectedOptionIDs = append([]string(nil), h.SelectedOptionIDs...)
		out.History[i] = h
	}
	return out
}

func copySet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func issueStrings(issues []irt.Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.String()
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

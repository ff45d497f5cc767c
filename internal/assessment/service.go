// Package assessment hosts adaptive sessions for the CLI and TUI. It keeps
// live sessions in memory, persists every transition to the response
// store and records metrics and traces.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/guard"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/logger"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/store"
)

var (
	// ErrSessionNotFound is returned for ids that are neither live nor stored.
	ErrSessionNotFound = errors.New("assessment session not found")

	// ErrPersist wraps store failures. The in-memory session has already
	// moved on when it is returned.
	ErrPersist = errors.New("persist failed")
)

// Deps are the collaborators of a Service. Bank is required; nil repos
// disable persistence, a nil Guard means a Local guard and nil Metrics
// means unregistered collectors.
type Deps struct {
	Bank      bank.Bank
	Snapshots store.SnapshotRepo
	Results   store.ResultRepo
	Events    store.EventRepo
	Guard     guard.Guard
	Metrics   *Metrics
	Logger    *logger.Logger
	Clock     func() time.Time

	// Tracer defaults to the global provider.
	Tracer trace.TracerProvider
}

// Service owns sessions by id.
type Service struct {
	cfg     session.Config
	deps    Deps
	log     *logger.Logger
	metrics *Metrics
	tracer  trace.Tracer
	guard   guard.Guard
	now     func() time.Time

	mu        sync.Mutex
	sessions  map[string]*session.Session
	finalized map[string]bool
}

// New creates a Service. cfg is validated here so hosts fail at startup
// rather than on the first session.
func New(cfg session.Config, deps Deps) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Bank == nil {
		return nil, errors.New("assessment: bank is required")
	}
	s := &Service{
		cfg:       cfg,
		deps:      deps,
		log:       deps.Logger,
		metrics:   deps.Metrics,
		tracer:    newTracer(deps.Tracer),
		guard:     deps.Guard,
		now:       deps.Clock,
		sessions:  make(map[string]*session.Session),
		finalized: make(map[string]bool),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.guard == nil {
		s.guard = guard.NewLocal()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Config returns the session configuration used for new sessions.
func (s *Service) Config() session.Config {
	return s.cfg
}

// Start creates a session and persists its initial state.
func (s *Service) Start(ctx context.Context) (id string, err error) {
	id = uuid.NewString()
	ctx, span := s.startSpan(ctx, "start", id)
	defer func() { endSpan(span, err) }()

	sess := session.New(id, s.cfg, s.deps.Bank, s.sessionOpts(id)...)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	s.metrics.SessionsStarted.Inc()

	snap := sess.Snapshot()
	err = errors.Join(
		s.saveSnapshot(ctx, snap),
		s.appendEngagement(ctx, id, store.EventAssessmentStarted, map[string]any{
			"min_questions": s.cfg.Stopping.MinQuestions,
			"max_questions": s.cfg.Stopping.MaxQuestions,
			"seed":          strconv.FormatUint(snap.Seed, 10),
		}),
	)
	s.log.Info("assessment started", "session_id", id)
	return id, err
}

// NextQuestion returns the question to show for a session. (nil, nil)
// means the bank is exhausted and the session has ended.
func (s *Service) NextQuestion(ctx context.Context, id string) (q *bank.Question, err error) {
	ctx, span := s.startSpan(ctx, "next_question", id)
	defer func() { endSpan(span, err) }()

	sess, release, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	wasPending := sess.Pending() != nil
	q, err = sess.NextQuestion(ctx)
	if err != nil {
		return nil, err
	}
	if q != nil {
		span.SetAttributes(attribute.String("assessment.question_id", q.ID))
	}
	if wasPending {
		return q, nil
	}
	return q, s.saveSnapshot(ctx, sess.Snapshot())
}

// RecordAnswer scores the pending question. When the answer is applied but
// persisting it fails, the result is returned together with the error.
func (s *Service) RecordAnswer(ctx context.Context, id, questionID string, selected []string, timeSpent time.Duration) (res session.AnswerResult, err error) {
	ctx, span := s.startSpan(ctx, "record_answer", id)
	defer func() { endSpan(span, err) }()

	sess, release, err := s.acquire(ctx, id)
	if err != nil {
		return session.AnswerResult{}, err
	}
	defer release()

	before := sess.Ability().Theta
	res, err = sess.RecordAnswer(ctx, questionID, selected, timeSpent)
	if err != nil {
		return res, err
	}

	span.SetAttributes(
		attribute.String("assessment.question_id", questionID),
		attribute.Bool("assessment.correct", res.IsCorrect),
		attribute.Int("assessment.answered", sess.QuestionsAnswered()),
	)
	s.metrics.Answers.WithLabelValues(strconv.FormatBool(res.IsCorrect)).Inc()
	if n := len(res.Issues); n > 0 {
		s.metrics.DegenerateItems.Add(float64(n))
	}

	err = errors.Join(
		s.appendAnswer(ctx, store.AnswerEventData{
			SessionID:     id,
			QuestionID:    questionID,
			Category:      res.Entry.Category,
			Correct:       res.IsCorrect,
			Selected:      selected,
			ThetaBefore:   before,
			ThetaAfter:    res.NewTheta,
			StandardError: res.NewStandardError,
			PointsEarned:  res.PointsEarned,
			TimeSpent:     res.Entry.TimeSpent,
		}),
		s.appendEngagement(ctx, id, store.EventQuestionAnswered, map[string]any{
			"question_id": questionID,
			"correct":     res.IsCorrect,
			"trend":       string(res.Trend),
		}),
		s.saveSnapshot(ctx, sess.Snapshot()),
	)
	return res, err
}

// ShouldEnd applies the stopping rule without changing the session.
func (s *Service) ShouldEnd(ctx context.Context, id string) (bool, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return false, err
	}
	return sess.ShouldEnd(ctx)
}

// Finalize ends and scores a session, then stores the result. Calling it
// again returns the same result without recording it twice.
func (s *Service) Finalize(ctx context.Context, id string) (res scoring.Result, err error) {
	ctx, span := s.startSpan(ctx, "finalize", id)
	defer func() { endSpan(span, err) }()

	sess, release, err := s.acquire(ctx, id)
	if err != nil {
		return scoring.Result{}, err
	}
	defer release()

	res = sess.Finalize()
	_, reason := sess.Status()
	span.SetAttributes(
		attribute.String("assessment.level", res.AugmentationLevel),
		attribute.String("assessment.end_reason", string(reason)),
	)

	s.mu.Lock()
	first := !s.finalized[id]
	s.finalized[id] = true
	s.mu.Unlock()
	if first && s.deps.Results != nil {
		prev, gerr := s.deps.Results.GetResult(ctx, id)
		if gerr == nil && prev != nil {
			first = false
		}
	}

	snap := sess.Snapshot()
	if !first {
		return res, s.saveSnapshot(ctx, snap)
	}

	s.metrics.ObserveCompleted(string(reason), res.StandardError, res.QuestionsAnswered)

	summary := sess.Summary()
	err = errors.Join(
		s.saveSnapshot(ctx, snap),
		s.saveResult(ctx, store.ResultRecord{
			SessionID:   id,
			Result:      res,
			EndReason:   reason,
			Summary:     summary,
			CompletedAt: s.now(),
		}),
		s.appendEngagement(ctx, id, store.EventAssessmentCompleted, map[string]any{
			"end_reason":         string(reason),
			"augmentation_level": res.AugmentationLevel,
			"questions_answered": res.QuestionsAnswered,
		}),
	)
	s.log.Info("assessment completed",
		"session_id", id,
		"end_reason", string(reason),
		"level", res.AugmentationLevel,
		"answered", res.QuestionsAnswered)
	return res, err
}

// EstimatedQuestionsRemaining is advisory, for progress displays.
func (s *Service) EstimatedQuestionsRemaining(ctx context.Context, id string) (int, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return 0, err
	}
	return sess.EstimatedQuestionsRemaining(), nil
}

// Summary reports performance so far.
func (s *Service) Summary(ctx context.Context, id string) (session.Summary, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return session.Summary{}, err
	}
	return sess.Summary(), nil
}

// Session returns the live session for id, resuming it from the store if
// needed.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.session(ctx, id)
}

// Resume loads a stored session into memory. Resuming a live session is a
// no-op.
func (s *Service) Resume(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "resume", id)
	defer func() { endSpan(span, err) }()
	_, err = s.session(ctx, id)
	return err
}

// Forget drops a session from memory. Stored state is kept.
func (s *Service) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.finalized, id)
}

func (s *Service) sessionOpts(id string) []session.Option {
	return []session.Option{
		session.WithLogger(s.log.With("session_id", id)),
		session.WithClock(s.now),
	}
}

// session returns the live session, restoring it from the snapshot repo
// when it is not in memory.
func (s *Service) session(ctx context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}
	if s.deps.Snapshots == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	snap, err := s.deps.Snapshots.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	restored, err := session.Restore(ctx, *snap, s.cfg, s.deps.Bank, s.sessionOpts(id)...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.sessions[id]; ok {
		// Restored concurrently by another caller.
		return live, nil
	}
	s.sessions[id] = restored
	s.log.Info("assessment resumed", "session_id", id, "answered", snap.QuestionsAnswered)
	return restored, nil
}

// acquire looks up the session and takes its guard. A held guard is
// reported as session.ErrBusy.
func (s *Service) acquire(ctx context.Context, id string) (*session.Session, func(), error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	release, err := s.guard.Acquire(ctx, id)
	if errors.Is(err, guard.ErrHeld) {
		return nil, nil, fmt.Errorf("%w: %w", session.ErrBusy, err)
	}
	if err != nil {
		return nil, nil, err
	}
	return sess, release, nil
}

func (s *Service) saveSnapshot(ctx context.Context, snap session.Snapshot) error {
	if s.deps.Snapshots == nil {
		return nil
	}
	if err := s.deps.Snapshots.Save(ctx, snap); err != nil {
		return s.persistFailed("snapshot", snap.SessionID, err)
	}
	return nil
}

func (s *Service) saveResult(ctx context.Context, rec store.ResultRecord) error {
	if s.deps.Results == nil {
		return nil
	}
	if err := s.deps.Results.SaveResult(ctx, rec); err != nil {
		return s.persistFailed("result", rec.SessionID, err)
	}
	return nil
}

func (s *Service) appendAnswer(ctx context.Context, data store.AnswerEventData) error {
	if s.deps.Events == nil {
		return nil
	}
	if err := s.deps.Events.AppendAnswerEvent(ctx, data); err != nil {
		return s.persistFailed("answer_event", data.SessionID, err)
	}
	return nil
}

func (s *Service) appendEngagement(ctx context.Context, id, eventType string, payload map[string]any) error {
	if s.deps.Events == nil {
		return nil
	}
	err := s.deps.Events.AppendEngagementEvent(ctx, store.EngagementEventData{
		SessionID: id,
		EventType: eventType,
		Payload:   payload,
	})
	if err != nil {
		return s.persistFailed("engagement_event", id, err)
	}
	return nil
}

func (s *Service) persistFailed(op, id string, err error) error {
	s.metrics.PersistErrors.WithLabelValues(op).Inc()
	s.log.Error("persist failed", "op", op, "session_id", id, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrPersist, op, err)
}

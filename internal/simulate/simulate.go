package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/logger"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
)

// Outcome is the result of one simulated session.
type Outcome struct {
	SessionID         string
	TrueTheta         float64
	Estimate          float64
	StandardError     float64
	QuestionsAnswered int
	EndReason         session.EndReason
	Level             string
	TrueLevel         string

	// StandardErrors holds the standard error after each answer.
	StandardErrors []float64
}

// RunSession drives one session to completion with ex answering.
func RunSession(ctx context.Context, id string, cfg session.Config, b bank.Bank, ex *Examinee, seed uint64) (Outcome, error) {
	sess := session.New(id, cfg, b, session.WithSeed(seed), session.WithLogger(logger.Nop()))

	out := Outcome{SessionID: id, TrueTheta: ex.TrueTheta}
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		end, err := sess.ShouldEnd(ctx)
		if err != nil {
			return out, err
		}
		if end {
			break
		}
		q, err := sess.NextQuestion(ctx)
		if err != nil {
			return out, err
		}
		if q == nil {
			break
		}
		res, err := sess.RecordAnswer(ctx, q.ID, ex.Answer(*q), time.Second)
		if err != nil {
			return out, err
		}
		out.StandardErrors = append(out.StandardErrors, res.NewStandardError)
	}

	res := sess.Finalize()
	_, reason := sess.Status()
	scorer := scoring.NewEngine(cfg.Scoring)
	out.Estimate = res.AbilityScore
	out.StandardError = res.StandardError
	out.QuestionsAnswered = res.QuestionsAnswered
	out.EndReason = reason
	out.Level = res.AugmentationLevel
	out.TrueLevel = scorer.Level(ex.TrueTheta)
	return out, nil
}

// Options configures Run.
type Options struct {
	Sessions    int
	Concurrency int // 0 means GOMAXPROCS
	Config      session.Config
	Bank        bank.Bank
	Seed        uint64

	// True abilities are drawn from N(ThetaMean, ThetaSD²).
	ThetaMean float64
	ThetaSD   float64

	// Observe, when set, is called once per finished session. Calls are
	// serialized.
	Observe func(Outcome)
}

// Report aggregates a batch of simulated sessions.
type Report struct {
	Outcomes          []Outcome
	Bias              float64 // mean(estimate - true)
	RMSE              float64
	MeanLength        float64
	MeanStandardError float64
	LevelAgreement    float64 // share of sessions placed in the true level
	Reasons           map[session.EndReason]int

	// MeanStandardErrors[i] is the mean standard error after answer i+1
	// over the sessions that got that far.
	MeanStandardErrors []float64
}

// Run simulates opts.Sessions sessions concurrently. Results are
// deterministic for a given seed regardless of concurrency.
func Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Sessions <= 0 {
		return Report{}, errors.New("simulate: sessions must be positive")
	}
	if opts.Bank == nil {
		return Report{}, errors.New("simulate: bank is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return Report{}, err
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xda942042e4dd58b5))
	thetas := make([]float64, opts.Sessions)
	for i := range thetas {
		thetas[i] = opts.ThetaMean + opts.ThetaSD*rng.NormFloat64()
	}

	outcomes := make([]Outcome, opts.Sessions)
	var observeMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range outcomes {
		g.Go(func() error {
			seed := opts.Seed + uint64(i) + 1
			ex := NewExaminee(thetas[i], seed)
			out, err := RunSession(gctx, fmt.Sprintf("sim-%d", i), opts.Config, opts.Bank, ex, seed)
			if err != nil {
				return fmt.Errorf("session %d: %w", i, err)
			}
			outcomes[i] = out
			if opts.Observe != nil {
				observeMu.Lock()
				opts.Observe(out)
				observeMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return Aggregate(outcomes), nil
}

// Aggregate computes the report for a set of outcomes.
func Aggregate(outcomes []Outcome) Report {
	r := Report{Outcomes: outcomes, Reasons: make(map[session.EndReason]int)}
	n := float64(len(outcomes))
	if n == 0 {
		return r
	}

	var sums, counts []float64
	agree := 0
	for _, o := range outcomes {
		diff := o.Estimate - o.TrueTheta
		r.Bias += diff
		r.RMSE += diff * diff
		r.MeanLength += float64(o.QuestionsAnswered)
		r.MeanStandardError += o.StandardError
		r.Reasons[o.EndReason]++
		if o.Level == o.TrueLevel {
			agree++
		}
		for i, se := range o.StandardErrors {
			if i == len(sums) {
				sums = append(sums, 0)
				counts = append(counts, 0)
			}
			sums[i] += se
			counts[i]++
		}
	}
	r.Bias /= n
	r.RMSE = math.Sqrt(r.RMSE / n)
	r.MeanLength /= n
	r.MeanStandardError /= n
	r.LevelAgreement = float64(agree) / n

	r.MeanStandardErrors = make([]float64, len(sums))
	for i := range sums {
		r.MeanStandardErrors[i] = sums[i] / counts[i]
	}
	return r
}

// Package simulate drives sessions with synthetic examinees of known
// ability. It is used to check calibration of the engine end to end.
package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/irt"
)

// Examinee answers questions by sampling the 3PL model at a true ability.
// It is not safe for concurrent use.
type Examinee struct {
	TrueTheta float64
	cfg       irt.Config
	rng       *rand.Rand
}

// NewExaminee creates an examinee with its own random source.
func NewExaminee(theta float64, seed uint64) *Examinee {
	return &Examinee{
		TrueTheta: theta,
		cfg:       irt.DefaultConfig(),
		rng:       rand.New(rand.NewPCG(seed, seed^0x2545f4914f6cdd1d)),
	}
}

// Answer returns the options the examinee selects: the correct set with
// the model probability, otherwise one wrong option (or nothing when the
// question has no wrong option).
func (e *Examinee) Answer(q bank.Question) []string {
	p, _ := irt.Normalize(q.Params(), e.cfg)
	if e.rng.Float64() < irt.Probability(e.TrueTheta, p) {
		return q.CorrectOptionIDs()
	}
	for _, o := range q.Options {
		if !o.IsCorrect {
			return []string{o.ID}
		}
	}
	return nil
}

// SyntheticBank generates n calibrated single-choice questions spread
// evenly over [-3, 3] with some jitter. Categories rotate in order.
func SyntheticBank(n int, categories []string, seed uint64) []bank.Question {
	if len(categories) == 0 {
		categories = []string{"general"}
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	labels := []bank.DifficultyLabel{
		bank.DifficultyFoundational, bank.DifficultyApplied,
		bank.DifficultyAdvanced, bank.DifficultyStrategic,
	}

	qs := make([]bank.Question, n)
	for i := range qs {
		b := 0.0
		if n > 1 {
			b = -3 + 6*float64(i)/float64(n-1)
		}
		b = math.Max(-3, math.Min(3, b+0.2*(rng.Float64()-0.5)))
		guess := 0.0
		if rng.IntN(4) == 0 {
			guess = 0.2
		}
		qs[i] = bank.Question{
			ID:             fmt.Sprintf("sim-%04d", i),
			Text:           fmt.Sprintf("Synthetic question %d", i),
			Category:       categories[i%len(categories)],
			Difficulty:     labels[min(len(labels)-1, int((b+3)/1.5))],
			Type:           bank.TypeSingleChoice,
			IRTDifficulty:  b,
			Discrimination: 0.8 + 1.2*rng.Float64(),
			Guessing:       guess,
			Options: []bank.Option{
				{ID: "a", Text: "correct", IsCorrect: true, Points: 10},
				{ID: "b", Text: "distractor 1"},
				{ID: "c", Text: "distractor 2"},
				{ID: "d", Text: "distractor 3"},
			},
		}
	}
	return qs
}

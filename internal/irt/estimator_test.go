package irt

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestUpdate_DirectionCorrectness(t *testing.T) {
	est := NewEstimator(DefaultConfig())
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 2000; i++ {
		theta := rng.Float64()*8 - 4
		se := 0.05 + rng.Float64()*1.5
		p := Params{
			Difficulty:     rng.Float64()*6 - 3,
			Discrimination: 0.2 + rng.Float64()*2.5,
			Guessing:       rng.Float64() * 0.35,
		}

		up := est.Update(theta, se, p, true)
		if up.Theta < theta {
			t.Fatalf("correct answer lowered theta: %.4f -> %.4f (item %+v)", theta, up.Theta, p)
		}
		down := est.Update(theta, se, p, false)
		if down.Theta > theta {
			t.Fatalf("incorrect answer raised theta: %.4f -> %.4f (item %+v)", theta, down.Theta, p)
		}
	}
}

func TestUpdate_HardCorrectRaisesMore(t *testing.T) {
	est := NewEstimator(DefaultConfig())

	easy := est.Update(0, 1, Params{Difficulty: -1.5, Discrimination: 1.2}, true)
	hard := est.Update(0, 1, Params{Difficulty: 1.5, Discrimination: 1.2}, true)

	if hard.Theta <= easy.Theta {
		t.Errorf("correct on hard item moved theta to %.4f, easy to %.4f; want hard higher", hard.Theta, easy.Theta)
	}
}

func TestUpdate_EasyIncorrectLowersMore(t *testing.T) {
	est := NewEstimator(DefaultConfig())

	easy := est.Update(0, 1, Params{Difficulty: -1.5, Discrimination: 1.2}, false)
	hard := est.Update(0, 1, Params{Difficulty: 1.5, Discrimination: 1.2}, false)

	if easy.Theta >= hard.Theta {
		t.Errorf("incorrect on easy item -> %.4f, on hard item -> %.4f; want easy lower", easy.Theta, hard.Theta)
	}
}

func TestUpdate_StandardErrorShrinks(t *testing.T) {
	est := NewEstimator(DefaultConfig())

	near := est.Update(0, 1, Params{Difficulty: 0.1, Discrimination: 1.2}, true)
	far := est.Update(0, 1, Params{Difficulty: 2.8, Discrimination: 1.2}, true)
	sharp := est.Update(0, 1, Params{Difficulty: 0.1, Discrimination: 2.0}, true)

	if near.StandardError >= 1 {
		t.Errorf("standard error did not shrink: %.4f", near.StandardError)
	}
	if near.StandardError >= far.StandardError {
		t.Errorf("targeted item se %.4f should be below off-target se %.4f", near.StandardError, far.StandardError)
	}
	if sharp.StandardError >= near.StandardError {
		t.Errorf("high discrimination se %.4f should be below %.4f", sharp.StandardError, near.StandardError)
	}
}

func TestUpdate_BoundedAbility(t *testing.T) {
	cfg := DefaultConfig()
	est := NewEstimator(cfg)

	for _, correct := range []bool{true, false} {
		theta, se := est.Prior()
		for i := 0; i < 500; i++ {
			b := 3.5
			if !correct {
				b = -3.5
			}
			u := est.Update(theta, se, Params{Difficulty: b, Discrimination: 4}, correct)
			theta, se = u.Theta, u.StandardError
			if theta < cfg.MinTheta || theta > cfg.MaxTheta {
				t.Fatalf("theta %.4f escaped [%v, %v]", theta, cfg.MinTheta, cfg.MaxTheta)
			}
			if se < cfg.MinStandardError {
				t.Fatalf("se %.4f dropped below floor %.4f", se, cfg.MinStandardError)
			}
		}
	}
}

func TestUpdate_NumericRecovery(t *testing.T) {
	est := NewEstimator(DefaultConfig())

	u := est.Update(math.NaN(), math.Inf(1), Params{Discrimination: math.NaN(), Guessing: 2}, true)
	if math.IsNaN(u.Theta) || math.IsInf(u.Theta, 0) {
		t.Fatalf("theta not finite: %v", u.Theta)
	}
	if math.IsNaN(u.StandardError) || math.IsInf(u.StandardError, 0) {
		t.Fatalf("se not finite: %v", u.StandardError)
	}
	if !u.Recovered {
		t.Error("expected Recovered to be set")
	}
	if len(u.Issues) != 2 {
		t.Errorf("issues = %v, want 2", u.Issues)
	}
}

func TestUpdate_ReportsParamsUsed(t *testing.T) {
	cfg := DefaultConfig()
	est := NewEstimator(cfg)

	u := est.Update(0, 1, Params{Difficulty: math.Inf(-1), Discrimination: 1.5, Guessing: math.NaN()}, true)
	for name, v := range map[string]float64{
		"difficulty":     u.Params.Difficulty,
		"discrimination": u.Params.Discrimination,
		"guessing":       u.Params.Guessing,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s not finite: %v", name, v)
		}
	}
	if u.Params.Guessing != cfg.DefaultGuessing {
		t.Errorf("guessing = %v, want default %v", u.Params.Guessing, cfg.DefaultGuessing)
	}
	if u.Params.Discrimination != 1.5 {
		t.Errorf("valid discrimination changed to %v", u.Params.Discrimination)
	}
}

func TestExpectedCorrectProbability_UsesDefaults(t *testing.T) {
	est := NewEstimator(DefaultConfig())

	got := est.ExpectedCorrectProbability(0, Params{Difficulty: 0, Discrimination: -1, Guessing: 5})
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("probability with repaired params = %.6f, want 0.5", got)
	}
}

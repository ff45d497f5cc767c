package irt

import (
	"math"
	"testing"
)

func TestProbability(t *testing.T) {
	tests := []struct {
		name  string
		theta float64
		p     Params
		want  float64
	}{
		{"at difficulty no guessing", 0.5, Params{Difficulty: 0.5, Discrimination: 1.2}, 0.5},
		{"at difficulty with guessing", 0, Params{Difficulty: 0, Discrimination: 1, Guessing: 0.25}, 0.625},
		{"far above difficulty", 10, Params{Difficulty: 0, Discrimination: 2}, 1},
		{"far below difficulty floors at guessing", -10, Params{Difficulty: 0, Discrimination: 2, Guessing: 0.2}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Probability(tt.theta, tt.p)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Probability(%v) = %.6f, want %.6f", tt.theta, got, tt.want)
			}
		})
	}
}

func TestInformation_PeaksNearDifficulty(t *testing.T) {
	p := Params{Difficulty: 1, Discrimination: 1.5}

	atB := Information(1, p)
	below := Information(-1, p)
	above := Information(3, p)

	if atB <= below || atB <= above {
		t.Errorf("information at b = %.4f, want greater than %.4f and %.4f", atB, below, above)
	}

	// 2PL information at b is a^2 / 4.
	if math.Abs(atB-1.5*1.5/4) > 1e-9 {
		t.Errorf("information at b = %.6f, want %.6f", atB, 1.5*1.5/4)
	}
}

func TestInformation_GrowsWithDiscrimination(t *testing.T) {
	low := Information(0, Params{Discrimination: 0.5})
	high := Information(0, Params{Discrimination: 2})
	if high <= low {
		t.Errorf("information a=2 (%.4f) should exceed a=0.5 (%.4f)", high, low)
	}
}

func TestInformation_GuessingReducesInformation(t *testing.T) {
	free := Information(0, Params{Discrimination: 1})
	guessy := Information(0, Params{Discrimination: 1, Guessing: 0.25})
	if guessy >= free {
		t.Errorf("information with guessing (%.4f) should be below free response (%.4f)", guessy, free)
	}
}

func TestInformation_Degenerate(t *testing.T) {
	if got := Information(50, Params{Discrimination: 5}); got != 0 {
		t.Errorf("saturated probability information = %v, want 0", got)
	}
	if got := Information(0, Params{Discrimination: 1, Guessing: 1}); got != 0 {
		t.Errorf("guessing=1 information = %v, want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name       string
		in         Params
		want       Params
		wantIssues int
	}{
		{"valid", Params{Difficulty: 1, Discrimination: 1.3, Guessing: 0.2}, Params{Difficulty: 1, Discrimination: 1.3, Guessing: 0.2}, 0},
		{"uncalibrated discrimination is silent", Params{Difficulty: 1}, Params{Difficulty: 1, Discrimination: 1}, 0},
		{"negative discrimination", Params{Discrimination: -2}, Params{Discrimination: 1}, 1},
		{"nan discrimination", Params{Discrimination: math.NaN()}, Params{Discrimination: 1}, 1},
		{"guessing one", Params{Discrimination: 1, Guessing: 1}, Params{Discrimination: 1}, 1},
		{"negative guessing", Params{Discrimination: 1, Guessing: -0.1}, Params{Discrimination: 1}, 1},
		{"infinite difficulty", Params{Difficulty: math.Inf(1), Discrimination: 1}, Params{Discrimination: 1}, 1},
		{"difficulty beyond limit", Params{Difficulty: -9, Discrimination: 1}, Params{Difficulty: -6, Discrimination: 1}, 1},
		{"everything broken", Params{Difficulty: math.NaN(), Discrimination: math.Inf(-1), Guessing: 3}, Params{Discrimination: 1}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := Normalize(tt.in, cfg)
			if got != tt.want {
				t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
			if len(issues) != tt.wantIssues {
				t.Errorf("issues = %v, want %d", issues, tt.wantIssues)
			}
		})
	}
}

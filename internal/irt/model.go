package irt

import (
	"fmt"
	"math"
)

// Params holds the pre-calibrated 3PL parameters of a single item.
type Params struct {
	Difficulty     float64 `json:"irt_difficulty"`
	Discrimination float64 `json:"discrimination"`
	Guessing       float64 `json:"guessing"`
}

// Issue describes a parameter that had to be replaced before use.
type Issue struct {
	Field string
	Got   float64
	Used  float64
}

func (i Issue) String() string {
	return fmt.Sprintf("%s=%v replaced with %v", i.Field, i.Got, i.Used)
}

// Normalize returns params that are safe to feed into the model.
// A zero discrimination means "not calibrated" and is replaced silently;
// every other substitution is reported as an Issue.
func Normalize(p Params, cfg Config) (Params, []Issue) {
	var issues []Issue
	out := p

	switch {
	case p.Discrimination == 0:
		out.Discrimination = cfg.DefaultDiscrimination
	case !isFinite(p.Discrimination) || p.Discrimination < 0:
		out.Discrimination = cfg.DefaultDiscrimination
		issues = append(issues, Issue{Field: "discrimination", Got: p.Discrimination, Used: out.Discrimination})
	}

	if !isFinite(p.Guessing) || p.Guessing < 0 || p.Guessing >= 1 {
		out.Guessing = cfg.DefaultGuessing
		issues = append(issues, Issue{Field: "guessing", Got: p.Guessing, Used: out.Guessing})
	}

	switch {
	case !isFinite(p.Difficulty):
		out.Difficulty = 0
		issues = append(issues, Issue{Field: "irt_difficulty", Got: p.Difficulty, Used: 0})
	case cfg.DifficultyLimit > 0 && math.Abs(p.Difficulty) > cfg.DifficultyLimit:
		out.Difficulty = clamp(p.Difficulty, -cfg.DifficultyLimit, cfg.DifficultyLimit)
		issues = append(issues, Issue{Field: "irt_difficulty", Got: p.Difficulty, Used: out.Difficulty})
	}

	return out, issues
}

// Probability is the 3PL probability of a correct response at theta.
func Probability(theta float64, p Params) float64 {
	return p.Guessing + (1-p.Guessing)/(1+math.Exp(-p.Discrimination*(theta-p.Difficulty)))
}

// Information is the Fisher information the item carries at theta.
func Information(theta float64, p Params) float64 {
	prob := Probability(theta, p)
	if !isFinite(prob) || prob <= 0 || prob >= 1 || p.Guessing >= 1 {
		return 0
	}
	num := p.Discrimination * p.Discrimination * (prob - p.Guessing) * (prob - p.Guessing) * (1 - prob)
	den := (1 - p.Guessing) * (1 - p.Guessing) * prob
	info := num / den
	if !isFinite(info) || info < 0 {
		return 0
	}
	return info
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

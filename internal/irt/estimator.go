package irt

import "math"

// Update is the outcome of a single estimator step.
type Update struct {
	Theta         float64
	StandardError float64

	// Probability is the expected probability of a correct answer before
	// the step; Information is the Fisher information of the item at the
	// old theta.
	Probability float64
	Information float64

	// Params are the item parameters after normalization, the values the
	// step actually used. They are always finite.
	Params Params

	// Issues lists parameter substitutions made for this item.
	Issues []Issue

	// Recovered is true when a non-finite input or output had to be
	// replaced to keep the estimate valid.
	Recovered bool
}

// Estimator keeps theta and its standard error current after each answer.
// It holds no per-session state and is safe for concurrent use.
type Estimator struct {
	cfg Config
}

// NewEstimator creates an estimator with the given config.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: cfg}
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Prior returns the starting ability and standard error.
func (e *Estimator) Prior() (theta, se float64) {
	return e.clampTheta(e.cfg.PriorTheta), math.Max(e.cfg.PriorStandardError, e.cfg.MinStandardError)
}

// ExpectedCorrectProbability is the 3PL probability of a correct answer
// after the item's params have been normalized.
func (e *Estimator) ExpectedCorrectProbability(theta float64, p Params) float64 {
	norm, _ := Normalize(p, e.cfg)
	return Probability(theta, norm)
}

// Update performs one Bayesian (MAP, single Newton step) update.
//
// The posterior precision grows by the item's Fisher information at the old
// theta, so the standard error never increases. Theta moves by the
// response residual (observed - expected) scaled by the discrimination and
// the new posterior variance.
func (e *Estimator) Update(theta, se float64, p Params, correct bool) Update {
	var u Update

	priorTheta, priorSE := e.Prior()
	if !isFinite(theta) {
		theta = priorTheta
		u.Recovered = true
	}
	if !isFinite(se) || se <= 0 {
		se = priorSE
		u.Recovered = true
	}
	theta = e.clampTheta(theta)

	item, issues := Normalize(p, e.cfg)
	u.Params = item
	u.Issues = issues

	prob := Probability(theta, item)
	info := Information(theta, item)
	u.Probability = prob
	u.Information = info

	precision := 1/(se*se) + info
	newSE := 1 / math.Sqrt(precision)
	if !isFinite(newSE) || newSE > se {
		newSE = se
		u.Recovered = u.Recovered || !isFinite(precision)
	}
	newSE = math.Max(newSE, e.cfg.MinStandardError)

	observed := 0.0
	if correct {
		observed = 1.0
	}
	step := newSE * newSE * item.Discrimination * (observed - prob)
	newTheta := theta + step
	if !isFinite(newTheta) {
		newTheta = theta
		u.Recovered = true
	}

	u.Theta = e.clampTheta(newTheta)
	u.StandardError = newSE
	return u
}

func (e *Estimator) clampTheta(theta float64) float64 {
	if e.cfg.MaxTheta <= e.cfg.MinTheta {
		return theta
	}
	return clamp(theta, e.cfg.MinTheta, e.cfg.MaxTheta)
}

package scoring

import (
	"math"
	"sort"
)

// Input is the part of a session's ability state scoring needs.
type Input struct {
	Theta             float64
	StandardError     float64
	QuestionsAnswered int
}

// Result is the final outcome of an assessment.
type Result struct {
	AbilityScore         float64 `json:"ability_score"`
	ScaledScore          float64 `json:"scaled_score"`
	AugmentationLevel    string  `json:"augmentation_level"`
	ConfidencePercentage float64 `json:"confidence_percentage"`
	StandardError        float64 `json:"standard_error"`
	QuestionsAnswered    int     `json:"questions_answered"`
}

// Engine converts ability estimates into reportable scores. It is
// stateless and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates a scoring engine. cfg should already be validated;
// a level/cut mismatch falls back to the defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.Check() != nil {
		def := DefaultConfig()
		cfg.CutPoints, cfg.Levels = def.CutPoints, def.Levels
	}
	if cfg.ReferenceStandardError <= 0 {
		cfg.ReferenceStandardError = DefaultConfig().ReferenceStandardError
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Finalize scores an ability state. Calling it twice with the same input
// returns the same result.
func (e *Engine) Finalize(in Input) Result {
	theta := in.Theta
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		theta = 0
	}
	se := in.StandardError
	if math.IsNaN(se) || se < 0 {
		se = e.cfg.ReferenceStandardError
	}

	return Result{
		AbilityScore:         round(theta, 3),
		ScaledScore:          e.ScaledScore(theta),
		AugmentationLevel:    e.Level(theta),
		ConfidencePercentage: e.Confidence(se),
		StandardError:        round(se, 3),
		QuestionsAnswered:    in.QuestionsAnswered,
	}
}

// Level returns the band label for theta.
func (e *Engine) Level(theta float64) string {
	i := sort.Search(len(e.cfg.CutPoints), func(i int) bool {
		return e.cfg.CutPoints[i] > theta
	})
	return e.cfg.Levels[i]
}

// Confidence maps a standard error onto 0-100. It never increases as the
// standard error grows.
func (e *Engine) Confidence(se float64) float64 {
	c := 1 - se/e.cfg.ReferenceStandardError
	if math.IsNaN(c) {
		c = 0
	}
	return round(100*clamp(c, 0, 1), 1)
}

// ScaledScore maps theta linearly onto 0-100.
func (e *Engine) ScaledScore(theta float64) float64 {
	span := e.cfg.MaxTheta - e.cfg.MinTheta
	if span <= 0 {
		return 0
	}
	return round(100*clamp((theta-e.cfg.MinTheta)/span, 0, 1), 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

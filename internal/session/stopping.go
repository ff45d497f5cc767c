package session

// EndReason records why a session ended.
type EndReason string

const (
	ReasonNone          EndReason = ""
	ReasonMaxQuestions  EndReason = "max_questions"
	ReasonPrecision     EndReason = "precision"
	ReasonBankExhausted EndReason = "bank_exhausted"
	ReasonManual        EndReason = "manual"
)

// StoppingConfig bounds session length and sets the precision target.
type StoppingConfig struct {
	MinQuestions    int     `yaml:"min_questions" json:"min_questions" validate:"gte=0"`
	MaxQuestions    int     `yaml:"max_questions" json:"max_questions" validate:"gte=1,gtefield=MinQuestions"`
	PrecisionTarget float64 `yaml:"precision_target" json:"precision_target" validate:"gt=0"`
}

// DefaultStoppingConfig returns the default stopping rule.
func DefaultStoppingConfig() StoppingConfig {
	return StoppingConfig{
		MinQuestions:    5,
		MaxQuestions:    20,
		PrecisionTarget: 0.3,
	}
}

// StopInput is everything the stopping rule looks at.
type StopInput struct {
	QuestionsAnswered int
	StandardError     float64
	BankAvailable     bool
}

// Decision is the outcome of the stopping rule.
type Decision struct {
	End    bool
	Reason EndReason
}

// Evaluate applies the stopping rule. The precision target only counts
// once MinQuestions have been answered; MaxQuestions and an exhausted bank
// always end the session.
func Evaluate(in StopInput, cfg StoppingConfig) Decision {
	switch {
	case in.QuestionsAnswered >= cfg.MaxQuestions:
		return Decision{End: true, Reason: ReasonMaxQuestions}
	case in.QuestionsAnswered >= cfg.MinQuestions && in.StandardError <= cfg.PrecisionTarget:
		return Decision{End: true, Reason: ReasonPrecision}
	case !in.BankAvailable:
		return Decision{End: true, Reason: ReasonBankExhausted}
	default:
		return Decision{}
	}
}

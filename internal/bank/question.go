package bank

import (
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/irt"
)

// DifficultyLabel is the presentation-only difficulty of a question.
type DifficultyLabel string

const (
	DifficultyFoundational DifficultyLabel = "foundational"
	DifficultyApplied      DifficultyLabel = "applied"
	DifficultyAdvanced     DifficultyLabel = "advanced"
	DifficultyStrategic    DifficultyLabel = "strategic"
)

// QuestionType tags how a question is rendered. The engine only looks at
// correctness, never at the type.
type QuestionType string

const (
	TypeSingleChoice   QuestionType = "single_choice"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeScenario       QuestionType = "scenario"
	TypeRanking        QuestionType = "ranking"
	TypeCodeEvaluation QuestionType = "code_evaluation"
	TypeCaseStudy      QuestionType = "case_study"
)

// Option is a single answer choice.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Points    int    `json:"points"`
}

// Question is an immutable, pre-calibrated bank item.
type Question struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Category   string          `json:"category"`
	Difficulty DifficultyLabel `json:"difficulty_label"`
	Type       QuestionType    `json:"question_type"`

	// IRT parameters. A zero discrimination means the item is not
	// calibrated and engine defaults apply.
	IRTDifficulty  float64 `json:"irt_difficulty"`
	Discrimination float64 `json:"discrimination"`
	Guessing       float64 `json:"guessing"`

	Options []Option `json:"options"`
}

// Params returns the raw (not normalized) IRT parameters.
func (q Question) Params() irt.Params {
	return irt.Params{
		Difficulty:     q.IRTDifficulty,
		Discrimination: q.Discrimination,
		Guessing:       q.Guessing,
	}
}

// CorrectOptionIDs returns the ids of all correct options in bank order.
func (q Question) CorrectOptionIDs() []string {
	var ids []string
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// IsCorrectSelection reports whether the selected ids are exactly the
// correct-option set. Duplicates in selected are ignored.
func (q Question) IsCorrectSelection(selected []string) bool {
	want := make(map[string]bool)
	for _, id := range q.CorrectOptionIDs() {
		want[id] = true
	}
	if len(want) == 0 {
		return false
	}

	got := make(map[string]bool, len(selected))
	for _, id := range selected {
		got[id] = true
	}
	if len(got) != len(want) {
		return false
	}
	for id := range got {
		if !want[id] {
			return false
		}
	}
	return true
}

// PointsFor returns the points earned for a selection: the sum of the
// selected correct options when the selection is correct, otherwise 0.
func (q Question) PointsFor(selected []string) int {
	if !q.IsCorrectSelection(selected) {
		return 0
	}
	return q.MaxPoints()
}

// MaxPoints is the sum of points of all correct options.
func (q Question) MaxPoints() int {
	total := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			total += o.Points
		}
	}
	return total
}

package bank

import (
	"context"
	"sort"
)

// Bank supplies candidate questions to the engine.
type Bank interface {
	// FetchCandidates returns every question not in exclude. categoryHint
	// is a preference for ordering only; implementations must not drop
	// other categories because of it.
	FetchCandidates(ctx context.Context, exclude map[string]bool, categoryHint string) ([]Question, error)
}

// MemoryBank is a read-only in-process bank. Safe for concurrent use.
type MemoryBank struct {
	questions []Question
}

// NewMemoryBank copies questions into a new bank. Later entries with a
// duplicate id are dropped.
func NewMemoryBank(questions []Question) *MemoryBank {
	seen := make(map[string]bool, len(questions))
	qs := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.ID == "" || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		q.Options = append([]Option(nil), q.Options...)
		qs = append(qs, q)
	}
	return &MemoryBank{questions: qs}
}

// FetchCandidates implements Bank.
func (b *MemoryBank) FetchCandidates(ctx context.Context, exclude map[string]bool, categoryHint string) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(b.questions))
	for _, q := range b.questions {
		if exclude[q.ID] {
			continue
		}
		out = append(out, q)
	}
	if categoryHint != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Category == categoryHint && out[j].Category != categoryHint
		})
	}
	return out, nil
}

// Len returns the number of questions in the bank.
func (b *MemoryBank) Len() int {
	return len(b.questions)
}

// Questions returns a copy of all questions.
func (b *MemoryBank) Questions() []Question {
	return append([]Question(nil), b.questions...)
}

// Get returns the question with the given id.
func (b *MemoryBank) Get(id string) (Question, bool) {
	for _, q := range b.questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Categories returns the distinct categories in bank order.
func (b *MemoryBank) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, q := range b.questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			cats = append(cats, q.Category)
		}
	}
	return cats
}

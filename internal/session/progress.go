package session

// CategoryProgress tracks answers within one category of a session.
type CategoryProgress struct {
	Category      string  `json:"category"`
	TotalAttempts int     `json:"total_attempts"`
	CorrectCount  int     `json:"correct_count"`
	Accuracy      float64 `json:"accuracy"` // CorrectCount / TotalAttempts (computed)
}

// Record adds a new answer result to the progress.
func (cp *CategoryProgress) Record(correct bool) {
	cp.TotalAttempts++
	if correct {
		cp.CorrectCount++
	}
	if cp.TotalAttempts > 0 {
		cp.Accuracy = float64(cp.CorrectCount) / float64(cp.TotalAttempts)
	}
}

// categoryProgress folds history into per-category progress, ordered by
// first appearance.
func categoryProgress(history []HistoryEntry) []CategoryProgress {
	index := make(map[string]int)
	var out []CategoryProgress
	for _, h := range history {
		i, ok := index[h.Category]
		if !ok {
			i = len(out)
			index[h.Category] = i
			out = append(out, CategoryProgress{Category: h.Category})
		}
		out[i].Record(h.Correct)
	}
	return out
}

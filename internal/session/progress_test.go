package session

import (
	"testing"
)

func TestCategoryProgress_Record_Correct(t *testing.T) {
	cp := &CategoryProgress{Category: "prompting"}

	cp.Record(true)

	if cp.TotalAttempts != 1 {
		t.Errorf("TotalAttempts = %d, want 1", cp.TotalAttempts)
	}
	if cp.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", cp.CorrectCount)
	}
	if cp.Accuracy != 1.0 {
		t.Errorf("Accuracy = %f, want 1.0", cp.Accuracy)
	}
}

func TestCategoryProgress_Record_Mixed(t *testing.T) {
	cp := &CategoryProgress{Category: "prompting"}

	cp.Record(true)
	cp.Record(true)
	cp.Record(false)
	cp.Record(true)

	if cp.TotalAttempts != 4 {
		t.Errorf("TotalAttempts = %d, want 4", cp.TotalAttempts)
	}
	if cp.CorrectCount != 3 {
		t.Errorf("CorrectCount = %d, want 3", cp.CorrectCount)
	}
	if cp.Accuracy != 0.75 {
		t.Errorf("Accuracy = %f, want 0.75", cp.Accuracy)
	}
}

func TestCategoryProgress_FromHistory(t *testing.T) {
	got := categoryProgress([]HistoryEntry{
		{Category: "ethics", Correct: true},
		{Category: "prompting", Correct: false},
		{Category: "ethics", Correct: false},
	})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Category != "ethics" || got[0].TotalAttempts != 2 || got[0].CorrectCount != 1 {
		t.Errorf("ethics = %+v", got[0])
	}
	if got[1].Category != "prompting" || got[1].Accuracy != 0 {
		t.Errorf("prompting = %+v", got[1])
	}
}

func TestStoppingRule(t *testing.T) {
	cfg := DefaultStoppingConfig()

	tests := []struct {
		name string
		in   StopInput
		want Decision
	}{
		{"fresh", StopInput{0, 1.0, true}, Decision{}},
		{"precise but under floor", StopInput{4, 0.1, true}, Decision{}},
		{"precise at floor", StopInput{5, 0.3, true}, Decision{true, ReasonPrecision}},
		{"imprecise", StopInput{10, 0.5, true}, Decision{}},
		{"ceiling", StopInput{20, 0.9, true}, Decision{true, ReasonMaxQuestions}},
		{"ceiling beats precision", StopInput{20, 0.1, true}, Decision{true, ReasonMaxQuestions}},
		{"bank exhausted under floor", StopInput{2, 0.9, false}, Decision{true, ReasonBankExhausted}},
		{"bank exhausted at zero", StopInput{0, 1.0, false}, Decision{true, ReasonBankExhausted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.in, cfg); got != tt.want {
				t.Errorf("Evaluate(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStoppingRule_NeverEndsBeforeFloorWithoutCause(t *testing.T) {
	cfg := DefaultStoppingConfig()
	for answered := 0; answered < cfg.MinQuestions; answered++ {
		for _, se := range []float64{0.01, 0.2, 0.3, 0.9} {
			d := Evaluate(StopInput{QuestionsAnswered: answered, StandardError: se, BankAvailable: true}, cfg)
			if d.End {
				t.Errorf("ended at answered=%d se=%v with reason %q", answered, se, d.Reason)
			}
		}
	}
}

package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func singleChoice() bank.Question {
	return bank.Question{
		ID:   "q1",
		Type: bank.TypeSingleChoice,
		Options: []bank.Option{
			{ID: "a", Text: "Alpha"},
			{ID: "b", Text: "Beta", IsCorrect: true},
			{ID: "c", Text: "Gamma"},
		},
	}
}

func multiChoice() bank.Question {
	q := singleChoice()
	q.Type = bank.TypeMultipleChoice
	q.Options[2].IsCorrect = true
	return q
}

func TestOptionList_SingleChoiceEnterSubmitsCursor(t *testing.T) {
	o := NewOptionList(singleChoice())
	if o.Multi {
		t.Fatal("expected single-select list")
	}

	o, _ = o.Update(specialKey(tea.KeyDown))
	o, _ = o.Update(specialKey(tea.KeyEnter))

	if !o.Submitted {
		t.Fatal("expected submission on enter")
	}
	if got := o.SelectedIDs(); len(got) != 1 || got[0] != "b" {
		t.Errorf("expected [b], got %v", got)
	}
}

func TestOptionList_NumberKeySubmitsSingleChoice(t *testing.T) {
	o := NewOptionList(singleChoice())
	o, _ = o.Update(keyPress('3'))

	if !o.Submitted {
		t.Fatal("expected number key to submit")
	}
	if got := o.SelectedIDs(); len(got) != 1 || got[0] != "c" {
		t.Errorf("expected [c], got %v", got)
	}
}

func TestOptionList_OutOfRangeNumberIgnored(t *testing.T) {
	o := NewOptionList(singleChoice())
	o, _ = o.Update(keyPress('7'))
	if o.Submitted {
		t.Error("expected out-of-range key to be ignored")
	}
}

func TestOptionList_MultiSelectToggles(t *testing.T) {
	o := NewOptionList(multiChoice())
	if !o.Multi {
		t.Fatal("expected multi-select list")
	}

	// Enter with nothing checked does not submit.
	o, _ = o.Update(specialKey(tea.KeyEnter))
	if o.Submitted {
		t.Fatal("expected no submission without a checked option")
	}

	o, _ = o.Update(keyPress('2'))
	o, _ = o.Update(keyPress('3'))
	o, _ = o.Update(keyPress('1'))
	o, _ = o.Update(keyPress('1')) // untoggle
	o, _ = o.Update(specialKey(tea.KeyEnter))

	if !o.Submitted {
		t.Fatal("expected submission")
	}
	got := o.SelectedIDs()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("expected [b c], got %v", got)
	}
}

func TestOptionList_IgnoresInputAfterSubmit(t *testing.T) {
	o := NewOptionList(singleChoice())
	o, _ = o.Update(keyPress('1'))
	o, _ = o.Update(specialKey(tea.KeyDown))
	if o.Cursor != 0 {
		t.Errorf("expected cursor to stay at 0 after submit, got %d", o.Cursor)
	}
}

func TestOptionList_ViewShowsCheckboxes(t *testing.T) {
	o := NewOptionList(multiChoice())
	o, _ = o.Update(keyPress('2'))
	view := o.View(60)
	if !strings.Contains(view, "[x]") || !strings.Contains(view, "[ ]") {
		t.Errorf("expected checkbox markers, got %q", view)
	}
	if !strings.Contains(view, "Beta") {
		t.Error("expected option text in view")
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	fired := ""
	m := NewMenu([]MenuItem{
		{Label: "Start", Action: func() tea.Cmd { fired = "start"; return nil }},
		{Label: "Resume", Disabled: true},
		{Label: "History", Action: func() tea.Cmd { fired = "history"; return nil }},
	})

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 2 {
		t.Fatalf("expected disabled item to be skipped, selected %d", m.Selected)
	}
	m.Update(specialKey(tea.KeyEnter))
	if fired != "history" {
		t.Errorf("expected history action, got %q", fired)
	}
}

func TestAssessmentProgress(t *testing.T) {
	if got := AssessmentProgress(0, 0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := AssessmentProgress(5, 15); got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}
	if got := AssessmentProgress(20, 0); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestProgressBarCaption(t *testing.T) {
	view := NewProgressBar("Progress", 0.5, "5 of ~10", 60).View()
	if !strings.Contains(view, "Progress") || !strings.Contains(view, "5 of ~10") {
		t.Errorf("expected label and caption, got %q", view)
	}
}

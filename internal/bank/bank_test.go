package bank

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestion(id, category string) Question {
	return Question{
		ID:             id,
		Category:       category,
		Difficulty:     DifficultyApplied,
		Type:           TypeMultipleChoice,
		IRTDifficulty:  0.5,
		Discrimination: 1.2,
		Options: []Option{
			{ID: id + "-a", IsCorrect: true, Points: 5},
			{ID: id + "-b", IsCorrect: true, Points: 5},
			{ID: id + "-c", IsCorrect: false},
		},
	}
}

func TestIsCorrectSelection(t *testing.T) {
	q := sampleQuestion("q1", "prompting")

	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"exact set", []string{"q1-a", "q1-b"}, true},
		{"order does not matter", []string{"q1-b", "q1-a"}, true},
		{"duplicates ignored", []string{"q1-a", "q1-b", "q1-a"}, true},
		{"partial", []string{"q1-a"}, false},
		{"extra wrong option", []string{"q1-a", "q1-b", "q1-c"}, false},
		{"wrong only", []string{"q1-c"}, false},
		{"empty", nil, false},
		{"unknown id", []string{"nope"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.IsCorrectSelection(tt.selected))
		})
	}
}

func TestIsCorrectSelection_NoCorrectOption(t *testing.T) {
	q := Question{ID: "q", Options: []Option{{ID: "a"}}}
	assert.False(t, q.IsCorrectSelection([]string{"a"}))
	assert.False(t, q.IsCorrectSelection(nil))
}

func TestPointsFor(t *testing.T) {
	q := sampleQuestion("q1", "prompting")
	assert.Equal(t, 10, q.MaxPoints())
	assert.Equal(t, 10, q.PointsFor([]string{"q1-a", "q1-b"}))
	assert.Equal(t, 0, q.PointsFor([]string{"q1-a"}))
}

func TestMemoryBank_FetchCandidates(t *testing.T) {
	b := NewMemoryBank([]Question{
		sampleQuestion("q1", "ethics"),
		sampleQuestion("q2", "prompting"),
		sampleQuestion("q3", "ethics"),
		sampleQuestion("q1", "duplicate"),
	})
	require.Equal(t, 3, b.Len())

	got, err := b.FetchCandidates(context.Background(), map[string]bool{"q1": true}, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q2", got[0].ID)
	assert.Equal(t, "q3", got[1].ID)
}

func TestMemoryBank_CategoryHintOrdersFirst(t *testing.T) {
	b := NewMemoryBank([]Question{
		sampleQuestion("q1", "ethics"),
		sampleQuestion("q2", "prompting"),
		sampleQuestion("q3", "ethics"),
	})

	got, err := b.FetchCandidates(context.Background(), nil, "prompting")
	require.NoError(t, err)
	require.Len(t, got, 3, "hint must not drop other categories")
	assert.Equal(t, "q2", got[0].ID)
	assert.Equal(t, []string{"ethics", "prompting"}, b.Categories())
}

func TestMemoryBank_CancelledContext(t *testing.T) {
	b := NewMemoryBank([]Question{sampleQuestion("q1", "ethics")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.FetchCandidates(ctx, nil, "")
	assert.ErrorIs(t, err, context.Canceled)
}

const validBank = `{
  "version": 1,
  "questions": [
    {
      "id": "q1",
      "text": "Which prompt is most specific?",
      "category": "prompting",
      "difficulty_label": "foundational",
      "question_type": "single_choice",
      "irt_difficulty": -1.0,
      "discrimination": 1.1,
      "guessing": 0.25,
      "options": [
        {"id": "a", "text": "Summarize this.", "is_correct": false, "points": 0},
        {"id": "b", "text": "Summarize in 3 bullets for a CFO.", "is_correct": true, "points": 10}
      ]
    },
    {
      "id": "q2",
      "category": "ethics",
      "question_type": "scenario",
      "options": [{"id": "a", "is_correct": true}]
    }
  ]
}`

func TestParse_Valid(t *testing.T) {
	qs, err := Parse([]byte(validBank))
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, "q1", qs[0].ID)
	assert.Equal(t, TypeSingleChoice, qs[0].Type)
	assert.Equal(t, 0.25, qs[0].Guessing)
	assert.Equal(t, []string{"b"}, qs[0].CorrectOptionIDs())
	assert.Zero(t, qs[1].Discrimination, "uncalibrated items keep zero discrimination")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"missing questions", `{"version": 1}`},
		{"bad question type", `{"questions": [{"id": "q", "category": "c", "question_type": "essay", "options": [{"id": "a", "is_correct": true}]}]}`},
		{"no options", `{"questions": [{"id": "q", "category": "c", "question_type": "scenario", "options": []}]}`},
		{"unknown field", `{"questions": [], "extra": true}`},
		{"no correct option", `{"questions": [{"id": "q", "category": "c", "question_type": "scenario", "options": [{"id": "a", "is_correct": false}]}]}`},
		{"duplicate question", `{"questions": [
			{"id": "q", "category": "c", "question_type": "scenario", "options": [{"id": "a", "is_correct": true}]},
			{"id": "q", "category": "c", "question_type": "scenario", "options": [{"id": "a", "is_correct": true}]}]}`},
		{"duplicate option", `{"questions": [{"id": "q", "category": "c", "question_type": "scenario", "options": [{"id": "a", "is_correct": true}, {"id": "a", "is_correct": false}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "want *ValidationError, got %T", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, os.WriteFile(path, []byte(validBank), 0o644))

	qs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, qs, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

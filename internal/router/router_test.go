package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screen"
)

// stubScreen records what the router does to it.
type stubScreen struct {
	title   string
	initRan bool
	updates int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) {
	s.updates++
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "home"})

	question := &stubScreen{title: "question"}
	r.Push(question)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "question" {
		t.Errorf("expected active 'question', got %q", r.Active().Title())
	}
	if !question.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "history"})
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "home" {
		t.Errorf("expected active 'home', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Update(PopScreenMsg{})

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplaceKeepsDepth(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Update(PushScreenMsg{Screen: &stubScreen{title: "question"}})

	results := &stubScreen{title: "results"}
	r.Update(ReplaceScreenMsg{Screen: results})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "results" {
		t.Errorf("expected active 'results', got %q", r.Active().Title())
	}
	if !results.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}

	r.Pop()
	if r.Active().Title() != "home" {
		t.Errorf("expected pop from results to land on 'home', got %q", r.Active().Title())
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)
	question := &stubScreen{title: "question"}
	r.Push(question)

	r.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	if question.updates != 1 {
		t.Errorf("expected active screen to get 1 update, got %d", question.updates)
	}
	if home.updates != 0 {
		t.Errorf("expected covered screen to get no updates, got %d", home.updates)
	}
	if got := r.View(80, 24); got != "question" {
		t.Errorf("expected view of active screen, got %q", got)
	}
}

type refreshingScreen struct {
	stubScreen
	refreshed int
}

func (s *refreshingScreen) Refresh() tea.Cmd {
	s.refreshed++
	return nil
}

func TestPopRefreshesRevealedScreen(t *testing.T) {
	home := &refreshingScreen{stubScreen: stubScreen{title: "home"}}
	r := New(home)
	r.Push(&stubScreen{title: "history"})
	r.Pop()

	if home.refreshed != 1 {
		t.Errorf("expected revealed screen to refresh once, got %d", home.refreshed)
	}
}

package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/router"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screens/home"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screens/summary"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
)

func sized(t *testing.T, w, h int) AppModel {
	t.Helper()
	m := newAppModel(home.Options{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return updated.(AppModel)
}

func TestAppModel_TooSmall(t *testing.T) {
	m := sized(t, 60, 20)
	if !strings.Contains(m.render(), "Terminal too small") {
		t.Error("expected minimum size message")
	}
}

func TestAppModel_RendersHomeFrame(t *testing.T) {
	m := sized(t, 100, 34)
	view := m.render()
	for _, want := range []string{"AIBORG Assess", "Home", "Navigate"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in frame", want)
		}
	}
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := sized(t, 100, 34)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppModel_EscGoesToScreen(t *testing.T) {
	m := sized(t, 100, 34)
	res := summary.New(scoring.Result{AugmentationLevel: "beginner"}, session.Summary{}, "")
	m.router.Update(router.PushScreenMsg{Screen: res})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected the results screen to handle Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg from the results screen")
	}
	if !strings.Contains(m.render(), "Continue") {
		t.Error("expected the active screen's key hints in the footer")
	}
}

package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/router"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screen"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screens/history"
	sessionscreen "github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/screens/session"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/session"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/store"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/components"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/layout"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

// Options are the collaborators of the home screen. Snapshots and Results
// may be nil, which hides resume and history.
type Options struct {
	Engine    sessionscreen.Engine
	Snapshots store.SnapshotRepo
	Results   store.ResultRepo
	BankSize  int
}

type homeLoadedMsg struct {
	Resume *store.SnapshotInfo
	Last   *store.ResultRecord
	Err    error
}

// HomeScreen is the landing menu.
type HomeScreen struct {
	opts   Options
	menu   components.Menu
	resume *store.SnapshotInfo
	last   *store.ResultRecord
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates the home screen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

// Init looks up a resumable session and the latest result.
func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Refresh reloads after returning from an assessment or history.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	snaps, results := h.opts.Snapshots, h.opts.Results
	return func() tea.Msg {
		ctx := context.Background()
		var msg homeLoadedMsg
		if snaps != nil {
			active, err := snaps.List(ctx, session.StatusActive, 1)
			if err != nil {
				return homeLoadedMsg{Err: err}
			}
			if len(active) > 0 {
				msg.Resume = &active[0]
			}
		}
		if results != nil {
			recent, err := results.ListResults(ctx, 1)
			if err != nil {
				return homeLoadedMsg{Err: err}
			}
			if len(recent) > 0 {
				msg.Last = &recent[0]
			}
		}
		return msg
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(homeLoadedMsg); ok {
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
		}
		h.resume = msg.Resume
		h.last = msg.Last
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		if selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	engine := h.opts.Engine

	resume := components.MenuItem{Label: "Resume assessment", Disabled: true}
	if h.resume != nil {
		id := h.resume.SessionID
		resume.Disabled = engine == nil
		resume.Hint = fmt.Sprintf("%d answered, %s", h.resume.QuestionsAnswered, h.resume.UpdatedAt.Local().Format("Jan 02 15:04"))
		resume.Action = func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(engine, id)}
			}
		}
	}

	return []components.MenuItem{
		{Label: "Start assessment", Disabled: engine == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(engine, "")}
			}
		}},
		resume,
		{Label: "History", Disabled: h.opts.Results == nil, Action: func() tea.Cmd {
			results := h.opts.Results
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(results)}
			}
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight) || layout.IsCompactWidth(width)
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, RenderBanner(width, compact))
	sections = append(sections, theme.Subtitle.Render("Adaptive AI augmentation assessment"))

	var info []string
	if h.opts.BankSize > 0 {
		info = append(info, fmt.Sprintf("%d questions in the bank", h.opts.BankSize))
	}
	if h.last != nil {
		info = append(info, "Last result "+components.LevelBadge(h.last.Result.AugmentationLevel)+
			fmt.Sprintf(" %.1f/100", h.last.Result.ScaledScore))
	}
	if len(info) > 0 {
		sections = append(sections, theme.Body.Render(strings.Join(info, "   ")))
	}
	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(h.errMsg))
	}

	sections = append(sections, components.Card(h.menu.View(), min(cw, 56)))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

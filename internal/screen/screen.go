package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/layout"
)

// Screen is one page of the assessment TUI. The router owns a stack of them
// and only the top one receives input.
type Screen interface {
	Init() tea.Cmd

	// Update handles a message and returns the screen to keep on the stack.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body between header and footer.
	View(width, height int) string

	// Title is shown centred in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen put a short status (for example the current
// ability estimate) on the right of the header.
type StatusProvider interface {
	HeaderStatus() string
}

// Refresher is implemented by screens that reload their data when they
// become active again after the screen above them is popped.
type Refresher interface {
	Refresh() tea.Cmd
}

package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/ui/theme"
)

// OptionList renders the answer options of a question and collects the
// selection. With Multi set, space toggles options and enter submits the
// checked set; otherwise enter (or a number key) submits the option under
// the cursor.
type OptionList struct {
	Options   []bank.Option
	Multi     bool
	Cursor    int
	Checked   map[int]bool
	Submitted bool

	// Reveal marks correct and wrong choices after submission.
	Reveal bool
}

// NewOptionList creates an option list for q. Multiple-choice questions
// and questions with more than one correct option are multi-select.
func NewOptionList(q bank.Question) OptionList {
	return OptionList{
		Options: q.Options,
		Multi:   q.Type == bank.TypeMultipleChoice || len(q.CorrectOptionIDs()) > 1,
		Checked: make(map[int]bool),
	}
}

// Update handles navigation, toggling and submission.
func (o OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	if o.Submitted {
		return o, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if o.Cursor > 0 {
			o.Cursor--
		}
	case "down", "j":
		if o.Cursor < len(o.Options)-1 {
			o.Cursor++
		}
	case "space", " ":
		if o.Multi {
			o.toggle(o.Cursor)
		}
	case "enter":
		if o.Multi {
			if len(o.Checked) > 0 {
				o.Submitted = true
			}
			return o, nil
		}
		o.Checked = map[int]bool{o.Cursor: true}
		o.Submitted = true
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i >= len(o.Options) {
				return o, nil
			}
			o.Cursor = i
			if o.Multi {
				o.toggle(i)
			} else {
				o.Checked = map[int]bool{i: true}
				o.Submitted = true
			}
		}
	}
	return o, nil
}

func (o *OptionList) toggle(i int) {
	if o.Checked == nil {
		o.Checked = make(map[int]bool)
	}
	if o.Checked[i] {
		delete(o.Checked, i)
	} else {
		o.Checked[i] = true
	}
}

// SelectedIDs returns the checked option ids in display order.
func (o OptionList) SelectedIDs() []string {
	var ids []string
	for i, opt := range o.Options {
		if o.Checked[i] {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// View renders the options, wrapped to width.
func (o OptionList) View(width int) string {
	var b strings.Builder
	for i, opt := range o.Options {
		cursor := "  "
		if i == o.Cursor && !o.Submitted {
			cursor = "▸ "
		}
		mark := fmt.Sprintf("%d)", i+1)
		if o.Multi {
			box := "[ ]"
			if o.Checked[i] {
				box = "[x]"
			}
			mark += " " + box
		}
		line := lipgloss.NewStyle().Width(width).Render(fmt.Sprintf("%s%s  %s", cursor, mark, opt.Text))

		var style lipgloss.Style
		switch {
		case o.Submitted && o.Reveal && opt.IsCorrect:
			style = theme.Correct
		case o.Submitted && o.Reveal && o.Checked[i]:
			style = theme.Incorrect
		case o.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == o.Cursor:
			style = theme.Selected
		case o.Checked[i]:
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

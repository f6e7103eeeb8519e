package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// newInput builds a text input with a static cursor; nothing in these forms
// needs blink timers.
func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "│ "
	ti.CharLimit = 256
	ti.Width = 32
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(value)
	return ti
}

type field struct {
	label string
	input textinput.Model
}

// fields is an ordered set of labelled inputs with one focused entry.
type fields struct {
	items []field
	focus int
}

func (f *fields) add(label, placeholder, value string) {
	f.items = append(f.items, field{label: label, input: newInput(placeholder, value)})
}

func (f *fields) len() int { return len(f.items) }

func (f *fields) value(i int) string {
	if i < 0 || i >= len(f.items) {
		return ""
	}
	return f.items[i].input.Value()
}

func (f *fields) setValue(i int, v string) {
	if i >= 0 && i < len(f.items) {
		f.items[i].input.SetValue(v)
	}
}

// focusOn moves focus to i, clamped to the available fields.
func (f *fields) focusOn(i int) {
	if len(f.items) == 0 {
		f.focus = 0
		return
	}
	f.focus = min(max(i, 0), len(f.items)-1)
	for n := range f.items {
		if n == f.focus {
			f.items[n].input.Focus()
		} else {
			f.items[n].input.Blur()
		}
	}
}

func (f *fields) next() { f.focusOn((f.focus + 1) % max(len(f.items), 1)) }

func (f *fields) prev() { f.focusOn((f.focus - 1 + len(f.items)) % max(len(f.items), 1)) }

// update feeds msg to the focused input.
func (f *fields) update(msg tea.Msg) tea.Cmd {
	if len(f.items) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.items[f.focus].input, cmd = f.items[f.focus].input.Update(msg)
	return cmd
}

func (f *fields) view(styles Styles) string {
	lines := make([]string, 0, len(f.items))
	for _, it := range f.items {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, styles.Label.Render(it.label), it.input.View()))
	}
	return strings.Join(lines, "\n")
}

// isNavKey reports keys that move focus between fields.
func isNavKey(k string) bool {
	switch k {
	case "tab", "shift+tab", "up", "down":
		return true
	}
	return false
}

func (f *fields) navigate(k string) {
	switch k {
	case "tab", "down":
		f.next()
	case "shift+tab", "up":
		f.prev()
	}
}

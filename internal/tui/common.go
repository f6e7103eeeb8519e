package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/poku-e/kitchen/internal/model"
)

type op int

const (
	opLoad op = iota
	opSave
	opDelete
	opDecrement
)

func (o op) String() string {
	switch o {
	case opLoad:
		return "load"
	case opSave:
		return "save"
	case opDelete:
		return "delete"
	default:
		return "decrement"
	}
}

// result is implemented by every message that carries a store round trip.
type result interface{ result() }

// resultMsg is the outcome of one store call.
type resultMsg[T model.Entity] struct {
	op    op
	items []T
	err   error
}

func (resultMsg[T]) result() {}

// run wraps a store call as a command.
func run[T model.Entity](ctx context.Context, o op, call func(context.Context) ([]T, error)) tea.Cmd {
	return func() tea.Msg {
		items, err := call(ctx)
		return resultMsg[T]{op: o, items: items, err: err}
	}
}

func newSpinner(styles Styles) spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	return sp
}

// tick keeps the spinner going while something is in flight.
func tick(sp spinner.Model, active bool, msg spinner.TickMsg) (spinner.Model, tea.Cmd) {
	if !active {
		return sp, nil
	}
	return sp.Update(msg)
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(cursor, 0), n-1)
}

func isYes(k string) bool { return k == "y" || k == "Y" }

func isNo(k string) bool { return k == "n" || k == "N" || k == "esc" }

package view

// Mode is the state of a form dialog.
type Mode int

const (
	Closed Mode = iota
	Creating
	Editing
)

func (m Mode) String() string {
	switch m {
	case Creating:
		return "create"
	case Editing:
		return "edit"
	default:
		return "closed"
	}
}

// Dialog tracks whether a form is open and, in edit mode, which entity it
// edits. It is a value: transitions return a new Dialog.
//
// Opening an edit while another edit is open simply replaces the target.
type Dialog[T any] struct {
	mode     Mode
	targetID string
	target   T
}

func (d Dialog[T]) OpenCreate() Dialog[T] {
	return Dialog[T]{mode: Creating}
}

func (d Dialog[T]) OpenEdit(id string, target T) Dialog[T] {
	return Dialog[T]{mode: Editing, targetID: id, target: target}
}

func (d Dialog[T]) Close() Dialog[T] {
	return Dialog[T]{}
}

func (d Dialog[T]) Mode() Mode { return d.mode }

func (d Dialog[T]) IsOpen() bool { return d.mode != Closed }

func (d Dialog[T]) TargetID() string { return d.targetID }

// Target returns the entity being edited.
func (d Dialog[T]) Target() (T, bool) {
	return d.target, d.mode == Editing
}

// Title is the dialog heading for the given noun ("Item", "Recipe").
func (d Dialog[T]) Title(noun string) string {
	if d.mode == Editing {
		return "Edit " + noun
	}
	return "Add New " + noun
}

// DecrementDialog is the quick-action dialog for one stock item.
type DecrementDialog struct {
	ItemID string
	Name   string
	open   bool
}

func OpenDecrement(id, name string) DecrementDialog {
	return DecrementDialog{ItemID: id, Name: name, open: true}
}

func (d DecrementDialog) IsOpen() bool { return d.open }

func (d DecrementDialog) Close() DecrementDialog { return DecrementDialog{} }

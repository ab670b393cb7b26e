package console

// Mode is the state of an entity detail panel.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// DetailView tracks which record a detail panel shows and whether it is
// read-only or being edited. Selecting a record always lands in viewing
// mode; selecting while an edit is open discards the edit.
type DetailView struct {
	id   string
	mode Mode
}

func (v *DetailView) Select(id string) {
	v.id = id
	v.mode = ModeViewing
}

// StartEdit switches to editing mode. It reports false when no record is
// selected or an edit is already open.
func (v *DetailView) StartEdit() bool {
	if v.id == "" || v.mode != ModeViewing {
		return false
	}
	v.mode = ModeEditing
	return true
}

// FinishEdit returns to viewing mode; used for both save and cancel.
func (v *DetailView) FinishEdit() {
	v.mode = ModeViewing
}

func (v *DetailView) Clear() {
	v.id = ""
	v.mode = ModeViewing
}

func (v *DetailView) ID() string {
	return v.id
}

func (v *DetailView) Mode() Mode {
	return v.mode
}

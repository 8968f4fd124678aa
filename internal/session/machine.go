package session

import "github.com/lakshaymaurya-felt/depsweep/internal/project"

// State is the phase of the interactive session.
type State int

const (
	Browsing State = iota
	Confirming
	Done
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case Confirming:
		return "confirming"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Key is an input symbol. Drivers translate raw keystrokes into Keys.
type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyToggle
	KeyToggleAll
	KeySort
	KeyDelete
	KeyConfirm // the single affirmative answer to the delete prompt
	KeyQuit
	KeyInterrupt // quits from any state, abandoning a pending prompt
)

// Effect is work for the driver to carry out after a transition.
type Effect interface{ effect() }

// Render asks the driver to redraw.
type Render struct{}

// Delete asks the driver to delete Entries, a snapshot taken when the
// deletion was confirmed.
type Delete struct {
	Entries []project.Entry
}

// Quit asks the driver to exit.
type Quit struct{}

func (Render) effect() {}
func (Delete) effect() {}
func (Quit) effect()   {}

// Session is the complete interactive state. It is a value: Step and
// ApplyDeletion return a new Session and leave their input untouched.
type Session struct {
	State     State
	Dataset   Dataset
	Selection Selection

	// Pending is the snapshot shown on the confirmation prompt.
	Pending []project.Entry

	// PageSize is how far page up and page down move the cursor.
	PageSize int
}

// New starts a session in the browsing state.
func New(entries []project.Entry, key SortKey) Session {
	return Session{
		State:     Browsing,
		Dataset:   NewDataset(entries),
		Selection: NewSelection(key),
		PageSize:  DefaultRows,
	}
}

// View returns the current sorted view.
func (s Session) View() []project.Entry {
	return s.Dataset.SortedView(s.Selection.Sort)
}

// PendingSize sums the sizes of the pending snapshot.
func (s Session) PendingSize() int64 {
	var total int64
	for _, e := range s.Pending {
		total += e.Size
	}
	return total
}

// Step applies one key to s.
func Step(s Session, key Key) (Session, []Effect) {
	if key == KeyInterrupt && s.State != Done {
		s.Pending = nil
		s.State = Done
		return s, []Effect{Quit{}}
	}
	switch s.State {
	case Browsing:
		return browse(s, key)
	case Confirming:
		return confirm(s, key)
	default:
		return s, nil
	}
}

func browse(s Session, key Key) (Session, []Effect) {
	view := s.View()
	n := len(view)
	page := s.PageSize
	if page <= 0 {
		page = DefaultRows
	}

	switch key {
	case KeyUp:
		s.Selection = s.Selection.MoveCursor(-1, n)
	case KeyDown:
		s.Selection = s.Selection.MoveCursor(1, n)
	case KeyPageUp:
		s.Selection = s.Selection.MoveCursor(-page, n)
	case KeyPageDown:
		s.Selection = s.Selection.MoveCursor(page, n)
	case KeyHome:
		s.Selection = s.Selection.SetCursor(0, n)
	case KeyEnd:
		s.Selection = s.Selection.SetCursor(n-1, n)
	case KeyToggle:
		s.Selection = s.Selection.ToggleSelection(view, s.Selection.Cursor)
	case KeyToggleAll:
		s.Selection = s.Selection.ToggleSelectAll(view)
	case KeySort:
		s.Selection = s.Selection.CycleSort()
	case KeyDelete:
		pending := s.Selection.SelectedEntries(view)
		if len(pending) == 0 {
			return s, nil
		}
		s.Pending = pending
		s.State = Confirming
	case KeyQuit:
		s.State = Done
		return s, []Effect{Quit{}}
	default:
		return s, nil
	}
	return s, []Effect{Render{}}
}

// confirm blocks on exactly one key: the affirmative answer starts the
// deletion, anything else returns to browsing with nothing changed.
func confirm(s Session, key Key) (Session, []Effect) {
	pending := s.Pending
	s.Pending = nil
	s.State = Browsing
	if key != KeyConfirm {
		return s, []Effect{Render{}}
	}
	return s, []Effect{Delete{Entries: pending}, Render{}}
}

// ApplyDeletion removes every attempted entry from the dataset, whether or
// not its removal succeeded, and clears the selection.
func (s Session) ApplyDeletion(attempted []project.Entry) Session {
	paths := make([]string, 0, len(attempted))
	for _, e := range attempted {
		paths = append(paths, e.Path)
	}
	s.Dataset = s.Dataset.Remove(paths)
	s.Selection = s.Selection.Clear().SetCursor(s.Selection.Cursor, s.Dataset.Len())
	return s
}

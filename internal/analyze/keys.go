package analyze

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lakshaymaurya-felt/depsweep/internal/session"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Home      key.Binding
	End       key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Sort      key.Binding
	Delete    key.Binding
	Confirm   key.Binding
	Help      key.Binding
	Quit      key.Binding
	Interrupt key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "bottom"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "select"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete", "enter"),
			key.WithHelp("d", "delete selected"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.ToggleAll, k.Sort, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Toggle, k.ToggleAll, k.Sort, k.Delete, k.Help, k.Quit},
	}
}

// translate maps a keystroke to the session input symbol for state.
// ctrl+c always interrupts. While confirming only the affirmative key
// means anything else; every other key cancels.
func (k keyMap) translate(state session.State, msg tea.KeyMsg) session.Key {
	if key.Matches(msg, k.Interrupt) {
		return session.KeyInterrupt
	}
	if state == session.Confirming {
		if key.Matches(msg, k.Confirm) {
			return session.KeyConfirm
		}
		return session.KeyOther
	}

	switch {
	case key.Matches(msg, k.Up):
		return session.KeyUp
	case key.Matches(msg, k.Down):
		return session.KeyDown
	case key.Matches(msg, k.PageUp):
		return session.KeyPageUp
	case key.Matches(msg, k.PageDown):
		return session.KeyPageDown
	case key.Matches(msg, k.Home):
		return session.KeyHome
	case key.Matches(msg, k.End):
		return session.KeyEnd
	case key.Matches(msg, k.Toggle):
		return session.KeyToggle
	case key.Matches(msg, k.ToggleAll):
		return session.KeyToggleAll
	case key.Matches(msg, k.Sort):
		return session.KeySort
	case key.Matches(msg, k.Delete):
		return session.KeyDelete
	case key.Matches(msg, k.Quit):
		return session.KeyQuit
	}
	return session.KeyOther
}

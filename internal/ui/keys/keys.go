// Package keys defines the key bindings shared by every screen.
package keys

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Back      key.Binding
	Enter     key.Binding
	Tab       key.Binding
	BackTab   key.Binding
	Save      key.Binding
	Up        key.Binding
	Down      key.Binding
	Help      key.Binding

	New    key.Binding
	Edit   key.Binding
	Delete key.Binding

	Search       key.Binding
	Filter       key.Binding
	ClearFilters key.Binding
	Status       key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	Refresh      key.Binding

	Dashboard key.Binding
	Tasks     key.Binding
	Projects  key.Binding
	Profile   key.Binding
	Logout    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "select")),
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		BackTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		ClearFilters: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		Status:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next status")),
		NextPage:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		PrevPage:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous page")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

		Dashboard: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		Tasks:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "tasks")),
		Projects:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "projects")),
		Profile:   key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "profile")),
		Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
	}
}

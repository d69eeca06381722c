package ui

import "github.com/charmbracelet/bubbles/key"

// listKeyMap holds the bindings active in the projects table.
type listKeyMap struct {
	Reload  key.Binding
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Tab     key.Binding
	Sidebar key.Binding
	Quit    key.Binding
}

func newListKeyMap() listKeyMap {
	return listKeyMap{
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "sidebar"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reload, k.Add, k.Edit, k.Delete, k.Tab, k.Sidebar, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// overviewKeyMap holds the bindings active on the overview.
type overviewKeyMap struct {
	Sync    key.Binding
	Reload  key.Binding
	Tab     key.Binding
	Sidebar key.Binding
	Quit    key.Binding
}

func newOverviewKeyMap() overviewKeyMap {
	list := newListKeyMap()
	return overviewKeyMap{
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "weekly sync"),
		),
		Reload:  list.Reload,
		Tab:     list.Tab,
		Sidebar: list.Sidebar,
		Quit:    list.Quit,
	}
}

func (k overviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sync, k.Reload, k.Tab, k.Sidebar, k.Quit}
}

func (k overviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// formKeyMap holds the bindings active in the add and edit forms.
type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func newFormKeyMap() formKeyMap {
	return formKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// confirmKeyMap holds the bindings active in the delete confirmation.
type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

func newConfirmKeyMap() confirmKeyMap {
	return confirmKeyMap{
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "delete"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "keep"),
		),
	}
}

func (k confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

func (k confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

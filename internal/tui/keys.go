package tui

import "github.com/charmbracelet/bubbles/key"

// globalKeys work in both panes.
type globalKeys struct {
	Save       key.Binding
	Cancel     key.Binding
	SwitchPane key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	PageSize   key.Binding
	Reload     key.Binding
	Quit       key.Binding
}

// formKeys holds key bindings for the form pane.
type formKeys struct {
	globalKeys
	Next       key.Binding
	Prev       key.Binding
	OptionNext key.Binding
	OptionPrev key.Binding
}

// ShortHelp returns the form bindings for the help bar.
func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.OptionNext, k.Save, k.Cancel, k.SwitchPane, k.Quit}
}

// FullHelp returns the form bindings grouped for expanded help.
func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.OptionNext, k.OptionPrev},
		{k.Save, k.Cancel, k.Reload},
		{k.SwitchPane, k.NextPage, k.PrevPage, k.PageSize, k.Quit},
	}
}

// tableKeys holds key bindings for the table pane.
type tableKeys struct {
	globalKeys
	Up   key.Binding
	Down key.Binding
	Edit key.Binding
}

// ShortHelp returns the table bindings for the help bar.
func (k tableKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.NextPage, k.PrevPage, k.PageSize, k.SwitchPane, k.Quit}
}

// FullHelp returns the table bindings grouped for expanded help.
func (k tableKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Edit},
		{k.NextPage, k.PrevPage, k.PageSize, k.Reload},
		{k.SwitchPane, k.Cancel, k.Quit},
	}
}

// GlobalKeyMap returns the bindings shared by both panes.
func GlobalKeyMap() globalKeys {
	return globalKeys{
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "switch pane"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "prev page"),
		),
		PageSize: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "page size"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// FormKeyMap returns the key bindings for the form pane.
func FormKeyMap() formKeys {
	return formKeys{
		globalKeys: GlobalKeyMap(),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "prev field"),
		),
		OptionNext: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("←/→", "choose state/district"),
		),
		OptionPrev: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous option"),
		),
	}
}

// TableKeyMap returns the key bindings for the table pane.
func TableKeyMap() tableKeys {
	return tableKeys{
		globalKeys: GlobalKeyMap(),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit"),
		),
	}
}

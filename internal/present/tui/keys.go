package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Exclude  key.Binding
	More     key.Binding
	Search   key.Binding
	Excludes key.Binding
	View     key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Exclude, k.More, k.Search, k.Excludes, k.View, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.More},
		{k.Exclude, k.Excludes, k.Search},
		{k.View, k.Refresh, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Exclude: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "exclude"),
	),
	More: key.NewBinding(
		key.WithKeys("m", "pgdown"),
		key.WithHelp("m", "more"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Excludes: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "excludes"),
	),
	View: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "project/date"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r", "ctrl+r"),
		key.WithHelp("r", "refresh"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

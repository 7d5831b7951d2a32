package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the editor's keyboard shortcuts
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Edit        key.Binding
	ToggleGroup key.Binding
	Reset       key.Binding
	ResetAll    key.Binding
	Write       key.Binding
	Cancel      key.Binding
	Quit        key.Binding
}

func NewKeyMap() KeyMap {
	return KeyMap{
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
		ToggleGroup: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "fold group"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		ResetAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset all"),
		),
		Write: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "write"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.ToggleGroup, k.Reset, k.ResetAll, k.Write, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ToggleGroup},
		{k.Edit, k.Cancel, k.Reset, k.ResetAll},
		{k.Write, k.Quit},
	}
}

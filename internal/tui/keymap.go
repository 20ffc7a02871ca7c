package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the soundboard key bindings.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Record     key.Binding
	Unbind     key.Binding
	Play       key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default soundboard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Record: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "record key"),
		),
		Unbind: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove key"),
		),
		Play: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "play"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "louder"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "quieter"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Unbind, k.Play, k.VolumeUp, k.VolumeDown, k.Quit}
}

// FullHelp returns every binding, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Record, k.Unbind, k.Play},
		{k.VolumeUp, k.VolumeDown},
		{k.Quit, k.ForceQuit},
	}
}

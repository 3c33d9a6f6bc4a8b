// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list or to the previous item.
	Up key.Binding

	// Down navigates down in a list or to the next item.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// Toggle adds or removes a secondary set.
	Toggle key.Binding

	// NextTab cycles to the next tab.
	NextTab key.Binding

	// PrevTab cycles to the previous tab.
	PrevTab key.Binding

	// NextSection moves to the next section.
	NextSection key.Binding

	// PrevSection moves to the previous section.
	PrevSection key.Binding

	// NextCollection moves to the next collection.
	NextCollection key.Binding

	// PrevCollection moves to the previous collection.
	PrevCollection key.Binding

	// Sync downloads the catalog again.
	Sync key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space/x", "toggle secondary"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous tab"),
		),
		NextSection: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next section"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous section"),
		),
		NextCollection: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next collection"),
		),
		PrevCollection: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous collection"),
		),
		Sync: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "sync"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Sync, k.Help, k.Quit}
}

// ReadHelp returns keybindings for the read view.
func (k *KeyMap) ReadHelp() []key.Binding {
	return []key.Binding{k.Up, k.NextSection, k.NextCollection, k.NextTab}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Toggle},
		{k.PrevSection, k.NextSection, k.PrevCollection, k.NextCollection},
		{k.NextTab, k.PrevTab, k.Back},
		{k.Sync, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}

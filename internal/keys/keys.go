package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down      key.Binding
	Up        key.Binding
	Select    key.Binding
	FocusNext key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search and filters
	Search       key.Binding
	NextAccount  key.Binding
	PrevAccount  key.Binding
	NextFolder   key.Binding
	PrevFolder   key.Binding
	NextCategory key.Binding
	PrevCategory key.Binding
	ClearFilters key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Email actions
	SetCategory  key.Binding
	Recategorize key.Binding
	SuggestReply key.Binding
	CopyReply    key.Binding
	ToggleHTML   key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open email"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		NextAccount: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a/A", "account"),
		),
		PrevAccount: key.NewBinding(
			key.WithKeys("A"),
		),
		NextFolder: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f/F", "folder"),
		),
		PrevFolder: key.NewBinding(
			key.WithKeys("F"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c/C", "category filter"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("C"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		SetCategory: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "set category"),
		),
		Recategorize: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "AI recategorize"),
		),
		SuggestReply: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "suggest reply"),
		),
		CopyReply: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy reply"),
		),
		ToggleHTML: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "toggle HTML"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.FocusNext,
		k.Search, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.FocusNext, k.Back, k.Quit},
		{k.Search, k.NextAccount, k.NextFolder, k.NextCategory, k.ClearFilters},
		{k.Command, k.Help, k.Refresh},
		{k.SetCategory, k.Recategorize, k.SuggestReply, k.CopyReply, k.ToggleHTML},
	}
}

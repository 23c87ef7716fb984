package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageDown key.Binding
	Enter    key.Binding
	Escape   key.Binding

	// Views
	SearchView   key.Binding
	BrowseView   key.Binding
	WishlistView key.Binding

	// Actions
	CycleType key.Binding
	NextFeed  key.Binding
	PrevFeed  key.Binding
	Toggle    key.Binding
	Details   key.Binding
	Sort      key.Binding
	Remove    key.Binding
	ClearList key.Binding
	Filter    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+j"),
			key.WithHelp("↓", "down"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "load more"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search now"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		SearchView: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "search"),
		),
		BrowseView: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "browse"),
		),
		WishlistView: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "wishlist"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "result type"),
		),
		NextFeed: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next feed"),
		),
		PrevFeed: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev feed"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "toggle wishlist"),
		),
		Details: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "details"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove"),
		),
		ClearList: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear collection"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

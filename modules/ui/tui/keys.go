package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Tab      key.Binding
	Enter    key.Binding
	Escape   key.Binding

	// View jumps
	Dashboard key.Binding
	Project   key.Binding
	Logs      key.Binding

	// Session tabs
	TabChat     key.Binding
	TabTasks    key.Binding
	TabFiles    key.Binding
	TabSettings key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding

	// Actions
	NewProject key.Binding
	Input      key.Binding
	CancelQ    key.Binding
	Refresh    key.Binding
	Filter     key.Binding

	// Other
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings
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
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "bottom"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Dashboard: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "dashboard"),
		),
		Project: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "project"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logs"),
		),

		TabChat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "chat tab"),
		),
		TabTasks: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tasks tab"),
		),
		TabFiles: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "files tab"),
		),
		TabSettings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev tab"),
		),

		NewProject: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new project"),
		),
		Input: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "type answer"),
		),
		CancelQ: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel question"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r", "f5"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
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
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.PageUp, k.PageDown, k.Home, k.End},
		{k.Tab, k.Enter, k.Escape},
		{k.Dashboard, k.Project, k.Logs},
		{k.TabChat, k.TabTasks, k.TabFiles, k.TabSettings},
		{k.NewProject, k.Input, k.CancelQ, k.Filter},
		{k.Refresh, k.Help, k.Quit},
	}
}

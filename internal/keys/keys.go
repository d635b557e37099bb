package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	Search  key.Binding
	Command key.Binding
	Help    key.Binding
	Refresh key.Binding

	// Views
	ViewSchedule      key.Binding
	ViewGantt         key.Binding
	ViewCalendar      key.Binding
	ViewTeam          key.Binding
	ViewNotifications key.Binding
	Sheets            key.Binding
	Assistant         key.Binding
	Settings          key.Binding

	// Timeline
	ToggleMode key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Today      key.Binding

	// Task actions
	Filter   key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Start    key.Binding
	Unstart  key.Binding
	Progress key.Binding
	Regress  key.Binding

	// Notifications
	MarkRead    key.Binding
	MarkAllRead key.Binding
	ClearAll    key.Binding
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
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous period"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next period"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
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
			key.WithHelp("r", "sync now"),
		),
		ViewSchedule: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "schedule"),
		),
		ViewGantt: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "gantt"),
		),
		ViewCalendar: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "calendar"),
		),
		ViewTeam: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "team"),
		),
		ViewNotifications: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "notifications"),
		),
		Sheets: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "spreadsheets"),
		),
		Assistant: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "assistant"),
		),
		Settings: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "settings"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "week/month"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filters"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start task"),
		),
		Unstart: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unstart task"),
		),
		Progress: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "progress +10%"),
		),
		Regress: key.NewBinding(
			key.WithKeys("_"),
			key.WithHelp("_", "progress -10%"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "mark all read"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "clear all"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back, k.Quit},
		{k.ViewSchedule, k.ViewGantt, k.ViewCalendar, k.ViewTeam, k.ViewNotifications, k.Sheets, k.Assistant, k.Settings},
		{k.Search, k.Filter, k.Command, k.Help, k.Refresh, k.ToggleMode, k.ZoomIn, k.ZoomOut, k.Today},
		{k.New, k.Edit, k.Delete, k.Start, k.Unstart, k.Progress, k.Regress},
		{k.MarkRead, k.MarkAllRead, k.ClearAll},
	}
}

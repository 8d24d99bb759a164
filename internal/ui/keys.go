package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	Log        key.Binding
	CycleTheme key.Binding
	Refresh    key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// Screen switching
	ScreenTracking key.Binding
	ScreenWallet   key.Binding
	ScreenChats    key.Binding

	// Screen actions
	SwitchOrder key.Binding
	Search      key.Binding
	Up          key.Binding
	Down        key.Binding

	// Input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		Log: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Show recent log"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next screen"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous screen"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		ScreenTracking: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Tracking"),
		),
		ScreenWallet: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Wallet"),
		),
		ScreenChats: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Chats"),
		),

		SwitchOrder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Track another order"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search chats"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScreenTracking, k.ScreenWallet, k.ScreenChats, k.Tab, k.ShiftTab},
		{k.Refresh, k.SwitchOrder, k.Search, k.Up, k.Down, k.Escape},
		{k.CycleTheme, k.Log, k.Help, k.Quit},
	}
}

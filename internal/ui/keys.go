package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Refresh    key.Binding
	Logs       key.Binding

	// View switching
	ViewDashboard key.Binding
	ViewOrders    key.Binding
	ViewProducts  key.Binding
	ViewAds       key.Binding
	ViewMessages  key.Binding

	// Actions
	Fulfill     key.Binding
	Respond     key.Binding
	AddProduct  key.Binding
	NewCampaign key.Binding
	Search      key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Search/input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Show log"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Refresh view"),
		),

		// View switching
		ViewDashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Dashboard"),
		),
		ViewOrders: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Orders"),
		),
		ViewProducts: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Products"),
		),
		ViewAds: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Ads"),
		),
		ViewMessages: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Customer service"),
		),

		// Actions
		Fulfill: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Fulfill order"),
		),
		Respond: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Auto-respond"),
		),
		AddProduct: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add to store"),
		),
		NewCampaign: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New campaign"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search products"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Scroll detail up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Scroll detail down"),
		),

		// Search/input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Views
		{k.Tab, k.ViewDashboard, k.ViewOrders, k.ViewProducts, k.ViewAds, k.ViewMessages},
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		// Actions
		{k.Fulfill, k.Respond, k.AddProduct, k.NewCampaign, k.Search, k.Refresh},
		// General
		{k.CycleTheme, k.Logs, k.Help, k.Quit},
	}
}

package tui

import "github.com/charmbracelet/lipgloss"

// styles contains all lipgloss styles used by the TUI.
var styles = struct {
	// Header styles
	Title    lipgloss.Style
	Position lipgloss.Style

	// Card styles
	Front   lipgloss.Style
	Back    lipgloss.Style
	Divider lipgloss.Style

	// Rating row styles
	Again    lipgloss.Style
	Hard     lipgloss.Style
	Good     lipgloss.Style
	Easy     lipgloss.Style
	Interval lipgloss.Style

	// Footer and status styles
	Footer  lipgloss.Style
	Error   lipgloss.Style
	Summary lipgloss.Style
	Count   lipgloss.Style
}{
	// Header styles
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Position: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	// Card styles
	Front: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("252")),

	Back: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	// Rating row styles
	Again: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Hard: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	Good: lipgloss.NewStyle().
		Foreground(lipgloss.Color("114")),

	Easy: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Interval: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	// Footer and status styles
	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Error: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196")),

	Summary: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),

	Count: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),
}

package ui

import "github.com/charmbracelet/lipgloss"

// ANSI palette colors so the output follows the terminal theme.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle is dimmed so command names stand out.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)

	// SecretStyle highlights values the operator has to copy.
	SecretStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

// ABOUTME: lipgloss styles for diagnostics and summaries printed by the CLI.
// ABOUTME: StyleForSeverity maps lint severities to their display styles.
package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/swarmbase/lint"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	RuleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// StyleForSeverity returns the style for a lint severity.
func StyleForSeverity(severity string) lipgloss.Style {
	switch severity {
	case lint.SeverityError:
		return ErrorStyle
	case lint.SeverityWarning:
		return WarningStyle
	default:
		return InfoStyle
	}
}

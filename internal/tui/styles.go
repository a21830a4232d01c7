package tui

import "github.com/charmbracelet/lipgloss"

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	doneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	statStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	okMarkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))

	boxStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	currentBoxStyle   = boxStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	correctBoxStyle   = boxStyle.BorderForeground(lipgloss.Color("#52C41A"))
	incorrectBoxStyle = boxStyle.BorderForeground(lipgloss.Color("#FF4D4F"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0")).
			Background(lipgloss.Color("#2A2A2A")).
			Padding(0, 1)
	resultCardStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

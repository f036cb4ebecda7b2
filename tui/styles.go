package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	gridStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	wonStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	lostStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	headStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	bodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	targetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	cursorStyle = lipgloss.NewStyle().Reverse(true)
	flagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hazardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	hiddenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

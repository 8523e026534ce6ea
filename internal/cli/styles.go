package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	subtext0 = lipgloss.Color("#a6adc8")
	green    = lipgloss.Color("#a6e3a1")
	sapphire = lipgloss.Color("#74c7ec")
)

var (
	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	headerStyle = cellStyle.
			Foreground(sapphire).
			Bold(true)

	borderStyle = lipgloss.NewStyle().Foreground(subtext0)

	successStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
)

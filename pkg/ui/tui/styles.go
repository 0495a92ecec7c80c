package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Color palette
	neonCyan   = lipgloss.Color("#00FFFF")
	neonGreen  = lipgloss.Color("#39FF14")
	neonYellow = lipgloss.Color("#FFFF00")
	neonOrange = lipgloss.Color("#FF6700")
	neonRed    = lipgloss.Color("#FF0000")
	darkBg     = lipgloss.Color("#0A0E27")
	dimWhite   = lipgloss.Color("#B0B0B0")

	// Base styles
	baseStyle = lipgloss.NewStyle().
			Background(darkBg).
			Foreground(dimWhite)

	// Title bar
	titleStyle = lipgloss.NewStyle().
			Background(neonCyan).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Padding(0, 1)

	// Panel styles
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonCyan).
			Padding(0, 2)

	// Stats styles
	statsLabelStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(neonRed).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(neonOrange).
			Bold(true)

	// Item list styles
	itemFetchedStyle = lipgloss.NewStyle().
				Foreground(neonGreen)

	itemSkippedStyle = lipgloss.NewStyle().
				Foreground(dimWhite).
				Faint(true)

	itemFailedStyle = lipgloss.NewStyle().
			Foreground(neonRed)

	// Download speed style
	speedStyle = lipgloss.NewStyle().
			Foreground(neonCyan)

	// Help footer
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(1, 0, 0, 2)
)

// GetPercentStyle returns the style for the completion label based on how
// far along the run is
func GetPercentStyle(percentage float64) lipgloss.Style {
	switch {
	case percentage >= 0.8:
		return lipgloss.NewStyle().Foreground(neonGreen)
	case percentage >= 0.5:
		return lipgloss.NewStyle().Foreground(neonYellow)
	case percentage >= 0.3:
		return lipgloss.NewStyle().Foreground(neonOrange)
	default:
		return lipgloss.NewStyle().Foreground(neonCyan)
	}
}

package theme

import "github.com/charmbracelet/lipgloss"

var (
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Foreground(Text).
		Padding(0, 1)

	Title  = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted  = lipgloss.NewStyle().Foreground(Subtext0)
	Hot    = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Good   = lipgloss.NewStyle().Foreground(Green)
	Header = lipgloss.NewStyle().Foreground(Lavender).Bold(true).Padding(0, 1)
	Cell   = lipgloss.NewStyle().Foreground(Text).Padding(0, 1)
)

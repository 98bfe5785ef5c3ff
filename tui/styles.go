package tui

import "github.com/charmbracelet/lipgloss"

const (
	purple = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#FF0000")
	grey   = lipgloss.Color("#626262")
	white  = lipgloss.Color("#FAFAFA")
	violet = lipgloss.Color("#874BFD")
	amber  = lipgloss.Color("#F5A623")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(purple).MarginTop(1).MarginBottom(1)
	dimStyle    = lipgloss.NewStyle().Foreground(grey)
	okStyle     = lipgloss.NewStyle().Foreground(green)
	errorStyle  = lipgloss.NewStyle().Foreground(red)
	cursorStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)

	// Now playing
	trackStyle = lipgloss.NewStyle().Bold(true).Foreground(white).Background(purple).Padding(0, 1)
	scrubStyle = lipgloss.NewStyle().Foreground(amber)

	// Transcript panel
	panelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(violet).Padding(0, 1)
	activeLineStyle = lipgloss.NewStyle().Bold(true).Foreground(white).Background(purple)
	pastLineStyle   = dimStyle
)

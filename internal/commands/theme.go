package commands

import "github.com/charmbracelet/lipgloss"

const (
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext  lipgloss.Color = "#a6adc8"
	colorOverlay  lipgloss.Color = "#6c7086"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorRed      lipgloss.Color = "#f38ba8"
	colorLavender lipgloss.Color = "#b4befe"
	colorPeach    lipgloss.Color = "#fab387"
)

const (
	colorAccent  = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorToday   = colorPeach
)

// cellWidth fits "Sáb" and a two digit day with padding.
const cellWidth = 5

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(colorSubtext)
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	headerStyle  = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right).Foreground(colorSubtext)
	dayStyle     = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right).Foreground(colorText)
	outsideStyle = dayStyle.Foreground(colorOverlay).Faint(true)
	todayStyle   = dayStyle.Bold(true).Foreground(colorToday)
)

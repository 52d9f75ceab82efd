package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the watch view
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - good air quality
	WarningColor = lipgloss.Color("#FFA500") // Orange - elevated readings
	ErrorColor   = lipgloss.Color("#FF5555") // Red - unhealthy readings
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60 // Minimum supported terminal width
	MaxContentWidth  = 80 // Maximum content width before capping
)

// WHO 24-hour guideline values, µg/m³. Used only to pick a display color.
const (
	pm25WarnLevel = 15.0
	pm25HighLevel = 35.0
	pm10WarnLevel = 45.0
	pm10HighLevel = 100.0
)

var (
	// TitleStyle is for the view header
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(2)

	// PortStyle is for the port path under the title
	PortStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)

	// LabelStyle is for reading labels ("PM2.5", "PM10")
	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(10).
			PaddingLeft(2)

	// ValueStyle is the base style for reading values
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// StatusStyle is for the waiting/last-update line
	StatusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)

	// HelpStyle is for the key binding help line
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)
)

// PM25ValueStyle colors a PM2.5 reading by severity.
func PM25ValueStyle(value float64) lipgloss.Style {
	return severityStyle(value, pm25WarnLevel, pm25HighLevel)
}

// PM10ValueStyle colors a PM10 reading by severity.
func PM10ValueStyle(value float64) lipgloss.Style {
	return severityStyle(value, pm10WarnLevel, pm10HighLevel)
}

func severityStyle(value, warn, high float64) lipgloss.Style {
	switch {
	case value >= high:
		return ValueStyle.Foreground(ErrorColor)
	case value >= warn:
		return ValueStyle.Foreground(WarningColor)
	default:
		return ValueStyle.Foreground(SuccessColor)
	}
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

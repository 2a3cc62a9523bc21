package ui

import "github.com/charmbracelet/lipgloss"

// Standard ANSI colors so the UI follows the terminal theme.
var (
	colorBorder = lipgloss.ANSIColor(8)  // bright black
	colorTitle  = lipgloss.ANSIColor(10) // bright green
	colorText   = lipgloss.ANSIColor(7)  // white
	colorDim    = lipgloss.ANSIColor(8)  // bright black
	colorAccent = lipgloss.ANSIColor(11) // bright yellow
	colorPlay   = lipgloss.ANSIColor(10) // bright green
	colorMute   = lipgloss.ANSIColor(9)  // bright red
	colorBob    = lipgloss.ANSIColor(14) // bright cyan
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			Width(66)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	playStyle = lipgloss.NewStyle().
			Foreground(colorPlay).
			Bold(true)

	muteStyle = lipgloss.NewStyle().
			Foreground(colorMute).
			Bold(true)

	waitStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Blink(true)

	bobStyle = lipgloss.NewStyle().
			Foreground(colorBob).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorMute)
)

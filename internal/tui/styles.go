package tui

import "github.com/charmbracelet/lipgloss"

// One Dark Pro color palette
var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")

	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")

	ColorBorder = lipgloss.Color("#3F4451")
)

// Component styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	ScreenTitleStyle = lipgloss.NewStyle().
				Foreground(ColorMagenta).
				Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// Task rows
	TaskOpenStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Strikethrough(true)

	TaskSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorBlue).
				Bold(true)

	TaskBusyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	// Status line
	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				PaddingLeft(1)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			PaddingLeft(1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)
)

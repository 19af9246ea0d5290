package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/launchpad/internal/models"
)

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorWhite)

	unfocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)
)

// Tab styles.
var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// List styles.
var (
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})
)

// Deployment badge styles.
var (
	badgeIdleStyle     = lipgloss.NewStyle().Foreground(colorDim)
	badgeStartingStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	badgeRunningStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// Output entry styles, one per kind.
var (
	outputStdoutStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	outputStderrStyle  = lipgloss.NewStyle().Foreground(colorOrange)
	outputSystemStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	outputSuccessStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	outputErrorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

func outputStyle(kind models.OutputKind) lipgloss.Style {
	switch kind {
	case models.KindStderr:
		return outputStderrStyle
	case models.KindSystem:
		return outputSystemStyle
	case models.KindSuccess:
		return outputSuccessStyle
	case models.KindError:
		return outputErrorStyle
	default:
		return outputStdoutStyle
	}
}

// Overlay styles.
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				MarginBottom(1)

	overlayDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Mode header style (output panel).
var modeHeaderStyle = lipgloss.NewStyle().
	Background(lipgloss.AdaptiveColor{Light: "237", Dark: "237"}).
	Foreground(colorGreen).
	Bold(true).
	Padding(0, 1)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Form and settings styles.
var (
	formLabelStyle = lipgloss.NewStyle().
			Bold(true)

	formFocusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorCyan)

	settingsLabelStyle = lipgloss.NewStyle().
				Width(20).
				Foreground(colorDim)

	settingsValueStyle = lipgloss.NewStyle().
				Foreground(colorWhite)

	settingsToggleOn = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	settingsToggleOff = lipgloss.NewStyle().
				Foreground(colorRed)

	settingsCursorStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})
)

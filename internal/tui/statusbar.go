package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// confirmMode values.
const (
	confirmNone = 0
	confirmQuit = 1
	confirmStop = 2
)

func renderStatusBar(m *Model, width int) string {
	switch m.confirmMode {
	case confirmQuit:
		return renderConfirmBar("Deployment running. Quit? (y/n)", width)
	case confirmStop:
		return renderConfirmBar("Stop deployment #"+shortID(m.ctrl.Session().ActiveCommandID)+"? (y/n)", width)
	}

	// Error display
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	if m.notice != "" {
		return renderNoticeBar(m.notice, width)
	}

	// Context-sensitive key hints
	left := " " + getKeyHints(m)

	// Connection status
	var right string
	if m.connected {
		right = lipgloss.NewStyle().Foreground(colorGreen).Render("Connected") + " "
	} else {
		right = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("⚠ Disconnected") + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m *Model) string {
	if m.showHelp {
		return keyHint("Esc", "close")
	}

	base := keyHint("Ctrl+q", "quit") + "  " + keyHint("Ctrl+h", "help") + "  " + keyHint("Tab", "switch")
	if m.ctrl.Session().Active() {
		base += "  " + keyHint("Ctrl+x", "stop")
	}

	if m.focusedPanel == 0 {
		switch m.leftTab {
		case 0: // Deploy
			if m.form.Focused() {
				return base + "  " + keyHint("Enter", "deploy") + "  " + keyHint("↑/↓", "fields")
			}
			return base + "  " + keyHint("Enter", "use repo") + "  " + keyHint("Ctrl+r", "refresh")
		case 1: // Settings
			if m.settingsForm.IsEditing() {
				return base + "  " + keyHint("Enter", "save") + "  " + keyHint("Esc", "cancel")
			}
			return base + "  " + keyHint("j/k", "navigate") + "  " +
				keyHint("Enter", "edit") + "  " + keyHint("Space", "toggle")
		}
	} else {
		switch m.rightTab {
		case 0: // Output
			hints := base + "  " + keyHint("PgUp/PgDn", "scroll")
			if !m.outputView.Following() {
				hints += "  " + keyHint("G", "follow")
			}
			return hints
		case 1: // History
			return base + "  " + keyHint("Enter", "view") + "  " + keyHint("Esc", "back")
		}
	}

	return base
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}

func renderNoticeBar(msg string, width int) string {
	return statusBarStyle.
		Width(width).
		Render(" " + lipgloss.NewStyle().Foreground(colorGreen).Render(msg))
}

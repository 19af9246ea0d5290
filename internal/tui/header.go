package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/launchpad/internal/models"
)

func renderHeader(host string, leftTab, rightTab int, session models.DeploymentSession, connected bool, width int) string {
	dotColor := colorRed
	if connected {
		dotColor = colorGreen
	}
	dot := lipgloss.NewStyle().Foreground(dotColor).Render("●")
	name := lipgloss.NewStyle().Bold(true).Render("Launchpad")

	leftTabs := renderTabs(leftTabNames, leftTab)

	// Layout: dot name  leftTabs    rightTabs  host  badge
	left := fmt.Sprintf(" %s %s  %s", dot, name, leftTabs)
	right := headerRight(host, rightTab, session)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

var (
	leftTabNames  = []string{"Deploy", "Settings"}
	rightTabNames = []string{"Output", "History"}
)

// leftTabsStart is the column of the first left tab (" ● Launchpad  ").
const leftTabsStart = 14

func headerRight(host string, rightTab int, session models.DeploymentSession) string {
	rightTabs := renderTabs(rightTabNames, rightTab)
	hostLabel := lipgloss.NewStyle().Foreground(colorDim).Render(host)
	return fmt.Sprintf("%s  %s  %s ", rightTabs, hostLabel, renderDeployBadge(session))
}

// tabAt maps a column within a rendered tab row to a tab index, or -1.
func tabAt(tabs []string, col int) int {
	start := 0
	for i, tab := range tabs {
		end := start + len(tab)
		if col >= start && col < end {
			return i
		}
		start = end + len(" | ")
	}
	return -1
}

func renderTabs(tabs []string, active int) string {
	var parts []string
	for i, tab := range tabs {
		if i == active {
			parts = append(parts, activeTabStyle.Render(tab))
		} else {
			parts = append(parts, inactiveTabStyle.Render(tab))
		}
	}
	return strings.Join(parts, tabSepStyle.Render(" | "))
}

func renderDeployBadge(s models.DeploymentSession) string {
	switch s.State {
	case models.StateStarting:
		return badgeStartingStyle.Render("● Starting")
	case models.StateRunning:
		return badgeRunningStyle.Render("● Running #" + shortID(s.ActiveCommandID))
	default:
		return badgeIdleStyle.Render("● Idle")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

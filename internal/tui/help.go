package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type helpSection struct {
	title string
	keys  []helpKey
}

type helpKey struct {
	key  string
	desc string
}

var helpSections = []helpSection{
	{
		title: "Global",
		keys: []helpKey{
			{"Ctrl+q", "Quit"},
			{"Ctrl+h", "Toggle help"},
			{"Tab", "Switch panel focus"},
			{"Ctrl+x", "Stop running deployment"},
			{"Ctrl+r", "Refresh recent repositories"},
			{"1/2", "Switch tab of focused panel"},
		},
	},
	{
		title: "Deploy",
		keys: []helpKey{
			{"(type)", "Edit git URL / branch"},
			{"↑/↓", "Move between fields and repos"},
			{"Enter", "Deploy, or use selected repo"},
		},
	},
	{
		title: "Output",
		keys: []helpKey{
			{"j/k ↑/↓", "Scroll one line"},
			{"PgUp/PgDn", "Scroll half a page"},
			{"g / G", "Top / follow tail"},
		},
	},
	{
		title: "History",
		keys: []helpKey{
			{"j/k ↑/↓", "Navigate transcripts"},
			{"Enter", "View transcript"},
			{"Esc", "Back to list"},
			{"PgUp/PgDn", "Scroll content"},
		},
	},
	{
		title: "Settings",
		keys: []helpKey{
			{"j/k", "Navigate fields"},
			{"Enter", "Edit text field"},
			{"Space", "Toggle boolean"},
			{"Esc", "Cancel edit"},
		},
	},
}

// renderHelp renders the help overlay content.
func renderHelp(width int) string {
	maxWidth := 60
	if width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	title := overlayTitleStyle.Render("Keyboard Shortcuts")
	sections := make([]string, 0, len(helpSections)*4+3)
	sections = append(sections, title)

	for _, sec := range helpSections {
		header := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render(sec.title)
		sections = append(sections, "", header)

		for _, k := range sec.keys {
			keyCol := lipgloss.NewStyle().
				Width(14).
				Foreground(colorWhite).
				Bold(true).
				Render(k.key)
			descCol := lipgloss.NewStyle().
				Foreground(colorDim).
				Render(k.desc)
			sections = append(sections, "  "+keyCol+descCol)
		}
	}

	sections = append(sections, "", lipgloss.NewStyle().Foreground(colorDim).Render("Press Esc or Ctrl+h to close"))

	content := strings.Join(sections, "\n")
	return overlayStyle.Width(maxWidth).Render(content)
}

// withHelp dims base and draws the help box centered over it.
func withHelp(base string, width, height int) string {
	box := strings.Split(renderHelp(width), "\n")
	boxWidth := 0
	for _, l := range box {
		boxWidth = max(boxWidth, lipgloss.Width(l))
	}
	top := max((height-len(box))/2, 1)
	left := max((width-boxWidth)/2, 1)

	rows := strings.Split(base, "\n")
	for i, row := range rows {
		rows[i] = overlayDimStyle.Render(row)
	}
	for i, line := range box {
		r := top + i
		if r >= len(rows) {
			break
		}
		bg := rows[r]
		right := ""
		if start := left + lipgloss.Width(line); start < lipgloss.Width(bg) {
			right = ansi.Cut(bg, start, lipgloss.Width(bg))
		}
		rows[r] = ansi.Truncate(bg, left, "") + ansi.ResetStyle + line + ansi.ResetStyle + right
	}
	return strings.Join(rows, "\n")
}

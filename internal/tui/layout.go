package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	defaultSplit = 0.4
	minSplit     = 0.2
	maxSplit     = 0.8

	// The deploy form needs room for a URL; output needs room for build lines.
	minLeftWidth  = 30
	minRightWidth = 40

	// Blank line, list header and "more" indicator under the deploy form.
	repoListChrome = 3
)

// layout is the geometry of the deploy/output split below the header.
type layout struct {
	leftWidth   int // outer widths, borders included
	rightWidth  int
	leftInner   int
	rightInner  int
	innerHeight int
	repoRows    int // rows left for the repo list under the deploy form
	dividerCol  int
}

func computeLayout(width, height int, split float64) layout {
	usable := width - 1 // divider
	leftWidth := int(float64(usable) * split)
	if leftWidth > usable-minRightWidth {
		leftWidth = usable - minRightWidth
	}
	if leftWidth < minLeftWidth {
		leftWidth = minLeftWidth
	}
	rightWidth := atLeast(usable-leftWidth, 1)

	// Header and status bar take a line each; borders take two more.
	innerHeight := atLeast(height-4, 1)

	return layout{
		leftWidth:   leftWidth,
		rightWidth:  rightWidth,
		leftInner:   atLeast(leftWidth-2, 1),
		rightInner:  atLeast(rightWidth-2, 1),
		innerHeight: innerHeight,
		repoRows:    atLeast(innerHeight-formHeight-repoListChrome, 1),
		dividerCol:  leftWidth,
	}
}

func atLeast(n, floor int) int {
	if n < floor {
		return floor
	}
	return n
}

// onDivider reports whether column x grabs the divider.
func (l layout) onDivider(x int) bool {
	return x >= l.dividerCol-1 && x <= l.dividerCol+1
}

// panelAt maps column x to the deploy (0) or output (1) panel.
func (l layout) panelAt(x int) int {
	if x < l.dividerCol {
		return 0
	}
	return 1
}

// splitAt turns a drag to column x into a split ratio.
func splitAt(x, width int) float64 {
	if width <= 0 {
		return defaultSplit
	}
	ratio := float64(x) / float64(width)
	switch {
	case ratio < minSplit:
		return minSplit
	case ratio > maxSplit:
		return maxSplit
	}
	return ratio
}

// render draws both panels side by side, highlighting the focused one.
func (l layout) render(left, right string, focusedPanel int) string {
	leftStyle, rightStyle := focusedBorderStyle, unfocusedBorderStyle
	if focusedPanel == 1 {
		leftStyle, rightStyle = unfocusedBorderStyle, focusedBorderStyle
	}

	leftBox := leftStyle.
		Width(l.leftInner).
		Height(l.innerHeight).
		Render(clip(left, l.leftInner, l.innerHeight))
	rightBox := rightStyle.
		Width(l.rightInner).
		Height(l.innerHeight).
		Render(clip(right, l.rightInner, l.innerHeight))

	rows := lipgloss.Height(leftBox)
	divider := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(strings.TrimSuffix(strings.Repeat("│\n", rows), "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, leftBox, divider, rightBox)
}

// clip cuts content to width columns and height rows, ANSI-aware.
func clip(content string, width, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}

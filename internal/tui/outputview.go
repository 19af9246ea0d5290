package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/output"
)

// OutputView is the deployment output viewport for the right panel.
type OutputView struct {
	viewport     viewport.Model
	session      models.DeploymentSession
	spinnerFrame string
	width        int
	height       int
	lines        []string // one rendered string per log entry
	version      uint64
	synced       bool
	userScrolled bool // true when user has scrolled away from bottom
}

// NewOutputView creates an empty output view.
func NewOutputView() *OutputView {
	vp := viewport.New(80, 24)
	vp.Style = lipgloss.NewStyle()
	return &OutputView{viewport: vp}
}

// SetSize updates dimensions.
func (o *OutputView) SetSize(width, height int) {
	resized := width != o.width
	o.width = width
	o.height = height

	vpHeight := height - o.headerHeight()
	if vpHeight < 1 {
		vpHeight = 1
	}
	o.viewport.Width = width
	o.viewport.Height = vpHeight

	// Wrapping depends on width.
	if resized {
		o.synced = false
	}
}

func (o *OutputView) headerHeight() int {
	if o.session.State == models.StateIdle {
		return 0
	}
	return 1
}

// SetSession updates the mode header.
func (o *OutputView) SetSession(s models.DeploymentSession, spinnerFrame string) {
	o.session = s
	o.spinnerFrame = spinnerFrame
	o.SetSize(o.width, o.height)
}

// Sync brings the viewport up to date with log, rendering only entries that
// were appended or replaced since the last sync. It reports whether the
// content changed.
func (o *OutputView) Sync(log *output.Log) bool {
	var u output.Update
	if o.synced {
		u = log.Since(o.version)
	} else {
		u = log.Snapshot()
	}
	if !u.Reset && len(u.Deltas) == 0 {
		return false
	}

	if u.Reset {
		o.lines = o.lines[:0]
		for _, e := range u.Entries {
			o.lines = append(o.lines, o.renderEntry(e))
		}
	}
	for _, d := range u.Deltas {
		switch {
		case d.Index < len(o.lines):
			o.lines[d.Index] = o.renderEntry(d.Entry)
		case d.Index == len(o.lines):
			o.lines = append(o.lines, o.renderEntry(d.Entry))
		default:
			// Out of step with the log; start over.
			o.synced = false
			return o.Sync(log)
		}
	}
	o.version = u.Version
	o.synced = true

	o.viewport.SetContent(strings.Join(o.lines, "\n"))
	if !o.userScrolled {
		o.viewport.GotoBottom()
	}
	return true
}

// Len returns the number of rendered entries.
func (o *OutputView) Len() int {
	return len(o.lines)
}

// Following reports whether the view tracks the tail.
func (o *OutputView) Following() bool {
	return !o.userScrolled
}

func (o *OutputView) renderEntry(e models.LogEntry) string {
	width := o.width
	if width < 1 {
		width = 1
	}
	return outputStyle(e.Kind).Width(width).Render(output.DisplayText(e))
}

// ScrollUp scrolls the viewport up.
func (o *OutputView) ScrollUp(n int) {
	o.viewport.ScrollUp(n)
	o.userScrolled = !o.viewport.AtBottom()
}

// ScrollDown scrolls the viewport down.
func (o *OutputView) ScrollDown(n int) {
	o.viewport.ScrollDown(n)
	o.userScrolled = !o.viewport.AtBottom()
}

// PageUp scrolls half a page up.
func (o *OutputView) PageUp() {
	o.viewport.HalfPageUp()
	o.userScrolled = !o.viewport.AtBottom()
}

// PageDown scrolls half a page down.
func (o *OutputView) PageDown() {
	o.viewport.HalfPageDown()
	o.userScrolled = !o.viewport.AtBottom()
}

// GotoTop jumps to the first line.
func (o *OutputView) GotoTop() {
	o.viewport.GotoTop()
	o.userScrolled = !o.viewport.AtBottom()
}

// Follow jumps to the tail and keeps following it.
func (o *OutputView) Follow() {
	o.viewport.GotoBottom()
	o.userScrolled = false
}

// View renders the output panel.
func (o *OutputView) View() string {
	var parts []string

	if o.session.State != models.StateIdle {
		parts = append(parts, o.renderModeHeader())
	}

	if len(o.lines) == 0 {
		msg := "No deployment output yet. Enter a git URL and press Enter."
		if o.session.State == models.StateStarting {
			msg = "Waiting for the server..."
		}
		parts = append(parts, lipgloss.NewStyle().
			Foreground(colorDim).
			Width(o.width).
			Align(lipgloss.Center).
			Render(msg))
		return strings.Join(parts, "\n")
	}

	parts = append(parts, o.viewport.View())
	return strings.Join(parts, "\n")
}

func (o *OutputView) renderModeHeader() string {
	s := o.session
	var label string
	switch s.State {
	case models.StateStarting:
		label = fmt.Sprintf("%s Starting %s@%s", o.spinnerFrame, s.GitURL, s.Branch)
	case models.StateRunning:
		label = fmt.Sprintf("%s Deploying %s@%s", o.spinnerFrame, s.GitURL, s.Branch)
	}
	if o.userScrolled {
		label += "  (paused, G to follow)"
	}
	return modeHeaderStyle.Width(o.width).Render(strings.TrimSpace(label))
}

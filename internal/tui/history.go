package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/launchpad/internal/config"
	"github.com/watchfire-io/launchpad/internal/models"
)

// HistoryView lists saved deployment transcripts with list and detail views.
type HistoryView struct {
	transcripts   []*models.Transcript
	selectedIndex int
	viewing       bool // true = showing transcript content, false = showing list
	viewport      viewport.Model
	width         int
	height        int
	scrollOffset  int
	current       *models.Transcript
	loaded        bool // whether transcripts have been listed at least once
}

// NewHistoryView creates a new history view.
func NewHistoryView() *HistoryView {
	vp := viewport.New(80, 24)
	return &HistoryView{
		viewport: vp,
	}
}

// SetSize updates dimensions.
func (h *HistoryView) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.viewport.Width = width
	h.viewport.Height = height
}

// SetTranscripts updates the transcript list.
func (h *HistoryView) SetTranscripts(transcripts []*models.Transcript) {
	h.transcripts = transcripts
	h.loaded = true
	if h.selectedIndex >= len(transcripts) {
		h.selectedIndex = len(transcripts) - 1
	}
	if h.selectedIndex < 0 {
		h.selectedIndex = 0
	}
}

// SetContent switches to the detail view for a transcript.
func (h *HistoryView) SetContent(t *models.Transcript, content string) {
	h.current = t
	h.viewing = true
	h.viewport.SetContent(content)
	h.viewport.GotoTop()
}

// IsViewing returns whether we're in detail view.
func (h *HistoryView) IsViewing() bool {
	return h.viewing
}

// Selected returns the currently selected transcript, or nil.
func (h *HistoryView) Selected() *models.Transcript {
	if h.selectedIndex < 0 || h.selectedIndex >= len(h.transcripts) {
		return nil
	}
	return h.transcripts[h.selectedIndex]
}

// MoveUp moves cursor up in list view.
func (h *HistoryView) MoveUp() {
	if h.viewing {
		h.viewport.ScrollUp(1)
		return
	}
	if h.selectedIndex > 0 {
		h.selectedIndex--
		h.ensureVisible()
	}
}

// MoveDown moves cursor down in list view.
func (h *HistoryView) MoveDown() {
	if h.viewing {
		h.viewport.ScrollDown(1)
		return
	}
	if h.selectedIndex < len(h.transcripts)-1 {
		h.selectedIndex++
		h.ensureVisible()
	}
}

// PageUp scrolls the detail viewport up.
func (h *HistoryView) PageUp() {
	if h.viewing {
		h.viewport.HalfPageUp()
	}
}

// PageDown scrolls the detail viewport down.
func (h *HistoryView) PageDown() {
	if h.viewing {
		h.viewport.HalfPageDown()
	}
}

// GoBack returns to list view from detail view.
func (h *HistoryView) GoBack() {
	h.viewing = false
	h.current = nil
}

func (h *HistoryView) ensureVisible() {
	if h.selectedIndex < h.scrollOffset {
		h.scrollOffset = h.selectedIndex
	}
	if h.selectedIndex >= h.scrollOffset+h.height {
		h.scrollOffset = h.selectedIndex - h.height + 1
	}
}

// View renders the history view.
func (h *HistoryView) View() string {
	if h.viewing {
		return h.viewDetail()
	}
	return h.viewList()
}

func (h *HistoryView) viewList() string {
	if !h.loaded {
		return lipgloss.NewStyle().Foreground(colorDim).Width(h.width).Align(lipgloss.Center).
			Render("\nLoading transcripts...")
	}

	if len(h.transcripts) == 0 {
		return lipgloss.NewStyle().Foreground(colorDim).Width(h.width).Align(lipgloss.Center).
			Render("\nNo saved transcripts yet.")
	}

	var lines []string
	end := h.scrollOffset + h.height
	if end > len(h.transcripts) {
		end = len(h.transcripts)
	}

	for i := h.scrollOffset; i < end; i++ {
		line := formatTranscriptLine(h.transcripts[i])
		if i == h.selectedIndex {
			line = selectedItemStyle.Width(h.width).Render(line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	// Scroll indicators
	if h.scrollOffset > 0 {
		lines = append([]string{lipgloss.NewStyle().Foreground(colorDim).Render("  ▲ more")}, lines...)
	}
	if end < len(h.transcripts) {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorDim).Render("  ▼ more"))
	}

	return strings.Join(lines, "\n")
}

// formatTranscriptLine renders "repo@branch · 2026-02-10 14:30 (exit 0)".
func formatTranscriptLine(t *models.Transcript) string {
	startTime := t.StartedAt
	if len(startTime) >= 16 {
		startTime = startTime[:10] + " " + startTime[11:16]
	}

	statusStyle := lipgloss.NewStyle().Foreground(colorDim)
	switch t.Status {
	case config.StatusSucceeded:
		statusStyle = lipgloss.NewStyle().Foreground(colorGreen)
	case config.StatusFailed:
		statusStyle = lipgloss.NewStyle().Foreground(colorRed)
	}

	return fmt.Sprintf("%s · %s %s",
		lipgloss.NewStyle().Foreground(colorWhite).Bold(true).Render(repoLabel(t.GitURL, t.Branch)),
		lipgloss.NewStyle().Foreground(colorDim).Render(startTime),
		statusStyle.Render(fmt.Sprintf("(exit %d)", t.ExitCode)),
	)
}

// repoLabel shortens a git URL to owner/repo@branch.
func repoLabel(gitURL, branch string) string {
	label := strings.TrimSuffix(strings.TrimRight(gitURL, "/"), ".git")
	if parts := strings.Split(label, "/"); len(parts) >= 2 {
		label = parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	if i := strings.LastIndex(label, ":"); i >= 0 {
		label = label[i+1:]
	}
	if branch != "" {
		label += "@" + branch
	}
	return label
}

func (h *HistoryView) viewDetail() string {
	if h.current == nil {
		return ""
	}

	headerLine := lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render(repoLabel(h.current.GitURL, h.current.Branch))
	timeLine := lipgloss.NewStyle().Foreground(colorDim).Render(
		fmt.Sprintf("%s → %s", h.current.StartedAt, h.current.EndedAt),
	)
	backHint := lipgloss.NewStyle().Foreground(colorDim).Render("Esc to go back · PgUp/PgDn to scroll")

	info := headerLine + "\n" + timeLine + "\n" + backHint + "\n" +
		lipgloss.NewStyle().Foreground(colorDim).Render(strings.Repeat("─", h.width)) + "\n"

	// Viewport takes remaining space
	infoLines := 4
	vpHeight := h.height - infoLines
	if vpHeight < 1 {
		vpHeight = 1
	}
	h.viewport.Height = vpHeight
	h.viewport.Width = h.width

	return info + h.viewport.View()
}

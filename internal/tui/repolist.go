package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/watchfire-io/launchpad/internal/models"
)

// RepoList shows previously deployed repositories under the deploy form.
type RepoList struct {
	repos        []models.RepoRecord
	cursor       int
	scrollOffset int
	height       int
	loaded       bool
}

// NewRepoList creates an empty repo list.
func NewRepoList() *RepoList {
	return &RepoList{}
}

// SetRepos replaces the list, keeping the cursor in bounds.
func (rl *RepoList) SetRepos(list []models.RepoRecord) {
	rl.repos = list
	rl.loaded = true
	if rl.cursor >= len(list) {
		rl.cursor = len(list) - 1
	}
	if rl.cursor < 0 {
		rl.cursor = 0
	}
	rl.ensureVisible()
}

// SetHeight sets the visible height.
func (rl *RepoList) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	rl.height = h
	rl.ensureVisible()
}

// Len returns the number of repos.
func (rl *RepoList) Len() int {
	return len(rl.repos)
}

// Cursor returns the selected index.
func (rl *RepoList) Cursor() int {
	return rl.cursor
}

// MoveUp moves the cursor up. It reports false when already at the top.
func (rl *RepoList) MoveUp() bool {
	if rl.cursor == 0 {
		return false
	}
	rl.cursor--
	rl.ensureVisible()
	return true
}

// MoveDown moves the cursor down.
func (rl *RepoList) MoveDown() {
	if rl.cursor < len(rl.repos)-1 {
		rl.cursor++
		rl.ensureVisible()
	}
}

// Selected returns the selected repo.
func (rl *RepoList) Selected() (models.RepoRecord, bool) {
	if rl.cursor < 0 || rl.cursor >= len(rl.repos) {
		return models.RepoRecord{}, false
	}
	return rl.repos[rl.cursor], true
}

func (rl *RepoList) ensureVisible() {
	if rl.height <= 0 {
		return
	}
	if rl.cursor < rl.scrollOffset {
		rl.scrollOffset = rl.cursor
	}
	if rl.cursor >= rl.scrollOffset+rl.height {
		rl.scrollOffset = rl.cursor - rl.height + 1
	}
	if rl.scrollOffset < 0 {
		rl.scrollOffset = 0
	}
}

// View renders the list. The cursor is highlighted only when focused.
func (rl *RepoList) View(width int, focused bool) string {
	header := sectionHeaderStyle.Render("Recent repositories")

	if !rl.loaded {
		return header + "\n" + lipgloss.NewStyle().Foreground(colorDim).Render("  Loading...")
	}
	if len(rl.repos) == 0 {
		return header + "\n" + lipgloss.NewStyle().Foreground(colorDim).Render("  No deployments yet.")
	}

	lines := []string{header}
	end := rl.scrollOffset + rl.height
	if end > len(rl.repos) {
		end = len(rl.repos)
	}

	for i := rl.scrollOffset; i < end; i++ {
		name := ansi.Truncate(rl.repos[i].Name, width-2, "…")
		if focused && i == rl.cursor {
			lines = append(lines, selectedItemStyle.Width(width).Render("› "+name))
		} else {
			lines = append(lines, "  "+name)
		}
	}

	if rl.scrollOffset > 0 {
		lines[0] += lipgloss.NewStyle().Foreground(colorDim).Render("  ▲")
	}
	if end < len(rl.repos) {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorDim).Render("  ▼ more"))
	}

	return strings.Join(lines, "\n")
}

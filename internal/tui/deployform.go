package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Deploy form fields.
const (
	fieldURL = iota
	fieldBranch
)

// DeployForm holds the git URL and branch inputs.
type DeployForm struct {
	urlInput    textinput.Model
	branchInput textinput.Model
	focusIndex  int
	focused     bool
	width       int
}

// NewDeployForm creates a deploy form with the URL input focused.
func NewDeployForm(defaultBranch string) *DeployForm {
	ui := textinput.New()
	ui.Placeholder = "https://github.com/owner/repo.git"
	ui.CharLimit = 500
	ui.Prompt = "› "

	bi := textinput.New()
	bi.CharLimit = 200
	bi.Prompt = "› "

	f := &DeployForm{
		urlInput:    ui,
		branchInput: bi,
		focused:     true,
	}
	f.SetDefaultBranch(defaultBranch)
	f.focusCurrent()
	return f
}

// SetDefaultBranch shows the branch used when the branch input is blank.
func (f *DeployForm) SetDefaultBranch(branch string) {
	f.branchInput.Placeholder = branch + " (default)"
}

// SetWidth updates the input widths.
func (f *DeployForm) SetWidth(width int) {
	f.width = width
	w := width - 4
	if w < 10 {
		w = 10
	}
	f.urlInput.Width = w
	f.branchInput.Width = w
}

// SetURL replaces the URL input and focuses it.
func (f *DeployForm) SetURL(url string) {
	f.urlInput.SetValue(url)
	f.urlInput.CursorEnd()
	f.focusIndex = fieldURL
	f.Focus()
}

// FocusIndex returns the focused field.
func (f *DeployForm) FocusIndex() int {
	return f.focusIndex
}

// FocusField moves focus to a field.
func (f *DeployForm) FocusField(i int) {
	f.focusIndex = i
	f.focusCurrent()
}

// Focus gives the form keyboard focus.
func (f *DeployForm) Focus() {
	f.focused = true
	f.focusCurrent()
}

// Blur removes keyboard focus from both inputs.
func (f *DeployForm) Blur() {
	f.focused = false
	f.urlInput.Blur()
	f.branchInput.Blur()
}

// Focused reports whether an input has keyboard focus.
func (f *DeployForm) Focused() bool {
	return f.focused
}

func (f *DeployForm) focusCurrent() {
	f.urlInput.Blur()
	f.branchInput.Blur()
	if !f.focused {
		return
	}
	if f.focusIndex == fieldBranch {
		f.branchInput.Focus()
	} else {
		f.urlInput.Focus()
	}
}

// Update forwards a message to the focused input.
func (f *DeployForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focusIndex == fieldBranch {
		f.branchInput, cmd = f.branchInput.Update(msg)
	} else {
		f.urlInput, cmd = f.urlInput.Update(msg)
	}
	return cmd
}

// URL returns the trimmed git URL.
func (f *DeployForm) URL() string {
	return strings.TrimSpace(f.urlInput.Value())
}

// Branch returns the trimmed branch, possibly empty.
func (f *DeployForm) Branch() string {
	return strings.TrimSpace(f.branchInput.Value())
}

// View renders the form.
func (f *DeployForm) View() string {
	urlLabel, branchLabel := formLabelStyle, formLabelStyle
	if f.focused {
		if f.focusIndex == fieldBranch {
			branchLabel = formFocusedLabelStyle
		} else {
			urlLabel = formFocusedLabelStyle
		}
	}

	parts := []string{
		urlLabel.Render("Git URL"),
		f.urlInput.View(),
		branchLabel.Render("Branch"),
		f.branchInput.View(),
	}
	return strings.Join(parts, "\n")
}

// formHeight is the number of lines View renders.
const formHeight = 4

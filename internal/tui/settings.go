package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/launchpad/internal/models"
)

// FieldType defines the type of a settings field.
type FieldType int

const (
	fieldText FieldType = iota
	fieldToggle
)

// SettingsField is a single field in the settings form.
type SettingsField struct {
	Label     string
	Key       string // config.SetValue key
	Value     string
	BoolValue bool
	Type      FieldType
}

// SettingsForm manages the settings tab.
type SettingsForm struct {
	fields  []SettingsField
	cursor  int
	editing bool
	input   textinput.Model
	width   int
	height  int
}

// NewSettingsForm creates a new settings form.
func NewSettingsForm() *SettingsForm {
	ti := textinput.New()
	ti.CharLimit = 200
	return &SettingsForm{
		input: ti,
	}
}

// Load populates fields from settings. Edits in progress are kept.
func (s *SettingsForm) Load(settings *models.Settings) {
	if s.editing || settings == nil {
		return
	}
	s.fields = []SettingsField{
		{Label: "Server URL", Key: "server_url", Value: settings.ServerURL, Type: fieldText},
		{Label: "Stream Path", Key: "stream_path", Value: settings.StreamPath, Type: fieldText},
		{Label: "Default Branch", Key: "default_branch", Value: settings.DefaultBranch, Type: fieldText},
		{Label: "Request Timeout", Key: "request_timeout", Value: settings.RequestTimeout.String(), Type: fieldText},
		{Label: "Save Transcripts", Key: "save_transcripts", BoolValue: settings.SaveTranscripts, Type: fieldToggle},
		{Label: "Log Level", Key: "log.level", Value: settings.Log.Level, Type: fieldText},
		{Label: "Telemetry", Key: "telemetry.enabled", BoolValue: settings.Telemetry.Enabled, Type: fieldToggle},
	}
	if s.cursor >= len(s.fields) {
		s.cursor = len(s.fields) - 1
	}
}

// SetSize updates dimensions.
func (s *SettingsForm) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.input.Width = width - 24
}

// MoveUp moves cursor up.
func (s *SettingsForm) MoveUp() {
	if !s.editing && s.cursor > 0 {
		s.cursor--
	}
}

// MoveDown moves cursor down.
func (s *SettingsForm) MoveDown() {
	if !s.editing && s.cursor < len(s.fields)-1 {
		s.cursor++
	}
}

// Toggle flips a boolean field. The new value is returned in its
// config.SetValue form.
func (s *SettingsForm) Toggle() (changed bool, key, value string) {
	if s.cursor < 0 || s.cursor >= len(s.fields) {
		return false, "", ""
	}
	f := &s.fields[s.cursor]
	if f.Type != fieldToggle {
		return false, "", ""
	}
	f.BoolValue = !f.BoolValue
	if f.BoolValue {
		return true, f.Key, "true"
	}
	return true, f.Key, "false"
}

// StartEdit begins inline editing of the current text field.
func (s *SettingsForm) StartEdit() bool {
	if s.cursor < 0 || s.cursor >= len(s.fields) {
		return false
	}
	f := s.fields[s.cursor]
	if f.Type != fieldText {
		return false
	}
	s.editing = true
	s.input.SetValue(f.Value)
	s.input.CursorEnd()
	s.input.Focus()
	return true
}

// FinishEdit confirms the current edit. Validation happens when the value
// is saved.
func (s *SettingsForm) FinishEdit() (changed bool, key, value string) {
	if !s.editing {
		return false, "", ""
	}
	s.editing = false
	s.input.Blur()

	f := &s.fields[s.cursor]
	newVal := strings.TrimSpace(s.input.Value())
	if newVal != f.Value {
		f.Value = newVal
		return true, f.Key, newVal
	}
	return false, "", ""
}

// CancelEdit cancels the current edit.
func (s *SettingsForm) CancelEdit() {
	s.editing = false
	s.input.Blur()
}

// IsEditing returns whether a field is being edited.
func (s *SettingsForm) IsEditing() bool {
	return s.editing
}

// InputModel returns the text input model for Update forwarding.
func (s *SettingsForm) InputModel() *textinput.Model {
	return &s.input
}

// View renders the settings form.
func (s *SettingsForm) View() string {
	if len(s.fields) == 0 {
		return lipgloss.NewStyle().Foreground(colorDim).Render("Loading settings...")
	}

	var lines []string
	for i, f := range s.fields {
		var line string
		label := settingsLabelStyle.Render(f.Label + ":")

		if f.Type == fieldToggle {
			var val string
			if f.BoolValue {
				val = settingsToggleOn.Render("[ON]")
			} else {
				val = settingsToggleOff.Render("[OFF]")
			}
			line = label + " " + val
		} else {
			if s.editing && i == s.cursor {
				line = label + " " + s.input.View()
			} else {
				val := f.Value
				if val == "" {
					val = lipgloss.NewStyle().Foreground(colorDim).Render("(empty)")
				} else {
					val = settingsValueStyle.Render(val)
				}
				line = label + " " + val
			}
		}

		if i == s.cursor {
			line = settingsCursorStyle.Width(s.width).Render(line)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "", lipgloss.NewStyle().Foreground(colorDim).
		Render("Saved to ~/.launchpad/settings.yaml. Server changes apply when idle."))

	return strings.Join(lines, "\n")
}

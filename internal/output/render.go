package output

import (
	"strings"

	"github.com/watchfire-io/launchpad/internal/models"
)

// DisplayText returns the entry text without trailing line breaks.
func DisplayText(e models.LogEntry) string {
	return strings.TrimRight(e.Text, "\r\n")
}

// PlainLines renders entries as plain text lines, one or more per entry.
func PlainLines(entries []models.LogEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, strings.Split(DisplayText(e), "\n")...)
	}
	return lines
}

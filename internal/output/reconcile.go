// Package output folds streamed process output into an ordered, display-ready log.
package output

import (
	"fmt"
	"slices"

	"github.com/watchfire-io/launchpad/internal/models"
)

// Op describes what Apply did to the log.
type Op int

const (
	OpIgnored Op = iota
	OpAppended
	OpReplaced
)

// Change reports the effect of a single Apply. Index is the position of the
// affected entry, or -1 when the event was ignored.
type Change struct {
	Op    Op
	Index int
}

// Apply folds one output event into log and returns the resulting sequence.
// The input slice is never modified.
//
// An event carrying both IsProgress and ReplaceLast overwrites the entry
// nearest the tail that is still marked as progress. Without such an entry,
// or for any other event, the candidate is appended. Events with empty text
// are dropped.
func Apply(log []models.LogEntry, ev models.OutputEvent, id uint64) ([]models.LogEntry, Change) {
	entry, ok := candidate(ev, id)
	if !ok {
		return log, Change{Op: OpIgnored, Index: -1}
	}

	if replacesLast(ev) {
		if k := lastProgress(log); k >= 0 {
			out := slices.Clone(log)
			out[k] = entry
			return out, Change{Op: OpReplaced, Index: k}
		}
	}

	return append(slices.Clip(log), entry), Change{Op: OpAppended, Index: len(log)}
}

// candidate builds the entry an event would produce. Events with empty text
// produce nothing.
func candidate(ev models.OutputEvent, id uint64) (models.LogEntry, bool) {
	if ev.Text == "" {
		return models.LogEntry{}, false
	}
	entry := models.LogEntry{
		ID:         id,
		Text:       ev.Text,
		Kind:       ev.Kind,
		IsProgress: ev.IsProgress,
	}
	if entry.Kind == "" {
		entry.Kind = models.KindStdout
	}
	return entry, true
}

func replacesLast(ev models.OutputEvent) bool {
	return ev.IsProgress && ev.ReplaceLast
}

// lastProgress returns the index of the last progress entry, or -1.
func lastProgress(log []models.LogEntry) int {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].IsProgress {
			return i
		}
	}
	return -1
}

// Summary builds the synthetic entry appended when a process exits.
func Summary(exitCode int, id uint64) models.LogEntry {
	if exitCode == 0 {
		return models.LogEntry{
			ID:   id,
			Text: "Deployment finished successfully (exit code 0)",
			Kind: models.KindSuccess,
		}
	}
	return models.LogEntry{
		ID:   id,
		Text: fmt.Sprintf("Deployment failed (exit code %d)", exitCode),
		Kind: models.KindError,
	}
}

// Package models contains shared data structures used across the application.
package models

// OutputKind classifies a line of deployment output.
type OutputKind string

const (
	KindStdout OutputKind = "stdout"
	KindStderr OutputKind = "stderr"
	KindSystem OutputKind = "system"

	// Synthetic kinds, produced locally and never received from the stream.
	KindSuccess OutputKind = "success"
	KindError   OutputKind = "error"
)

// ParseOutputKind maps a wire outputType to a kind. Unknown values are stdout.
func ParseOutputKind(s string) OutputKind {
	switch OutputKind(s) {
	case KindStderr:
		return KindStderr
	case KindSystem:
		return KindSystem
	default:
		return KindStdout
	}
}

// OutputEvent is one chunk of process output received from the stream.
type OutputEvent struct {
	CommandID   string
	Text        string
	Kind        OutputKind
	IsProgress  bool
	ReplaceLast bool
}

// FinishedEvent signals that a deployment process exited.
// ExitCode is nil when the server did not report a numeric code.
type FinishedEvent struct {
	CommandID string
	ExitCode  *int
}

// LogEntry is a single display line owned by the output log.
type LogEntry struct {
	ID         uint64     `yaml:"id"`
	Text       string     `yaml:"text"`
	Kind       OutputKind `yaml:"kind"`
	IsProgress bool       `yaml:"is_progress,omitempty"`
}

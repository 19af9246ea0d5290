package models

// Transcript represents metadata for a saved deployment transcript.
type Transcript struct {
	TranscriptID string `yaml:"transcript_id"`
	CommandID    string `yaml:"command_id"`
	GitURL       string `yaml:"git_url"`
	Branch       string `yaml:"branch"`
	ExitCode     int    `yaml:"exit_code"`
	StartedAt    string `yaml:"started_at"`
	EndedAt      string `yaml:"ended_at"`
	Status       string `yaml:"status"` // "succeeded" | "failed"
}

package models

import "time"

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	JSON  bool   `yaml:"json"`
}

// TelemetryConfig holds opt-in usage analytics settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint"`
}

// Settings represents global application settings.
// This corresponds to ~/.launchpad/settings.yaml.
type Settings struct {
	Version         int             `yaml:"version"`
	ServerURL       string          `yaml:"server_url"`
	StreamPath      string          `yaml:"stream_path"`
	DefaultBranch   string          `yaml:"default_branch"`
	RequestTimeout  time.Duration   `yaml:"request_timeout"`
	SaveTranscripts bool            `yaml:"save_transcripts"`
	ClientID        string          `yaml:"client_id,omitempty"`
	Log             LogConfig       `yaml:"log"`
	Telemetry       TelemetryConfig `yaml:"telemetry"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:         1,
		ServerURL:       "http://localhost:3001",
		StreamPath:      "/ws",
		DefaultBranch:   "main",
		RequestTimeout:  30 * time.Second,
		SaveTranscripts: true,
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "https://us.i.posthog.com",
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/watchfire-io/launchpad/internal/models"
)

// Environment overrides.
const (
	EnvServerURL  = "LAUNCHPAD_SERVER_URL"
	EnvStreamPath = "LAUNCHPAD_STREAM_PATH"
	EnvLogLevel   = "LAUNCHPAD_LOG_LEVEL"
)

// ErrUnknownSetting is returned by SetValue for keys it does not know.
var ErrUnknownSetting = errors.New("unknown setting")

// LoadSettingsFile loads ~/.launchpad/settings.yaml over the defaults,
// without environment overrides.
func LoadSettingsFile() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewSettings)
}

// LoadSettings loads the settings file and applies environment overrides.
func LoadSettings() (*models.Settings, error) {
	s, err := LoadSettingsFile()
	if err != nil {
		return nil, err
	}
	ApplyEnv(s)
	return s, nil
}

// SaveSettings saves the global settings to ~/.launchpad/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// ApplyEnv overrides settings from LAUNCHPAD_* environment variables.
func ApplyEnv(s *models.Settings) {
	s.ServerURL = getEnv(EnvServerURL, s.ServerURL)
	s.StreamPath = getEnv(EnvStreamPath, s.StreamPath)
	s.Log.Level = getEnv(EnvLogLevel, s.Log.Level)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// EnsureClientID gives this installation a persistent client id. The id is
// written to the settings file the first time and copied into s.
func EnsureClientID(s *models.Settings) error {
	if s.ClientID != "" {
		return nil
	}

	stored, err := LoadSettingsFile()
	if err != nil {
		return err
	}
	if stored.ClientID == "" {
		stored.ClientID = uuid.NewString()
		if err := SaveSettings(stored); err != nil {
			return fmt.Errorf("failed to save client id: %w", err)
		}
	}
	s.ClientID = stored.ClientID
	return nil
}

// Setting is one displayable key/value pair.
type Setting struct {
	Key   string
	Value string
}

// Values lists the user-facing settings in a stable order.
func Values(s *models.Settings) []Setting {
	apiKey := ""
	if s.Telemetry.APIKey != "" {
		apiKey = "********"
	}
	return []Setting{
		{"server_url", s.ServerURL},
		{"stream_path", s.StreamPath},
		{"default_branch", s.DefaultBranch},
		{"request_timeout", s.RequestTimeout.String()},
		{"save_transcripts", strconv.FormatBool(s.SaveTranscripts)},
		{"log.level", s.Log.Level},
		{"log.json", strconv.FormatBool(s.Log.JSON)},
		{"telemetry.enabled", strconv.FormatBool(s.Telemetry.Enabled)},
		{"telemetry.api_key", apiKey},
		{"telemetry.endpoint", s.Telemetry.Endpoint},
		{"client_id", s.ClientID},
	}
}

// SetValue parses value and assigns it to key.
func SetValue(s *models.Settings, key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "server_url":
		s.ServerURL = value
	case "stream_path":
		s.StreamPath = value
	case "default_branch":
		if value == "" {
			return fmt.Errorf("default_branch cannot be empty")
		}
		s.DefaultBranch = value
	case "request_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", value, err)
		}
		if d <= 0 {
			return fmt.Errorf("request_timeout must be positive")
		}
		s.RequestTimeout = d
	case "save_transcripts":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid save_transcripts %q: %w", value, err)
		}
		s.SaveTranscripts = b
	case "log.level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			s.Log.Level = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log.level %q", value)
		}
	case "log.json":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid log.json %q: %w", value, err)
		}
		s.Log.JSON = b
	case "telemetry.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid telemetry.enabled %q: %w", value, err)
		}
		s.Telemetry.Enabled = b
	case "telemetry.api_key":
		s.Telemetry.APIKey = value
	case "telemetry.endpoint":
		s.Telemetry.Endpoint = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return nil
}

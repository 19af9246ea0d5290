package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchfire-io/launchpad/internal/models"
)

func useTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvStreamPath, "")
	t.Setenv(EnvLogLevel, "")
	return dir
}

func TestLoadSettingsDefaults(t *testing.T) {
	useTempHome(t)

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, models.NewSettings(), s)
}

func TestLoadSettingsKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := useTempHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName),
		[]byte("server_url: https://deploy.example.com\nrequest_timeout: 5s\n"), 0o644))

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "https://deploy.example.com", s.ServerURL)
	assert.Equal(t, 5*time.Second, s.RequestTimeout)
	assert.Equal(t, "/ws", s.StreamPath)
	assert.Equal(t, "main", s.DefaultBranch)
	assert.True(t, s.SaveTranscripts)
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	useTempHome(t)
	t.Setenv(EnvServerURL, "http://10.0.0.5:3001")
	t.Setenv(EnvLogLevel, "debug")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:3001", s.ServerURL)
	assert.Equal(t, "debug", s.Log.Level)

	file, err := LoadSettingsFile()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", file.ServerURL)
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	useTempHome(t)

	s := models.NewSettings()
	s.DefaultBranch = "develop"
	s.RequestTimeout = 90 * time.Second
	require.NoError(t, SaveSettings(s))

	loaded, err := LoadSettingsFile()
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestEnsureClientIDPersists(t *testing.T) {
	useTempHome(t)

	s, err := LoadSettings()
	require.NoError(t, err)
	require.NoError(t, EnsureClientID(s))
	require.NotEmpty(t, s.ClientID)

	again, err := LoadSettings()
	require.NoError(t, err)
	require.NoError(t, EnsureClientID(again))
	assert.Equal(t, s.ClientID, again.ClientID)
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		check   func(t *testing.T, s *models.Settings)
		wantErr bool
	}{
		{key: "server_url", value: "https://x.dev", check: func(t *testing.T, s *models.Settings) {
			assert.Equal(t, "https://x.dev", s.ServerURL)
		}},
		{key: "request_timeout", value: "45s", check: func(t *testing.T, s *models.Settings) {
			assert.Equal(t, 45*time.Second, s.RequestTimeout)
		}},
		{key: "save_transcripts", value: "false", check: func(t *testing.T, s *models.Settings) {
			assert.False(t, s.SaveTranscripts)
		}},
		{key: "log.level", value: "WARN", check: func(t *testing.T, s *models.Settings) {
			assert.Equal(t, "warn", s.Log.Level)
		}},
		{key: "telemetry.enabled", value: "true", check: func(t *testing.T, s *models.Settings) {
			assert.True(t, s.Telemetry.Enabled)
		}},
		{key: "request_timeout", value: "soon", wantErr: true},
		{key: "request_timeout", value: "-1s", wantErr: true},
		{key: "default_branch", value: " ", wantErr: true},
		{key: "log.level", value: "verbose", wantErr: true},
		{key: "client_id", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			s := models.NewSettings()
			err := SetValue(s, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestUnknownSetting(t *testing.T) {
	err := SetValue(models.NewSettings(), "nope", "1")
	assert.ErrorIs(t, err, ErrUnknownSetting)
}

func TestValuesMasksAPIKey(t *testing.T) {
	s := models.NewSettings()
	s.Telemetry.APIKey = "phc_secret"
	for _, kv := range Values(s) {
		assert.NotContains(t, kv.Value, "phc_secret")
	}
}

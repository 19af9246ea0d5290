package tui

import (
	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/watcher"
)

// StreamConnectedMsg signals the stream connection is up.
type StreamConnectedMsg struct {
	Gen uint64
}

// StreamDisconnectedMsg signals the stream connection was lost or closed.
type StreamDisconnectedMsg struct {
	Gen uint64
	Err error
}

// StreamConnectFailedMsg signals a dial attempt failed.
type StreamConnectFailedMsg struct {
	Gen uint64
	Err error
}

// OutputMsg carries a commandOutput event from the stream.
type OutputMsg struct {
	Gen   uint64
	Event models.OutputEvent
}

// FinishedMsg carries a commandFinished event from the stream.
type FinishedMsg struct {
	Gen   uint64
	Event models.FinishedEvent
}

// ReconnectMsg triggers a reconnection attempt.
type ReconnectMsg struct {
	Gen uint64
}

// DeployResultMsg carries the outcome of a deploy request.
type DeployResultMsg struct {
	CommandID string
	Err       error
}

// StopResultMsg carries the outcome of a stop request.
type StopResultMsg struct {
	Err error
}

// ReposLoadedMsg carries the refreshed repository list.
type ReposLoadedMsg struct {
	Repos []models.RepoRecord
}

// HistoryLoadedMsg carries the saved transcript list.
type HistoryLoadedMsg struct {
	Transcripts []*models.Transcript
}

// TranscriptContentMsg carries a single transcript's content.
type TranscriptContentMsg struct {
	Transcript *models.Transcript
	Content    string
}

// TranscriptSavedMsg signals a transcript was written to disk.
type TranscriptSavedMsg struct {
	Transcript *models.Transcript
}

// WatchEventMsg carries a file change from the settings watcher.
type WatchEventMsg struct {
	Event watcher.Event
}

// SettingsLoadedMsg carries freshly loaded settings.
type SettingsLoadedMsg struct {
	Settings *models.Settings
}

// SettingsSavedMsg signals a settings edit was written.
type SettingsSavedMsg struct{}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// ClearSavedMsg clears the "Saved" indicator.
type ClearSavedMsg struct{}

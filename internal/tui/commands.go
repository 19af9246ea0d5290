package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/watchfire-io/launchpad/internal/config"
	"github.com/watchfire-io/launchpad/internal/deploy"
	"github.com/watchfire-io/launchpad/internal/output"
	"github.com/watchfire-io/launchpad/internal/repos"
	"github.com/watchfire-io/launchpad/internal/watcher"
)

func connectStreamCmd(ctx context.Context, conn streamConn, gen uint64) tea.Cmd {
	return func() tea.Msg {
		if err := conn.Connect(ctx); err != nil {
			return StreamConnectFailedMsg{Gen: gen, Err: err}
		}
		return nil
	}
}

// closeStreamCmd closes a replaced connection off the update loop, since
// Close waits for a read loop that may be blocked sending to the program.
func closeStreamCmd(conn streamConn) tea.Cmd {
	return func() tea.Msg {
		_ = conn.Close()
		return nil
	}
}

func reconnectAfter(d time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ReconnectMsg{Gen: gen}
	})
}

func startDeployCmd(ctx context.Context, ctrl *deploy.Controller, gitURL, branch string) tea.Cmd {
	return func() tea.Msg {
		id, err := ctrl.Start(ctx, gitURL, branch)
		return DeployResultMsg{CommandID: id, Err: err}
	}
}

func stopDeployCmd(ctx context.Context, ctrl *deploy.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return StopResultMsg{Err: ctrl.Stop(ctx)}
	}
}

func refreshReposCmd(ctx context.Context, fetcher *repos.Fetcher) tea.Cmd {
	return func() tea.Msg {
		return ReposLoadedMsg{Repos: fetcher.Refresh(ctx)}
	}
}

func loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		transcripts, err := config.ListTranscripts()
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list transcripts: %w", err)}
		}
		return HistoryLoadedMsg{Transcripts: transcripts}
	}
}

func readTranscriptCmd(transcriptID string) tea.Cmd {
	return func() tea.Msg {
		t, content, err := config.ReadTranscript(transcriptID)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return TranscriptContentMsg{Transcript: t, Content: content}
	}
}

func saveTranscriptCmd(res deploy.Result, log *output.Log) tea.Cmd {
	lines := output.PlainLines(log.Entries())
	return func() tea.Msg {
		t, err := config.WriteTranscript(res.CommandID, res.GitURL, res.Branch, res.ExitCode, res.StartedAt, res.EndedAt, lines)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save transcript: %w", err)}
		}
		return TranscriptSavedMsg{Transcript: t}
	}
}

// watchCmd waits for the next watcher event. It is re-issued after each one.
func watchCmd(w *watcher.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return WatchEventMsg{Event: ev}
	}
}

func reloadSettingsCmd(clientID string) tea.Cmd {
	return func() tea.Msg {
		s, err := config.LoadSettings()
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to reload settings: %w", err)}
		}
		if s.ClientID == "" {
			s.ClientID = clientID
		}
		return SettingsLoadedMsg{Settings: s}
	}
}

func saveSettingCmd(key, value string) tea.Cmd {
	return func() tea.Msg {
		s, err := config.LoadSettingsFile()
		if err != nil {
			return ErrorMsg{Err: err}
		}
		if err := config.SetValue(s, key, value); err != nil {
			return ErrorMsg{Err: err}
		}
		if err := config.SaveSettings(s); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save settings: %w", err)}
		}
		return SettingsSavedMsg{}
	}
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func clearSavedAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearSavedMsg{}
	})
}

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/watchfire-io/launchpad/internal/models"
)

// Transcript status values.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// WriteTranscript writes a deployment transcript to disk: a YAML header
// followed by the rendered output lines.
func WriteTranscript(commandID, gitURL, branch string, exitCode int, startedAt, endedAt time.Time, lines []string) (*models.Transcript, error) {
	if err := EnsureGlobalLogsDir(); err != nil {
		return nil, fmt.Errorf("failed to ensure logs dir: %w", err)
	}

	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}

	if startedAt.IsZero() {
		startedAt = endedAt
	}
	timestamp := startedAt.UTC().Format("2006-01-02T15-04-05")
	transcriptID := timestamp + "-" + sanitizeID(commandID)

	status := StatusSucceeded
	if exitCode != 0 {
		status = StatusFailed
	}

	t := &models.Transcript{
		TranscriptID: transcriptID,
		CommandID:    commandID,
		GitURL:       gitURL,
		Branch:       branch,
		ExitCode:     exitCode,
		StartedAt:    startedAt.UTC().Format(time.RFC3339),
		EndedAt:      endedAt.UTC().Format(time.RFC3339),
		Status:       status,
	}

	filePath := filepath.Join(logsDir, transcriptID+".log")
	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "command_id: %s\n", t.CommandID)
	fmt.Fprintf(w, "git_url: %s\n", t.GitURL)
	fmt.Fprintf(w, "branch: %s\n", t.Branch)
	fmt.Fprintf(w, "exit_code: %d\n", t.ExitCode)
	fmt.Fprintf(w, "started_at: %s\n", t.StartedAt)
	fmt.Fprintf(w, "ended_at: %s\n", t.EndedAt)
	fmt.Fprintf(w, "status: %s\n", t.Status)
	fmt.Fprintln(w, "---")

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}

	return t, w.Flush()
}

// ListTranscripts returns metadata for every saved transcript, newest first.
func ListTranscripts() ([]*models.Transcript, error) {
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var transcripts []*models.Transcript
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}

		t, err := parseTranscriptHeader(filepath.Join(logsDir, e.Name()))
		if err != nil {
			continue
		}
		transcripts = append(transcripts, t)
	}

	sort.SliceStable(transcripts, func(i, j int) bool {
		if transcripts[i].StartedAt != transcripts[j].StartedAt {
			return transcripts[i].StartedAt > transcripts[j].StartedAt
		}
		return transcripts[i].TranscriptID > transcripts[j].TranscriptID
	})

	return transcripts, nil
}

// ReadTranscript reads a transcript by id and returns metadata + content.
func ReadTranscript(transcriptID string) (*models.Transcript, string, error) {
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, "", err
	}

	if transcriptID != filepath.Base(transcriptID) {
		return nil, "", fmt.Errorf("invalid transcript id %q", transcriptID)
	}

	filePath := filepath.Join(logsDir, transcriptID+".log")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("transcript not found: %w", err)
	}

	t, body := parseTranscriptContent(string(data))
	if t == nil {
		return nil, "", fmt.Errorf("invalid transcript format")
	}
	t.TranscriptID = transcriptID

	return t, body, nil
}

func parseTranscriptHeader(path string) (*models.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	t := &models.Transcript{}
	inHeader := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			break
		}
		if inHeader {
			parseTranscriptHeaderLine(t, line)
		}
	}

	t.TranscriptID = strings.TrimSuffix(filepath.Base(path), ".log")
	return t, nil
}

func parseTranscriptContent(content string) (*models.Transcript, string) {
	lines := strings.Split(content, "\n")
	t := &models.Transcript{}
	headerEnd := -1
	inHeader := false

	for i, line := range lines {
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			headerEnd = i
			break
		}
		if inHeader {
			parseTranscriptHeaderLine(t, line)
		}
	}

	if headerEnd < 0 {
		return nil, ""
	}

	return t, strings.Join(lines[headerEnd+1:], "\n")
}

func parseTranscriptHeaderLine(t *models.Transcript, line string) {
	key, val, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	case "command_id":
		t.CommandID = val
	case "git_url":
		t.GitURL = val
	case "branch":
		t.Branch = val
	case "exit_code":
		fmt.Sscanf(val, "%d", &t.ExitCode)
	case "started_at":
		t.StartedAt = val
	case "ended_at":
		t.EndedAt = val
	case "status":
		t.Status = val
	}
}

// sanitizeID keeps transcript file names to a safe character set.
func sanitizeID(id string) string {
	if id == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadTranscript(t *testing.T) {
	useTempHome(t)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ended := started.Add(42 * time.Second)

	tr, err := WriteTranscript("cmd-1", "https://github.com/acme/app.git", "main", 0, started, ended,
		[]string{"Cloning...", "55%", "Deployment finished successfully (exit code 0)"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T10-00-00-cmd-1", tr.TranscriptID)
	assert.Equal(t, StatusSucceeded, tr.Status)

	got, body, err := ReadTranscript(tr.TranscriptID)
	require.NoError(t, err)
	assert.Equal(t, tr, got)
	assert.Equal(t, "Cloning...\n55%\nDeployment finished successfully (exit code 0)\n", body)
}

func TestListTranscriptsNewestFirst(t *testing.T) {
	useTempHome(t)

	list, err := ListTranscripts()
	require.NoError(t, err)
	assert.Empty(t, list)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err = WriteTranscript("a", "u", "main", 0, base, base, nil)
	require.NoError(t, err)
	_, err = WriteTranscript("b", "u", "main", 2, base.Add(time.Hour), base.Add(time.Hour), nil)
	require.NoError(t, err)

	list, err = ListTranscripts()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].CommandID)
	assert.Equal(t, StatusFailed, list[0].Status)
	assert.Equal(t, 2, list[0].ExitCode)
	assert.Equal(t, "a", list[1].CommandID)
}

func TestReadTranscriptRejectsPaths(t *testing.T) {
	useTempHome(t)

	_, _, err := ReadTranscript("../settings")
	assert.Error(t, err)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "unknown", sanitizeID(""))
	assert.Equal(t, "a_b_c-1", sanitizeID("a/b.c-1"))
}

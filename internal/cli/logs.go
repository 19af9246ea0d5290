package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/launchpad/internal/config"
	"github.com/watchfire-io/launchpad/internal/models"
)

var logsCmd = &cobra.Command{
	Use:   "logs [transcript-id]",
	Short: "List or print saved deployment transcripts",
	Long: `Without arguments, list saved deployment transcripts, newest first.
With a transcript id, print that transcript.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		_, content, err := config.ReadTranscript(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(out, content)
		return nil
	}

	transcripts, err := config.ListTranscripts()
	if err != nil {
		return fmt.Errorf("failed to list transcripts: %w", err)
	}

	if len(transcripts) == 0 {
		fmt.Fprintln(out, "No saved transcripts.")
		return nil
	}

	for _, t := range transcripts {
		fmt.Fprintf(out, "%s  %s  %s@%s\n",
			styleValue.Render(t.TranscriptID),
			statusBadge(t),
			t.GitURL, t.Branch,
		)
	}
	return nil
}

func statusBadge(t *models.Transcript) string {
	label := fmt.Sprintf("exit %d", t.ExitCode)
	if t.Status == config.StatusSucceeded {
		return badgeSucceeded.Render(label)
	}
	return badgeFailed.Render(label)
}

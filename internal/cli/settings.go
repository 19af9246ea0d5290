package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/launchpad/internal/api"
	"github.com/watchfire-io/launchpad/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:     "settings [key value]",
	Aliases: []string{"config"},
	Short:   "Show or change settings",
	Long: `Without arguments, show the settings in ~/.launchpad/settings.yaml.
With a key and a value, change one setting.

Keys: server_url, stream_path, default_branch, request_timeout,
save_transcripts, log.level, log.json, telemetry.enabled,
telemetry.api_key, telemetry.endpoint.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or a key and a value, got %d", len(args))
		}
		return nil
	},
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		s, err := config.LoadSettingsFile()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		for _, kv := range config.Values(s) {
			fmt.Fprintf(out, "%s %s\n", styleLabel.Render(fmt.Sprintf("%-20s", kv.Key)), styleValue.Render(kv.Value))
		}
		return nil
	}

	key, value := args[0], args[1]
	if key == "server_url" {
		if _, err := api.ParseBaseURL(value); err != nil {
			return err
		}
	}

	s, err := config.LoadSettingsFile()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := config.SetValue(s, key, value); err != nil {
		return err
	}
	if err := config.SaveSettings(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Fprintln(out, styleSuccess.Render("Updated "+key+"."))
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/launchpad/internal/api"
)

var reposCmd = &cobra.Command{
	Use:     "repos",
	Aliases: []string{"ls"},
	Short:   "List previously deployed repositories",
	Args:    cobra.NoArgs,
	RunE:    runRepos,
}

func runRepos(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := api.New(api.Config{
		BaseURL:  s.ServerURL,
		ClientID: s.ClientID,
		Timeout:  s.RequestTimeout,
	})
	if err != nil {
		return err
	}

	repos, err := client.Repos(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch repositories: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(repos) == 0 {
		fmt.Fprintln(out, "No deployments yet.")
		return nil
	}
	for _, r := range repos {
		fmt.Fprintln(out, r.Name)
	}
	return nil
}

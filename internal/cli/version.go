package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/launchpad/internal/buildinfo"
	"github.com/watchfire-io/launchpad/internal/updater"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Args:    cobra.NoArgs,
	RunE:    runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (%s)\n", styleBrand.Render("Launchpad"), styleVersion.Render(buildinfo.Version), buildinfo.Codename)
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Commit:"), buildinfo.CommitHash)
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Built:"), buildinfo.BuildDate)
	fmt.Fprintf(out, "  %s %s/%s\n", styleLabel.Render("OS/Arch:"), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Go:"), runtime.Version())

	if !versionCheck {
		return nil
	}

	res, err := updater.NewChecker().Check(cmd.Context(), buildinfo.Version)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	fmt.Fprintln(out)
	switch {
	case res.Available:
		fmt.Fprintf(out, "%s %s\n", styleWarning.Render("Update available: "+res.LatestVersion), styleHint.Render(res.ReleaseURL))
	case res.LatestVersion == "":
		fmt.Fprintln(out, styleHint.Render("No releases published yet."))
	default:
		fmt.Fprintln(out, styleSuccess.Render("Up to date."))
	}
	return nil
}

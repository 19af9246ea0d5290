// Package cli implements the launchpad CLI commands.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/watchfire-io/launchpad/internal/config"
	"github.com/watchfire-io/launchpad/internal/logging"
	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/telemetry"
	"github.com/watchfire-io/launchpad/internal/tui"
)

var (
	serverFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "launchpad",
	Short: "Deploy git repositories and watch their output live",
	Long: `Launchpad asks a deployment service to deploy a git repository and
streams the deployment's output as it happens.

Run without arguments in a terminal to open the interactive TUI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// ExitError ends the process with Code. Err, when set, has already been
// reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, styleError.Render("Error:"), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "deployment service URL (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) {
		return cmd.Help()
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogger(s)
	if err != nil {
		return err
	}
	defer closeLog()

	tracker := newTracker(s, logger)
	defer tracker.Close()

	logger.Info("starting tui", "server", s.ServerURL)
	return tui.Run(tui.Options{
		Settings: s,
		Logger:   logger,
		Tracker:  tracker,
	})
}

// loadSettings loads settings with environment and flag overrides and makes
// sure the installation has a client id.
func loadSettings() (*models.Settings, error) {
	s, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if serverFlag != "" {
		s.ServerURL = serverFlag
	}
	if logLevelFlag != "" {
		s.Log.Level = logLevelFlag
	}
	if err := config.EnsureClientID(s); err != nil {
		return nil, err
	}
	return s, nil
}

// openLogger logs to ~/.launchpad/launchpad.log so output on the terminal
// stays clean. It falls back to warnings on stderr.
func openLogger(s *models.Settings) (*slog.Logger, func(), error) {
	level, err := logging.ParseLevel(s.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	path, err := config.GlobalLogFile()
	if err == nil {
		var f *os.File
		if f, err = logging.OpenFile(path); err == nil {
			return logging.New(f, level, s.Log.JSON), func() { _ = f.Close() }, nil
		}
	}

	logger := logging.New(os.Stderr, slog.LevelWarn, s.Log.JSON)
	logger.Warn("logging to stderr", "error", err)
	return logger, func() {}, nil
}

func newTracker(s *models.Settings, logger *slog.Logger) telemetry.Tracker {
	tracker, err := telemetry.New(s.Telemetry, s.ClientID, logger)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
		return telemetry.Noop()
	}
	return tracker
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

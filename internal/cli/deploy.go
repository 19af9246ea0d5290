package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/watchfire-io/launchpad/internal/api"
	"github.com/watchfire-io/launchpad/internal/config"
	"github.com/watchfire-io/launchpad/internal/deploy"
	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/output"
	"github.com/watchfire-io/launchpad/internal/stream"
	"github.com/watchfire-io/launchpad/internal/telemetry"
)

const (
	telemetrySurface = "cli"

	// Exit status after a second interrupt detaches from the deployment.
	exitInterrupted = 130

	reconnectAttempts = 5

	defaultRequestTimeout = 30 * time.Second
)

var deployBranch string

var deployCmd = &cobra.Command{
	Use:   "deploy <git-url>",
	Short: "Deploy a repository and stream its output",
	Long: `Deploy a git repository and stream the deployment's output to stdout.

The first Ctrl+C asks the service to stop the deployment and keeps streaming
until it ends. A second Ctrl+C detaches immediately.

The exit status mirrors the deployment's exit code.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployBranch, "branch", "b", "", "branch to deploy (default from settings)")
}

// deployWatch routes stream events into the controller and wakes the
// command loop.
type deployWatch struct {
	ctrl         *deploy.Controller
	changed      chan struct{}
	finished     chan deploy.Result
	disconnected chan error
}

func newDeployWatch(ctrl *deploy.Controller) *deployWatch {
	return &deployWatch{
		ctrl:         ctrl,
		changed:      make(chan struct{}, 1),
		finished:     make(chan deploy.Result, 1),
		disconnected: make(chan error, 1),
	}
}

func (w *deployWatch) OnConnect() {}

func (w *deployWatch) OnDisconnect(err error) {
	select {
	case w.disconnected <- err:
	default:
	}
}

func (w *deployWatch) OnOutput(ev models.OutputEvent) {
	if !w.ctrl.HandleOutput(ev) {
		return
	}
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func (w *deployWatch) OnFinished(ev models.FinishedEvent) {
	res, ok := w.ctrl.HandleFinished(ev)
	if !ok {
		return
	}
	select {
	case w.finished <- res:
	default:
	}
}

func runDeploy(cmd *cobra.Command, args []string) error {
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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return executeDeploy(cmd.Context(), deployment{
		settings: s,
		logger:   logger,
		tracker:  tracker,
		stdout:   cmd.OutOrStdout(),
		stderr:   cmd.ErrOrStderr(),
		tty:      isTerminal(os.Stdout),
		signals:  sigCh,
		gitURL:   args[0],
		branch:   deployBranch,
	})
}

// deployment is everything one headless deploy needs from its caller.
type deployment struct {
	settings *models.Settings
	logger   *slog.Logger
	tracker  telemetry.Tracker
	stdout   io.Writer
	stderr   io.Writer
	tty      bool
	signals  <-chan os.Signal
	gitURL   string
	branch   string
}

func executeDeploy(ctx context.Context, d deployment) error {
	s := d.settings
	logger := d.logger

	client, err := api.New(api.Config{
		BaseURL:  s.ServerURL,
		ClientID: s.ClientID,
		Timeout:  s.RequestTimeout,
	})
	if err != nil {
		return err
	}

	streamOpts, err := stream.OptionsFor(client, s.StreamPath)
	if err != nil {
		return fmt.Errorf("invalid stream endpoint: %w", err)
	}
	streamOpts.Logger = logger

	ctrl := deploy.New(client, output.NewLog(), deploy.Options{
		DefaultBranch: s.DefaultBranch,
		Logger:        logger,
	})
	watch := newDeployWatch(ctrl)
	conn := stream.New(streamOpts, watch)

	// Connect first so no output is missed.
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", s.ServerURL, err)
	}
	defer conn.Close()

	p := newPrinter(d.stdout, d.tty)

	_, err = ctrl.Start(ctx, d.gitURL, d.branch)
	p.sync(ctrl.Log())
	if err != nil {
		if errors.Is(err, deploy.ErrEmptyGitURL) {
			return err
		}
		// Already printed as an error entry.
		return &ExitError{Code: 1, Err: err}
	}
	d.tracker.DeploymentStarted(telemetrySurface)

	session := ctrl.Session()
	if session.Active() {
		fmt.Fprintln(d.stderr, styleHint.Render(fmt.Sprintf("Deploying %s@%s (%s)", session.GitURL, session.Branch, session.ActiveCommandID)))
	}

	res, ok := ctrl.TakeReplayed()
	if !ok {
		res, err = waitForFinish(ctx, ctrl, conn, watch, p, d.signals, d.stderr, logger, s.RequestTimeout)
		if err != nil {
			p.finish()
			return err
		}
	}
	p.sync(ctrl.Log())
	p.finish()

	d.tracker.DeploymentFinished(telemetrySurface, res.ExitCode, res.EndedAt.Sub(res.StartedAt))

	if s.SaveTranscripts {
		t, err := config.WriteTranscript(res.CommandID, res.GitURL, res.Branch, res.ExitCode,
			res.StartedAt, res.EndedAt, output.PlainLines(ctrl.Log().Entries()))
		if err != nil {
			logger.Warn("failed to save transcript", "error", err)
		} else {
			fmt.Fprintln(d.stderr, styleHint.Render("Transcript saved: "+t.TranscriptID))
		}
	}

	if res.ExitCode != 0 {
		return &ExitError{Code: exitStatus(res.ExitCode)}
	}
	return nil
}

// waitForFinish prints output until the deployment's terminal event. The
// first interrupt requests a stop; the second detaches.
func waitForFinish(
	ctx context.Context,
	ctrl *deploy.Controller,
	conn *stream.Manager,
	watch *deployWatch,
	p *printer,
	sigCh <-chan os.Signal,
	stderr io.Writer,
	logger *slog.Logger,
	timeout time.Duration,
) (deploy.Result, error) {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	stopDone := make(chan error, 1)
	stopping := false

	for {
		select {
		case <-watch.changed:
			p.sync(ctrl.Log())

		case res := <-watch.finished:
			return res, nil

		case err := <-watch.disconnected:
			p.sync(ctrl.Log())
			logger.Warn("stream disconnected", "error", err)
			if err := reconnect(ctx, conn); err != nil {
				return deploy.Result{}, fmt.Errorf("lost connection before the deployment finished: %w", err)
			}

		case <-sigCh:
			if stopping {
				fmt.Fprintln(stderr, styleWarning.Render("Detached. The deployment may still be running."))
				return deploy.Result{}, &ExitError{Code: exitInterrupted}
			}
			stopping = true
			p.finish()
			fmt.Fprintln(stderr, styleWarning.Render("Stopping deployment... (Ctrl+C again to detach)"))
			go func() {
				stopCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				stopDone <- ctrl.Stop(stopCtx)
			}()

		case err := <-stopDone:
			// A failed stop is shown as an error entry; keep streaming.
			p.sync(ctrl.Log())
			if err != nil {
				logger.Warn("stop request failed", "error", err)
			}

		case <-ctx.Done():
			return deploy.Result{}, ctx.Err()
		}
	}
}

// reconnectBackOff paces headless reconnect attempts.
var reconnectBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

func reconnect(ctx context.Context, conn *stream.Manager) error {
	return backoff.Retry(func() error {
		return conn.Connect(ctx)
	}, backoff.WithContext(backoff.WithMaxRetries(reconnectBackOff(), reconnectAttempts), ctx))
}

// exitStatus maps a process exit code onto a valid status.
func exitStatus(code int) int {
	if code < 1 || code > 255 {
		return 1
	}
	return code
}

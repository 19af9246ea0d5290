// Package deploy owns the lifecycle of the single deployment a client drives:
// starting it, stopping it, and folding stream events into the output log.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/watchfire-io/launchpad/internal/logging"
	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/output"
)

var (
	// ErrEmptyGitURL is returned by Start for a blank repository URL.
	ErrEmptyGitURL = errors.New("git url is required")
	// ErrDeploymentInProgress is returned by Start while a deployment is
	// starting or running.
	ErrDeploymentInProgress = errors.New("a deployment is already in progress")
)

// API is the part of the service client the controller needs.
type API interface {
	Deploy(ctx context.Context, gitURL, branch string) (string, error)
	Stop(ctx context.Context, commandID string) error
}

// Options configures a Controller.
type Options struct {
	DefaultBranch string
	Logger        *slog.Logger
	Now           func() time.Time
}

// Result describes a deployment that reached its terminal event.
type Result struct {
	CommandID string
	GitURL    string
	Branch    string
	ExitCode  int
	StartedAt time.Time
	EndedAt   time.Time
}

// Controller drives deployments against the service and owns the output log.
type Controller struct {
	api    API
	log    *output.Log
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	session models.DeploymentSession
	// Events that arrive while Starting, before the command id is known.
	pendingOutput   []models.OutputEvent
	pendingFinished []models.FinishedEvent
	// Set when Start replays a buffered finished event.
	replayed *Result
}

// New creates a Controller writing to log.
func New(api API, log *output.Log, opts Options) *Controller {
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = "main"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:    api,
		log:    log,
		opts:   opts,
		logger: logging.WithComponent(logger, "deploy"),
	}
}

// Log returns the output log the controller writes to.
func (c *Controller) Log() *output.Log {
	return c.log
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() models.DeploymentSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// State returns the current lifecycle state.
func (c *Controller) State() models.DeploymentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State
}

// Start requests a deployment of gitURL at branch and returns the command id.
// A blank branch uses the default branch.
func (c *Controller) Start(ctx context.Context, gitURL, branch string) (string, error) {
	gitURL = strings.TrimSpace(gitURL)
	if gitURL == "" {
		return "", ErrEmptyGitURL
	}
	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = c.opts.DefaultBranch
	}

	c.mu.Lock()
	if c.session.State != models.StateIdle {
		c.mu.Unlock()
		return "", ErrDeploymentInProgress
	}
	c.session = models.DeploymentSession{
		State:     models.StateStarting,
		GitURL:    gitURL,
		Branch:    branch,
		StartedAt: c.opts.Now(),
	}
	c.pendingOutput = nil
	c.pendingFinished = nil
	c.replayed = nil
	c.mu.Unlock()

	c.logger.Info("starting deployment", "git_url", gitURL, "branch", branch)
	commandID, err := c.api.Deploy(ctx, gitURL, branch)

	c.mu.Lock()
	defer c.mu.Unlock()

	pendingOutput, pendingFinished := c.pendingOutput, c.pendingFinished
	c.pendingOutput = nil
	c.pendingFinished = nil

	if err != nil {
		c.session = models.DeploymentSession{State: models.StateIdle}
		c.log.AppendError(fmt.Sprintf("Failed to start deployment: %v", err))
		c.logger.Error("failed to start deployment", "error", err)
		return "", err
	}

	c.log.Clear()
	c.session.ActiveCommandID = commandID
	c.session.State = models.StateRunning
	c.logger.Info("deployment running", "command_id", commandID)

	for _, ev := range pendingOutput {
		if matches(ev.CommandID, commandID) {
			c.log.Apply(ev)
		}
	}
	for _, ev := range pendingFinished {
		if ev.ExitCode != nil && matches(ev.CommandID, commandID) {
			res := c.finishLocked(*ev.ExitCode)
			c.replayed = &res
			break
		}
	}
	return commandID, nil
}

// TakeReplayed returns the result of a deployment that finished before
// Start returned, if any. The result is returned once.
func (c *Controller) TakeReplayed() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replayed == nil {
		return Result{}, false
	}
	res := *c.replayed
	c.replayed = nil
	return res, true
}

// Stop asks the service to stop the active command. It does nothing when no
// command is active. The active command is only cleared by its finished event.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	commandID := c.session.ActiveCommandID
	c.mu.Unlock()

	if commandID == "" {
		return nil
	}

	c.logger.Info("stopping deployment", "command_id", commandID)
	if err := c.api.Stop(ctx, commandID); err != nil {
		c.log.AppendError(fmt.Sprintf("Failed to stop deployment: %v", err))
		c.logger.Error("failed to stop deployment", "command_id", commandID, "error", err)
		return err
	}
	return nil
}

// HandleOutput folds a streamed output event into the log. It reports
// whether the event was applied or buffered.
func (c *Controller) HandleOutput(ev models.OutputEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.session.State {
	case models.StateStarting:
		c.pendingOutput = append(c.pendingOutput, ev)
		return true
	case models.StateRunning:
		if !matches(ev.CommandID, c.session.ActiveCommandID) {
			return false
		}
	}
	return c.log.Apply(ev).Op != output.OpIgnored
}

// HandleFinished applies a terminal event for the active command. Events
// without an exit code or for another command are ignored.
func (c *Controller) HandleFinished(ev models.FinishedEvent) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.ExitCode == nil {
		return Result{}, false
	}

	switch c.session.State {
	case models.StateStarting:
		c.pendingFinished = append(c.pendingFinished, ev)
		return Result{}, false
	case models.StateRunning:
		if !matches(ev.CommandID, c.session.ActiveCommandID) {
			return Result{}, false
		}
		return c.finishLocked(*ev.ExitCode), true
	default:
		return Result{}, false
	}
}

func (c *Controller) finishLocked(exitCode int) Result {
	res := Result{
		CommandID: c.session.ActiveCommandID,
		GitURL:    c.session.GitURL,
		Branch:    c.session.Branch,
		ExitCode:  exitCode,
		StartedAt: c.session.StartedAt,
		EndedAt:   c.opts.Now(),
	}
	c.log.AppendSummary(exitCode)
	c.session = models.DeploymentSession{State: models.StateIdle}
	c.logger.Info("deployment finished", "command_id", res.CommandID, "exit_code", exitCode)
	return res
}

// An event without a command id belongs to whatever is active.
func matches(eventID, activeID string) bool {
	return eventID == "" || eventID == activeID
}

// Package telemetry sends opt-in usage events. Repository URLs and output
// never leave the machine.
package telemetry

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/posthog/posthog-go"

	"github.com/watchfire-io/launchpad/internal/buildinfo"
	"github.com/watchfire-io/launchpad/internal/logging"
	"github.com/watchfire-io/launchpad/internal/models"
)

// Event names.
const (
	EventDeploymentStarted  = "deployment_started"
	EventDeploymentFinished = "deployment_finished"
)

// Tracker records usage events.
type Tracker interface {
	DeploymentStarted(surface string)
	DeploymentFinished(surface string, exitCode int, elapsed time.Duration)
	Close() error
}

type noop struct{}

func (noop) DeploymentStarted(string)                      {}
func (noop) DeploymentFinished(string, int, time.Duration) {}
func (noop) Close() error                                  { return nil }

// Noop returns a tracker that records nothing.
func Noop() Tracker { return noop{} }

type posthogTracker struct {
	client     posthog.Client
	distinctID string
	logger     *slog.Logger
}

// New returns a PostHog-backed tracker when telemetry is enabled and has an
// API key, and a no-op tracker otherwise.
func New(cfg models.TelemetryConfig, clientID string, logger *slog.Logger) (Tracker, error) {
	if !cfg.Enabled || cfg.APIKey == "" || clientID == "" {
		return Noop(), nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Endpoint,
		Interval: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry client: %w", err)
	}

	return &posthogTracker{
		client:     client,
		distinctID: clientID,
		logger:     logging.WithComponent(logger, "telemetry"),
	}, nil
}

func (t *posthogTracker) DeploymentStarted(surface string) {
	t.capture(EventDeploymentStarted, posthog.NewProperties().
		Set("surface", surface))
}

func (t *posthogTracker) DeploymentFinished(surface string, exitCode int, elapsed time.Duration) {
	t.capture(EventDeploymentFinished, posthog.NewProperties().
		Set("surface", surface).
		Set("exit_code", exitCode).
		Set("duration_seconds", int(elapsed.Seconds())))
}

func (t *posthogTracker) capture(event string, props posthog.Properties) {
	props.
		Set("version", buildinfo.Version).
		Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH)

	err := t.client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event,
		Properties: props,
	})
	if err != nil {
		t.logger.Debug("failed to enqueue telemetry event", "event", event, "error", err)
	}
}

// Close flushes pending events.
func (t *posthogTracker) Close() error {
	return t.client.Close()
}

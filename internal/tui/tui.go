// Package tui implements the interactive TUI for Launchpad.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/watchfire-io/launchpad/internal/api"
	"github.com/watchfire-io/launchpad/internal/config"
	"github.com/watchfire-io/launchpad/internal/deploy"
	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/output"
	"github.com/watchfire-io/launchpad/internal/repos"
	"github.com/watchfire-io/launchpad/internal/stream"
	"github.com/watchfire-io/launchpad/internal/telemetry"
	"github.com/watchfire-io/launchpad/internal/watcher"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// streamBridge forwards stream callbacks into the program as messages, so
// every log mutation happens in Update. gen tags the connection the
// callbacks belong to.
type streamBridge struct {
	program *programRef
	gen     uint64
}

func (b streamBridge) OnConnect() {
	b.program.Send(StreamConnectedMsg{Gen: b.gen})
}

func (b streamBridge) OnDisconnect(err error) {
	b.program.Send(StreamDisconnectedMsg{Gen: b.gen, Err: err})
}

func (b streamBridge) OnOutput(ev models.OutputEvent) {
	b.program.Send(OutputMsg{Gen: b.gen, Event: ev})
}

func (b streamBridge) OnFinished(ev models.FinishedEvent) {
	b.program.Send(FinishedMsg{Gen: b.gen, Event: ev})
}

// serviceAPI is what the TUI needs from the deployment service.
type serviceAPI interface {
	deploy.API
	repos.Lister
}

// streamConn is the live connection owned by the model.
type streamConn interface {
	Connect(ctx context.Context) error
	Close() error
}

// clientRef lets the controller and repo fetcher keep a stable API while
// the underlying client is swapped after a server change.
type clientRef struct {
	mu sync.RWMutex
	c  serviceAPI
}

func (r *clientRef) get() serviceAPI {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.c
}

func (r *clientRef) set(c serviceAPI) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c = c
}

func (r *clientRef) Deploy(ctx context.Context, gitURL, branch string) (string, error) {
	return r.get().Deploy(ctx, gitURL, branch)
}

func (r *clientRef) Stop(ctx context.Context, commandID string) error {
	return r.get().Stop(ctx, commandID)
}

func (r *clientRef) Repos(ctx context.Context) ([]models.RepoRecord, error) {
	return r.get().Repos(ctx)
}

// connection is one service client and its stream.
type connection struct {
	api    serviceAPI
	stream streamConn
	host   string
}

// initialGen tags the connection dialed by Run.
const initialGen uint64 = 1

// dialFunc builds a connection for the given settings. gen tags stream
// callbacks so messages from a replaced connection can be ignored.
type dialFunc func(s *models.Settings, gen uint64) (connection, error)

// Options configures Run.
type Options struct {
	Settings *models.Settings
	Logger   *slog.Logger
	Tracker  telemetry.Tracker
}

// Run launches the TUI and blocks until it exits.
func Run(opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = telemetry.Noop()
	}

	ref := &programRef{}
	dial := newDialer(ref, logger)

	conn, err := dial(opts.Settings, initialGen)
	if err != nil {
		return err
	}

	client := &clientRef{}
	client.set(conn.api)

	ctrl := deploy.New(client, output.NewLog(), deploy.Options{
		DefaultBranch: opts.Settings.DefaultBranch,
		Logger:        logger,
	})
	fetcher := repos.New(client, logger)

	w := startWatcher(logger)

	model := NewModel(Deps{
		Settings:   opts.Settings,
		Logger:     logger,
		Client:     client,
		Conn:       conn,
		Dial:       dial,
		Controller: ctrl,
		Repos:      fetcher,
		Tracker:    tracker,
		Watcher:    w,
	}, ref)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Store program reference for goroutine sends
	ref.Set(p)

	final, err := p.Run()
	ref.Clear()
	if fm, ok := final.(Model); ok {
		fm.shutdown()
	} else {
		model.shutdown()
	}
	return err
}

func newDialer(ref *programRef, logger *slog.Logger) dialFunc {
	return func(s *models.Settings, gen uint64) (connection, error) {
		client, err := api.New(api.Config{
			BaseURL:  s.ServerURL,
			ClientID: s.ClientID,
			Timeout:  s.RequestTimeout,
		})
		if err != nil {
			return connection{}, err
		}

		streamOpts, err := stream.OptionsFor(client, s.StreamPath)
		if err != nil {
			return connection{}, fmt.Errorf("invalid stream endpoint: %w", err)
		}
		streamOpts.Logger = logger

		return connection{
			api:    client,
			stream: stream.New(streamOpts, streamBridge{program: ref, gen: gen}),
			host:   hostOf(client.BaseURL()),
		}, nil
	}
}

// startWatcher watches ~/.launchpad for settings edits. The TUI works
// without it.
func startWatcher(logger *slog.Logger) *watcher.Watcher {
	if err := config.EnsureGlobalDir(); err != nil {
		logger.Warn("settings watcher disabled", "error", err)
		return nil
	}
	dir, err := config.GlobalDir()
	if err != nil {
		logger.Warn("settings watcher disabled", "error", err)
		return nil
	}
	w, err := watcher.New(dir, logger)
	if err != nil {
		logger.Warn("settings watcher disabled", "error", err)
		return nil
	}
	if err := w.Start(); err != nil {
		logger.Warn("settings watcher disabled", "error", err)
		w.Stop()
		return nil
	}
	return w
}

func hostOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Host
}

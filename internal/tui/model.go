package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/launchpad/internal/deploy"
	"github.com/watchfire-io/launchpad/internal/models"
	"github.com/watchfire-io/launchpad/internal/repos"
	"github.com/watchfire-io/launchpad/internal/telemetry"
	"github.com/watchfire-io/launchpad/internal/watcher"
)

const (
	telemetrySurface = "tui"

	minWidth  = 80
	minHeight = 24

	defaultRequestTimeout = 30 * time.Second
)

// Deps are the collaborators a Model drives.
type Deps struct {
	Settings   *models.Settings
	Logger     *slog.Logger
	Client     *clientRef
	Conn       connection
	Dial       dialFunc
	Controller *deploy.Controller
	Repos      *repos.Fetcher
	Tracker    telemetry.Tracker
	Watcher    *watcher.Watcher
}

// Model is the root Bubbletea model for the TUI.
type Model struct {
	settings *models.Settings
	logger   *slog.Logger

	// Service connection
	client    *clientRef
	conn      connection
	gen       uint64
	dial      dialFunc
	connected bool
	retry     *backoff.ExponentialBackOff

	// Server change waiting for the running deployment to finish
	pendingServer *models.Settings

	ctrl    *deploy.Controller
	fetcher *repos.Fetcher
	tracker telemetry.Tracker
	watcher *watcher.Watcher

	// UI state
	leftTab       int     // 0=Deploy, 1=Settings
	rightTab      int     // 0=Output, 1=History
	focusedPanel  int     // 0=left, 1=right
	showHelp      bool
	splitRatio    float64
	width         int
	height        int

	confirmMode int

	// Status display
	err    error
	notice string

	// Child components
	form         *DeployForm
	repoList     *RepoList
	outputView   *OutputView
	history      *HistoryView
	settingsForm *SettingsForm

	// Program reference for goroutine Send()
	program *programRef

	ctx    context.Context
	cancel context.CancelFunc

	// Spinner state
	spinner        spinner.Model
	spinnerRunning bool
	deploying      bool // deploy request in flight

	// Dragging state
	dragging bool
}

// NewModel creates the initial TUI model.
func NewModel(deps Deps, program *programRef) Model {
	ctx, cancel := context.WithCancel(context.Background())

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = telemetry.Noop()
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 500 * time.Millisecond
	retry.MaxInterval = 30 * time.Second
	retry.MaxElapsedTime = 0
	retry.Reset()

	settingsForm := NewSettingsForm()
	settingsForm.Load(deps.Settings)

	return Model{
		settings:     deps.Settings,
		logger:       logger,
		client:       deps.Client,
		conn:         deps.Conn,
		gen:          initialGen,
		dial:         deps.Dial,
		retry:        retry,
		ctrl:         deps.Controller,
		fetcher:      deps.Repos,
		tracker:      tracker,
		watcher:      deps.Watcher,
		splitRatio:   defaultSplit,
		form:         NewDeployForm(deps.Settings.DefaultBranch),
		repoList:     NewRepoList(),
		outputView:   NewOutputView(),
		history:      NewHistoryView(),
		settingsForm: settingsForm,
		program:      program,
		ctx:          ctx,
		cancel:       cancel,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		connectStreamCmd(m.ctx, m.conn.stream, m.gen),
		refreshReposCmd(m.ctx, m.fetcher),
		loadHistoryCmd(),
		watchCmd(m.watcher),
		textinput.Blink,
		tea.EnableMouseAllMotion,
	)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	// ── Window resize ──────────────────────────────────────────────
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		m.outputView.Sync(m.ctrl.Log())
		return m, nil

	// ── Key events ─────────────────────────────────────────────────
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	// ── Mouse events ───────────────────────────────────────────────
	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	// ── Stream connection ──────────────────────────────────────────
	case StreamConnectedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.connected = true
		m.retry.Reset()
		m.logger.Info("stream connected", "host", m.conn.host)
		return m, nil

	case StreamDisconnectedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.connected = false
		if msg.Err != nil {
			m.logger.Warn("stream disconnected", "host", m.conn.host, "error", msg.Err)
		}
		return m, reconnectAfter(m.retry.NextBackOff(), m.gen)

	case StreamConnectFailedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.connected = false
		delay := m.retry.NextBackOff()
		m.logger.Warn("stream connect failed", "host", m.conn.host, "error", msg.Err, "retry_in", delay)
		return m, reconnectAfter(delay, m.gen)

	case ReconnectMsg:
		if msg.Gen != m.gen || m.connected {
			return m, nil
		}
		return m, connectStreamCmd(m.ctx, m.conn.stream, m.gen)

	// ── Deployment output ──────────────────────────────────────────
	case OutputMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		if m.ctrl.HandleOutput(msg.Event) {
			m.outputView.Sync(m.ctrl.Log())
		}
		return m, nil

	case FinishedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		res, ok := m.ctrl.HandleFinished(msg.Event)
		if !ok {
			return m, nil
		}
		m.outputView.Sync(m.ctrl.Log())
		return m, m.deploymentFinished(res)

	// ── Deploy / stop results ──────────────────────────────────────
	case DeployResultMsg:
		m.deploying = false
		m.outputView.Sync(m.ctrl.Log())
		if msg.Err != nil {
			if errors.Is(msg.Err, deploy.ErrEmptyGitURL) || errors.Is(msg.Err, deploy.ErrDeploymentInProgress) {
				m.err = msg.Err
				cmds = append(cmds, clearErrorAfter(5*time.Second))
			} else {
				m.logger.Warn("deploy request failed", "error", msg.Err)
			}
			return m, tea.Batch(cmds...)
		}
		m.tracker.DeploymentStarted(telemetrySurface)
		if res, ok := m.ctrl.TakeReplayed(); ok {
			return m, m.deploymentFinished(res)
		}
		return m, nil

	case StopResultMsg:
		m.outputView.Sync(m.ctrl.Log())
		if msg.Err != nil {
			m.logger.Warn("stop request failed", "error", msg.Err)
		}
		return m, nil

	// ── Spinner tick ──────────────────────────────────────────────
	case spinner.TickMsg:
		if m.deploying || m.ctrl.State() != models.StateIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		m.spinnerRunning = false
		return m, nil

	// ── Repositories ──────────────────────────────────────────────
	case ReposLoadedMsg:
		m.repoList.SetRepos(msg.Repos)
		return m, nil

	// ── History ───────────────────────────────────────────────────
	case HistoryLoadedMsg:
		m.history.SetTranscripts(msg.Transcripts)
		return m, nil

	case TranscriptContentMsg:
		m.history.SetContent(msg.Transcript, msg.Content)
		return m, nil

	case TranscriptSavedMsg:
		m.logger.Debug("transcript saved", "transcript_id", msg.Transcript.TranscriptID)
		return m, loadHistoryCmd()

	// ── Settings ──────────────────────────────────────────────────
	case WatchEventMsg:
		cmds = append(cmds, watchCmd(m.watcher))
		switch msg.Event.Type {
		case watcher.EventSettingsChanged:
			cmds = append(cmds, reloadSettingsCmd(m.settings.ClientID))
		case watcher.EventTranscriptWritten:
			cmds = append(cmds, loadHistoryCmd())
		}
		return m, tea.Batch(cmds...)

	case SettingsLoadedMsg:
		return m, m.applySettings(msg.Settings)

	case SettingsSavedMsg:
		m.notice = "Saved"
		cmds = append(cmds,
			clearSavedAfter(3*time.Second),
			reloadSettingsCmd(m.settings.ClientID),
		)
		return m, tea.Batch(cmds...)

	// ── Error handling ─────────────────────────────────────────────
	case ErrorMsg:
		m.err = msg.Err
		cmds = append(cmds, clearErrorAfter(5*time.Second))
		return m, tea.Batch(cmds...)

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case ClearSavedMsg:
		m.notice = ""
		return m, nil
	}

	// Cursor blink and other input-internal messages.
	if m.form.Focused() {
		return m, m.form.Update(msg)
	}
	return m, nil
}

// deploymentFinished runs the follow-ups of a terminal event.
func (m *Model) deploymentFinished(res deploy.Result) tea.Cmd {
	m.tracker.DeploymentFinished(telemetrySurface, res.ExitCode, res.EndedAt.Sub(res.StartedAt))

	cmds := []tea.Cmd{refreshReposCmd(m.ctx, m.fetcher)}
	if m.settings.SaveTranscripts {
		cmds = append(cmds, saveTranscriptCmd(res, m.ctrl.Log()))
	}
	if m.pendingServer != nil {
		s := m.pendingServer
		m.pendingServer = nil
		cmds = append(cmds, m.switchServer(s))
	}
	return tea.Batch(cmds...)
}

// applySettings adopts reloaded settings. A changed server is dialed
// immediately when idle, otherwise after the running deployment ends.
func (m *Model) applySettings(s *models.Settings) tea.Cmd {
	old := m.settings
	m.settings = s
	m.settingsForm.Load(s)
	m.form.SetDefaultBranch(s.DefaultBranch)

	if !endpointChanged(old, s) {
		return nil
	}
	if m.ctrl.State() != models.StateIdle {
		m.pendingServer = s
		m.notice = "Server change applies when the deployment ends"
		return clearSavedAfter(5 * time.Second)
	}
	return m.switchServer(s)
}

func endpointChanged(a, b *models.Settings) bool {
	return a.ServerURL != b.ServerURL ||
		a.StreamPath != b.StreamPath ||
		a.RequestTimeout != b.RequestTimeout ||
		a.ClientID != b.ClientID
}

// switchServer replaces the service connection. The old stream is closed
// off the update loop and its late messages are dropped by generation.
func (m *Model) switchServer(s *models.Settings) tea.Cmd {
	gen := m.gen + 1
	conn, err := m.dial(s, gen)
	if err != nil {
		m.err = fmt.Errorf("failed to switch server: %w", err)
		return clearErrorAfter(5 * time.Second)
	}

	old := m.conn
	m.conn = conn
	m.gen = gen
	m.connected = false
	m.client.set(conn.api)
	m.retry.Reset()
	m.logger.Info("switching server", "host", conn.host)

	return tea.Batch(
		closeStreamCmd(old.stream),
		connectStreamCmd(m.ctx, conn.stream, gen),
		refreshReposCmd(m.ctx, m.fetcher),
	)
}

func (m *Model) requestTimeout() time.Duration {
	if m.settings.RequestTimeout > 0 {
		return m.settings.RequestTimeout
	}
	return defaultRequestTimeout
}

// handleKey processes key events.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Confirm mode captures everything
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}

	if m.showHelp {
		return m.handleHelpKey(msg)
	}

	// Global shortcuts (always work)
	switch {
	case key.Matches(msg, globalKeys.Quit):
		if m.ctrl.State() != models.StateIdle {
			m.confirmMode = confirmQuit
			return nil
		}
		return m.doQuit()

	case key.Matches(msg, globalKeys.Help):
		m.showHelp = true
		return nil

	case key.Matches(msg, globalKeys.Tab):
		if m.settingsForm.IsEditing() {
			m.settingsForm.CancelEdit()
		}
		m.focusedPanel = 1 - m.focusedPanel
		m.updateFocus()
		return nil

	case key.Matches(msg, globalKeys.Stop):
		if m.ctrl.Session().Active() {
			m.confirmMode = confirmStop
		}
		return nil

	case key.Matches(msg, globalKeys.Refresh):
		return tea.Batch(refreshReposCmd(m.ctx, m.fetcher), loadHistoryCmd())
	}

	// Tab switching, unless the keys are going into a text input
	if !m.typing() {
		switch {
		case key.Matches(msg, tabSwitchKeys.Tab1):
			m.switchTab(0)
			return nil
		case key.Matches(msg, tabSwitchKeys.Tab2):
			return m.switchTab(1)
		}
	}

	// Route to focused panel
	if m.focusedPanel == 0 {
		return m.handleLeftPanelKey(msg)
	}
	return m.handleRightPanelKey(msg)
}

// typing reports whether key presses are text input.
func (m *Model) typing() bool {
	if m.focusedPanel != 0 {
		return false
	}
	if m.leftTab == 0 {
		return m.form.Focused()
	}
	return m.settingsForm.IsEditing()
}

func (m *Model) switchTab(tab int) tea.Cmd {
	if m.focusedPanel == 0 {
		m.leftTab = tab
		m.updateFocus()
		return nil
	}
	m.rightTab = tab
	if tab == 1 {
		return loadHistoryCmd()
	}
	return nil
}

// updateFocus gives the deploy form keyboard focus only when its panel
// and tab are active.
func (m *Model) updateFocus() {
	if m.focusedPanel == 0 && m.leftTab == 0 {
		if !m.form.Focused() && m.repoList.Len() == 0 {
			m.form.Focus()
		}
		return
	}
	m.form.Blur()
}

func (m *Model) handleLeftPanelKey(msg tea.KeyMsg) tea.Cmd {
	switch m.leftTab {
	case 0: // Deploy
		return m.handleDeployKey(msg)
	case 1: // Settings
		return m.handleSettingsKey(msg)
	}
	return nil
}

func (m *Model) handleRightPanelKey(msg tea.KeyMsg) tea.Cmd {
	switch m.rightTab {
	case 0: // Output
		return m.handleOutputKey(msg)
	case 1: // History
		return m.handleHistoryKey(msg)
	}
	return nil
}

func (m *Model) handleDeployKey(msg tea.KeyMsg) tea.Cmd {
	if m.form.Focused() {
		switch {
		case key.Matches(msg, formKeys.Submit):
			return m.submitDeploy()
		case key.Matches(msg, formKeys.Down):
			if m.form.FocusIndex() == fieldURL {
				m.form.FocusField(fieldBranch)
			} else if m.repoList.Len() > 0 {
				m.form.Blur()
			}
			return nil
		case key.Matches(msg, formKeys.Up):
			if m.form.FocusIndex() == fieldBranch {
				m.form.FocusField(fieldURL)
			}
			return nil
		}
		return m.form.Update(msg)
	}

	switch {
	case key.Matches(msg, listKeys.Up):
		if !m.repoList.MoveUp() {
			m.form.FocusField(fieldBranch)
			m.form.Focus()
		}
	case key.Matches(msg, listKeys.Down):
		m.repoList.MoveDown()
	case key.Matches(msg, listKeys.Enter):
		if r, ok := m.repoList.Selected(); ok {
			m.form.SetURL(r.Name)
		}
	case key.Matches(msg, listKeys.Back):
		m.form.Focus()
	}
	return nil
}

func (m *Model) submitDeploy() tea.Cmd {
	branch := m.form.Branch()
	if branch == "" {
		branch = m.settings.DefaultBranch
	}

	m.rightTab = 0
	m.outputView.Follow()
	m.deploying = true

	cmds := []tea.Cmd{startDeployCmd(m.ctx, m.ctrl, m.form.URL(), branch)}
	if !m.spinnerRunning {
		m.spinnerRunning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	if m.settingsForm.IsEditing() {
		switch msg.Type {
		case tea.KeyEnter:
			changed, k, v := m.settingsForm.FinishEdit()
			if changed {
				return saveSettingCmd(k, v)
			}
			return nil
		case tea.KeyEscape:
			m.settingsForm.CancelEdit()
			return nil
		default:
			// Forward to text input
			ti := m.settingsForm.InputModel()
			newTI, cmd := ti.Update(msg)
			*ti = newTI
			return cmd
		}
	}

	switch {
	case key.Matches(msg, settingsKeys.Up):
		m.settingsForm.MoveUp()
	case key.Matches(msg, settingsKeys.Down):
		m.settingsForm.MoveDown()
	case key.Matches(msg, settingsKeys.Toggle):
		changed, k, v := m.settingsForm.Toggle()
		if changed {
			return saveSettingCmd(k, v)
		}
	case key.Matches(msg, settingsKeys.Enter):
		if m.settingsForm.StartEdit() {
			return nil
		}
		// If it's a toggle field, toggle it
		changed, k, v := m.settingsForm.Toggle()
		if changed {
			return saveSettingCmd(k, v)
		}
	}
	return nil
}

func (m *Model) handleOutputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, outputKeys.Up):
		m.outputView.ScrollUp(1)
	case key.Matches(msg, outputKeys.Down):
		m.outputView.ScrollDown(1)
	case key.Matches(msg, outputKeys.PageUp):
		m.outputView.PageUp()
	case key.Matches(msg, outputKeys.PageDown):
		m.outputView.PageDown()
	case key.Matches(msg, outputKeys.Top):
		m.outputView.GotoTop()
	case key.Matches(msg, outputKeys.Bottom):
		m.outputView.Follow()
	}
	return nil
}

func (m *Model) handleHistoryKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, listKeys.Up):
		m.history.MoveUp()
	case key.Matches(msg, listKeys.Down):
		m.history.MoveDown()
	case key.Matches(msg, outputKeys.PageUp):
		m.history.PageUp()
	case key.Matches(msg, outputKeys.PageDown):
		m.history.PageDown()
	case key.Matches(msg, listKeys.Enter):
		if !m.history.IsViewing() {
			if t := m.history.Selected(); t != nil {
				return readTranscriptCmd(t.TranscriptID)
			}
		}
	case key.Matches(msg, listKeys.Back):
		if m.history.IsViewing() {
			m.history.GoBack()
		}
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		switch m.confirmMode {
		case confirmQuit:
			m.confirmMode = confirmNone
			return m.doQuit()
		case confirmStop:
			m.confirmMode = confirmNone
			return stopDeployCmd(m.ctx, m.ctrl, m.requestTimeout())
		}
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
	}
	return nil
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, overlayKeys.Cancel), key.Matches(msg, globalKeys.Help):
		m.showHelp = false
	case key.Matches(msg, globalKeys.Quit):
		m.showHelp = false
		return m.handleKey(msg)
	}
	return nil
}

// doQuit stops message delivery and quits. The stream and watcher are
// released by shutdown once the program has returned.
func (m *Model) doQuit() tea.Cmd {
	m.cancel()
	m.program.Clear()
	return tea.Quit
}

// shutdown releases the stream connection and the settings watcher.
// Safe to call more than once.
func (m Model) shutdown() {
	m.cancel()
	m.program.Clear()
	if m.conn.stream != nil {
		if err := m.conn.stream.Close(); err != nil {
			m.logger.Warn("failed to close stream", "error", err)
		}
	}
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// ── Mouse handling ───────────────────────────────────────────────

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			m.handleWheel(msg.Button == tea.MouseButtonWheelUp)
			return nil
		}

		// Header click switches tabs
		if msg.Y == 0 {
			return m.handleHeaderClick(msg.X)
		}

		l := computeLayout(m.width, m.height, m.splitRatio)
		if l.onDivider(msg.X) {
			m.dragging = true
			return nil
		}
		m.focusedPanel = l.panelAt(msg.X)
		m.updateFocus()

	case tea.MouseActionRelease:
		m.dragging = false

	case tea.MouseActionMotion:
		if m.dragging {
			m.splitRatio = splitAt(msg.X, m.width)
			m.updateDimensions()
			m.outputView.Sync(m.ctrl.Log())
		}
	}
	return nil
}

func (m *Model) handleWheel(up bool) {
	if m.focusedPanel == 0 {
		switch m.leftTab {
		case 0:
			if up {
				m.repoList.MoveUp()
			} else {
				m.repoList.MoveDown()
			}
		case 1:
			if up {
				m.settingsForm.MoveUp()
			} else {
				m.settingsForm.MoveDown()
			}
		}
		return
	}

	switch m.rightTab {
	case 0:
		if up {
			m.outputView.ScrollUp(3)
		} else {
			m.outputView.ScrollDown(3)
		}
	case 1:
		if up {
			m.history.MoveUp()
		} else {
			m.history.MoveDown()
		}
	}
}

func (m *Model) handleHeaderClick(x int) tea.Cmd {
	if tab := tabAt(leftTabNames, x-leftTabsStart); tab >= 0 {
		m.focusedPanel = 0
		return m.switchTab(tab)
	}

	right := headerRight(m.conn.host, m.rightTab, m.ctrl.Session())
	start := m.width - lipgloss.Width(right)
	if tab := tabAt(rightTabNames, x-start); tab >= 0 {
		m.focusedPanel = 1
		m.updateFocus()
		return m.switchTab(tab)
	}
	return nil
}

// ── Dimension helpers ────────────────────────────────────────────

func (m *Model) updateDimensions() {
	l := computeLayout(m.width, m.height, m.splitRatio)
	m.form.SetWidth(l.leftInner)
	m.repoList.SetHeight(l.repoRows)
	m.settingsForm.SetSize(l.leftInner, l.innerHeight)
	m.outputView.SetSize(l.rightInner, l.innerHeight)
	m.history.SetSize(l.rightInner, l.innerHeight)
}

// ── View ─────────────────────────────────────────────────────────

// View renders the TUI.
func (m Model) View() string {
	// Minimum size check
	if m.width < minWidth || m.height < minHeight {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				lipgloss.NewStyle().Foreground(colorDim).Render(
					fmt.Sprintf("Need %dx%d, have ", minWidth, minHeight)+lipgloss.NewStyle().Bold(true).Render(sizeStr),
				),
			))
	}

	session := m.ctrl.Session()
	l := computeLayout(m.width, m.height, m.splitRatio)

	header := renderHeader(m.conn.host, m.leftTab, m.rightTab, session, m.connected, m.width)

	m.outputView.SetSession(session, m.spinner.View())
	panels := l.render(m.renderLeftPanel(l.leftInner), m.renderRightPanel(), m.focusedPanel)
	statusBar := renderStatusBar(&m, m.width)

	view := lipgloss.JoinVertical(lipgloss.Left, header, panels, statusBar)

	if m.showHelp {
		view = withHelp(view, m.width, m.height)
	}

	return view
}

func (m Model) renderLeftPanel(width int) string {
	switch m.leftTab {
	case 0:
		listFocused := m.focusedPanel == 0 && !m.form.Focused()
		return m.form.View() + "\n\n" + m.repoList.View(width, listFocused)
	case 1:
		return m.settingsForm.View()
	}
	return ""
}

func (m Model) renderRightPanel() string {
	switch m.rightTab {
	case 0:
		return m.outputView.View()
	case 1:
		return m.history.View()
	}
	return ""
}

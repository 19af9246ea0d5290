// Package stream maintains the websocket connection that carries live
// command output from the deployment service.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchfire-io/launchpad/internal/logging"
	"github.com/watchfire-io/launchpad/internal/models"
)

const (
	defaultPingInterval     = 25 * time.Second
	defaultPongWait         = 60 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	writeWait               = 5 * time.Second
)

// Handler receives connection transitions and decoded events. Callbacks run
// on the read-loop goroutine, in arrival order. A handler must not call
// Manager.Close from inside a callback.
type Handler interface {
	OnConnect()
	OnDisconnect(err error)
	OnOutput(ev models.OutputEvent)
	OnFinished(ev models.FinishedEvent)
}

// Options configures a Manager.
type Options struct {
	URL              string
	Header           http.Header
	Jar              http.CookieJar
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongWait         time.Duration
	Logger           *slog.Logger
}

// ErrClosedWhileConnecting is returned by Connect when Close ran during the
// handshake. The new connection is discarded.
var ErrClosedWhileConnecting = errors.New("stream closed while connecting")

// Manager owns at most one live connection at a time.
type Manager struct {
	opts    Options
	handler Handler
	logger  *slog.Logger

	mu     sync.Mutex
	conn   *connection
	closes uint64 // bumped by Close
}

type connection struct {
	ws      *websocket.Conn
	done    chan struct{}
	closing chan struct{}
	once    sync.Once
}

func (c *connection) markClosing() {
	c.once.Do(func() { close(c.closing) })
}

func (c *connection) isClosing() bool {
	select {
	case <-c.closing:
		return true
	default:
		return false
	}
}

// New creates a Manager. The handler is fixed for the Manager's lifetime.
func New(opts Options, handler Handler) *Manager {
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.PongWait <= 0 {
		opts.PongWait = defaultPongWait
	}
	if opts.PongWait <= opts.PingInterval {
		opts.PongWait = opts.PingInterval * 2
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		opts:    opts,
		handler: handler,
		logger:  logging.WithComponent(logger, "stream"),
	}
}

// Connect dials the stream endpoint. It is a no-op while a connection is
// already open. The handshake runs without holding the lock, so Connected
// and Close never wait on it.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.conn != nil {
		m.mu.Unlock()
		return nil
	}
	closes := m.closes
	m.mu.Unlock()

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: m.opts.HandshakeTimeout,
		Jar:              m.opts.Jar,
	}
	ws, resp, err := dialer.DialContext(ctx, m.opts.URL, m.opts.Header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to %s (status %d): %w", m.opts.URL, resp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect to %s: %w", m.opts.URL, err)
	}

	m.mu.Lock()
	switch {
	case m.closes != closes:
		m.mu.Unlock()
		_ = ws.Close()
		return ErrClosedWhileConnecting
	case m.conn != nil:
		// A concurrent Connect won.
		m.mu.Unlock()
		_ = ws.Close()
		return nil
	}
	c := &connection{
		ws:      ws,
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	m.conn = c
	m.mu.Unlock()

	m.logger.Info("stream connected", "url", m.opts.URL)

	go m.keepalive(c)
	go m.readLoop(c)
	return nil
}

// Connected reports whether a connection is open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Close tears down the current connection and waits for its read loop to
// exit. It is safe to call more than once; a later Connect opens a new
// connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	c := m.conn
	m.conn = nil
	m.closes++
	m.mu.Unlock()

	if c == nil {
		return nil
	}

	c.markClosing()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	_ = c.ws.Close()
	<-c.done
	return nil
}

func (m *Manager) readLoop(c *connection) {
	var loopErr error
	defer func() {
		m.mu.Lock()
		if m.conn == c {
			m.conn = nil
		}
		m.mu.Unlock()

		c.markClosing()
		_ = c.ws.Close()

		if loopErr != nil {
			m.logger.Warn("stream disconnected", "error", loopErr)
		} else {
			m.logger.Info("stream closed")
		}
		m.handler.OnDisconnect(loopErr)
		close(c.done)
	}()

	m.handler.OnConnect()

	_ = c.ws.SetReadDeadline(time.Now().Add(m.opts.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(m.opts.PongWait))
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if c.isClosing() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			loopErr = fmt.Errorf("stream read failed: %w", err)
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		m.dispatch(data)
	}
}

func (m *Manager) dispatch(data []byte) {
	out, fin, err := decode(data)
	switch {
	case errors.Is(err, errUnknownEvent):
		m.logger.Debug("skipping stream event", "error", err)
	case err != nil:
		m.logger.Warn("dropping malformed stream frame", "error", err)
	case out != nil:
		m.handler.OnOutput(*out)
	case fin != nil:
		m.handler.OnFinished(*fin)
	}
}

func (m *Manager) keepalive(c *connection) {
	ticker := time.NewTicker(m.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closing:
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				m.logger.Debug("stream ping failed", "error", err)
				return
			}
		}
	}
}

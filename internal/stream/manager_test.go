package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchfire-io/launchpad/internal/api"
	"github.com/watchfire-io/launchpad/internal/models"
)

type recorder struct {
	mu          sync.Mutex
	connects    int
	disconnects []error
	outputs     []models.OutputEvent
	finished    []models.FinishedEvent

	events chan string
}

func newRecorder() *recorder {
	return &recorder{events: make(chan string, 64)}
}

func (r *recorder) OnConnect() {
	r.mu.Lock()
	r.connects++
	r.mu.Unlock()
	r.events <- "connect"
}

func (r *recorder) OnDisconnect(err error) {
	r.mu.Lock()
	r.disconnects = append(r.disconnects, err)
	r.mu.Unlock()
	r.events <- "disconnect"
}

func (r *recorder) OnOutput(ev models.OutputEvent) {
	r.mu.Lock()
	r.outputs = append(r.outputs, ev)
	r.mu.Unlock()
	r.events <- "output"
}

func (r *recorder) OnFinished(ev models.FinishedEvent) {
	r.mu.Lock()
	r.finished = append(r.finished, ev)
	r.mu.Unlock()
	r.events <- "finished"
}

func (r *recorder) wait(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-r.events:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}

type testServer struct {
	*httptest.Server
	conns    chan *websocket.Conn
	upgrades atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{conns: make(chan *websocket.Conn, 4)}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.upgrades.Add(1)
		ts.conns <- conn
		// Drain so close frames and pongs are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})
	ts.Server = httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) wsURL(t *testing.T) string {
	t.Helper()
	base, err := url.Parse(ts.URL)
	require.NoError(t, err)
	u, err := URL(base, "/ws")
	require.NoError(t, err)
	return u
}

func (ts *testServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-ts.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

func TestConnectRoutesEvents(t *testing.T) {
	ts := newTestServer(t)
	rec := newRecorder()
	m := New(Options{URL: ts.wsURL(t)}, rec)

	require.NoError(t, m.Connect(context.Background()))
	defer m.Close()
	rec.wait(t, "connect")
	assert.True(t, m.Connected())

	server := ts.accept(t)
	require.NoError(t, server.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"commandOutput","data":{"commandId":"c1","output":"10%","outputType":"stderr","isProgress":true,"replaceLast":true}}`)))
	require.NoError(t, server.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"commandFinished","data":{"commandId":"c1","exitCode":2}}`)))

	rec.wait(t, "output")
	rec.wait(t, "finished")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.outputs, 1)
	assert.Equal(t, models.OutputEvent{
		CommandID: "c1", Text: "10%", Kind: models.KindStderr, IsProgress: true, ReplaceLast: true,
	}, rec.outputs[0])
	require.Len(t, rec.finished, 1)
	require.NotNil(t, rec.finished[0].ExitCode)
	assert.Equal(t, 2, *rec.finished[0].ExitCode)
}

func TestMalformedAndUnknownFramesAreSkipped(t *testing.T) {
	ts := newTestServer(t)
	rec := newRecorder()
	m := New(Options{URL: ts.wsURL(t)}, rec)

	require.NoError(t, m.Connect(context.Background()))
	defer m.Close()
	rec.wait(t, "connect")

	server := ts.accept(t)
	for _, msg := range []string{
		`not json`,
		`{"event":"heartbeat","data":{}}`,
		`{"event":"commandOutput","data":"oops"}`,
		`{"event":"commandOutput","data":{"commandId":"c1","output":"ok"}}`,
	} {
		require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(msg)))
	}

	rec.wait(t, "output")
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.outputs, 1)
	assert.Equal(t, "ok", rec.outputs[0].Text)
	assert.Equal(t, models.KindStdout, rec.outputs[0].Kind)
	assert.Equal(t, 1, rec.connects)
}

func TestConnectIsIdempotent(t *testing.T) {
	ts := newTestServer(t)
	rec := newRecorder()
	m := New(Options{URL: ts.wsURL(t)}, rec)

	require.NoError(t, m.Connect(context.Background()))
	require.NoError(t, m.Connect(context.Background()))
	rec.wait(t, "connect")
	ts.accept(t)

	require.NoError(t, m.Close())
	rec.wait(t, "disconnect")

	assert.Equal(t, int32(1), ts.upgrades.Load())
	rec.mu.Lock()
	assert.Equal(t, 1, rec.connects)
	require.Len(t, rec.disconnects, 1)
	assert.NoError(t, rec.disconnects[0])
	rec.mu.Unlock()
}

func TestCloseIsIdempotentAndAllowsReconnect(t *testing.T) {
	ts := newTestServer(t)
	rec := newRecorder()
	m := New(Options{URL: ts.wsURL(t)}, rec)

	assert.NoError(t, m.Close())

	require.NoError(t, m.Connect(context.Background()))
	rec.wait(t, "connect")
	ts.accept(t)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	rec.wait(t, "disconnect")
	assert.False(t, m.Connected())

	require.NoError(t, m.Connect(context.Background()))
	rec.wait(t, "connect")
	ts.accept(t)
	assert.True(t, m.Connected())
	require.NoError(t, m.Close())
	rec.wait(t, "disconnect")

	assert.Equal(t, int32(2), ts.upgrades.Load())
}

func TestServerDropReportsError(t *testing.T) {
	ts := newTestServer(t)
	rec := newRecorder()
	m := New(Options{URL: ts.wsURL(t)}, rec)

	require.NoError(t, m.Connect(context.Background()))
	rec.wait(t, "connect")
	server := ts.accept(t)
	require.NoError(t, server.UnderlyingConn().Close())

	rec.wait(t, "disconnect")
	assert.False(t, m.Connected())
	rec.mu.Lock()
	require.Len(t, rec.disconnects, 1)
	assert.Error(t, rec.disconnects[0])
	rec.mu.Unlock()
}

func TestConnectFailure(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	rec := newRecorder()
	m := New(Options{URL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}, rec)
	err := m.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.False(t, m.Connected())
}

func TestDialSendsHeaderAndCookies(t *testing.T) {
	gotHeader := make(chan http.Header, 1)
	upgrader := websocket.Upgrader{}
	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		gotHeader <- r.Header.Clone()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err == nil {
			defer conn.Close()
			_, _, _ = conn.ReadMessage()
		}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	jar := &staticJar{cookies: []*http.Cookie{{Name: "sid", Value: "abc"}}}
	header := http.Header{}
	header.Set("X-Launchpad-Client", "client-1")

	rec := newRecorder()
	m := New(Options{URL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", Header: header, Jar: jar}, rec)
	require.NoError(t, m.Connect(context.Background()))
	defer m.Close()

	h := <-gotHeader
	assert.Equal(t, "client-1", h.Get("X-Launchpad-Client"))
	assert.Contains(t, h.Get("Cookie"), "sid=abc")
}

type staticJar struct {
	cookies []*http.Cookie
}

func (j *staticJar) SetCookies(*url.URL, []*http.Cookie) {}

func (j *staticJar) Cookies(*url.URL) []*http.Cookie { return j.cookies }

func TestURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"http://localhost:3001", "/ws", "ws://localhost:3001/ws"},
		{"https://deploy.example.com", "socket", "wss://deploy.example.com/socket"},
		{"http://localhost:3001/api", "", "ws://localhost:3001/"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			base, err := url.Parse(tt.base)
			require.NoError(t, err)
			got, err := URL(base, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := URL(&url.URL{Scheme: "ftp", Host: "x"}, "/ws")
	assert.Error(t, err)
}

func TestOptionsForSharesClientCredentials(t *testing.T) {
	c, err := api.New(api.Config{BaseURL: "https://deploy.example.com", ClientID: "client-1"})
	require.NoError(t, err)

	opts, err := OptionsFor(c, "/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://deploy.example.com/ws", opts.URL)
	assert.Equal(t, "client-1", opts.Header.Get(api.ClientIDHeader))
	assert.Same(t, c.Jar(), opts.Jar)
}

func TestHandshakeDoesNotBlockCloseOrConnected(t *testing.T) {
	release := make(chan struct{})
	upgrader := websocket.Upgrader{}
	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		<-release
		conn, err := upgrader.Upgrade(w, r, nil)
		if err == nil {
			defer conn.Close()
			_, _, _ = conn.ReadMessage()
		}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	defer close(release)

	rec := newRecorder()
	m := New(Options{URL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}, rec)

	connectErr := make(chan error, 1)
	go func() { connectErr <- m.Connect(context.Background()) }()

	// Let the handshake start and stall on the server.
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		assert.False(t, m.Connected())
		assert.NoError(t, m.Close())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on an in-flight handshake")
	}

	release <- struct{}{}
	select {
	case err := <-connectErr:
		assert.ErrorIs(t, err, ErrClosedWhileConnecting)
	case <-time.After(2 * time.Second):
		t.Fatal("Connect did not return")
	}
	assert.False(t, m.Connected())
	assert.Empty(t, rec.events)
}

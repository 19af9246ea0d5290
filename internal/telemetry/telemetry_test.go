package telemetry

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchfire-io/launchpad/internal/models"
)

func TestNewDisabled(t *testing.T) {
	tests := []struct {
		name     string
		cfg      models.TelemetryConfig
		clientID string
	}{
		{name: "disabled", cfg: models.TelemetryConfig{Enabled: false, APIKey: "k"}, clientID: "c"},
		{name: "no key", cfg: models.TelemetryConfig{Enabled: true}, clientID: "c"},
		{name: "no client id", cfg: models.TelemetryConfig{Enabled: true, APIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.cfg, tt.clientID, nil)
			require.NoError(t, err)
			assert.Equal(t, Noop(), tr)
			tr.DeploymentStarted("tui")
			assert.NoError(t, tr.Close())
		})
	}
}

func TestEventsAreSentWithoutRepositoryData(t *testing.T) {
	var mu sync.Mutex
	var bodies []string

	r := chi.NewRouter()
	r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		var reader io.Reader = r.Body
		if r.Header.Get("Content-Encoding") == "gzip" {
			gz, err := gzip.NewReader(r.Body)
			if err == nil {
				defer gz.Close()
				reader = gz
			}
		}
		data, _ := io.ReadAll(reader)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":1}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	tr, err := New(models.TelemetryConfig{Enabled: true, APIKey: "phc_test", Endpoint: srv.URL}, "client-1", nil)
	require.NoError(t, err)

	tr.DeploymentStarted("cli")
	tr.DeploymentFinished("cli", 1, 3*time.Second)
	require.NoError(t, tr.Close())

	mu.Lock()
	defer mu.Unlock()
	all := strings.Join(bodies, "\n")
	assert.Contains(t, all, EventDeploymentStarted)
	assert.Contains(t, all, EventDeploymentFinished)
	assert.Contains(t, all, "client-1")
	assert.NotContains(t, all, "github.com")
}

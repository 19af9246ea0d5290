package updater

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releasesServer(t *testing.T, status int, tag string) *Checker {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/releases/latest", func(w http.ResponseWriter, req *http.Request) {
		assert.Contains(t, req.Header.Get("User-Agent"), "launchpad/")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(Release{TagName: tag, HTMLURL: "https://example.com/" + tag})
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &Checker{URL: srv.URL + "/releases/latest", Client: srv.Client()}
}

func TestCheckNewerRelease(t *testing.T) {
	c := releasesServer(t, http.StatusOK, "v1.3.0")

	res, err := c.Check(context.Background(), "1.2.9")
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, "1.3.0", res.LatestVersion)
	assert.Equal(t, "https://example.com/v1.3.0", res.ReleaseURL)
}

func TestCheckUpToDate(t *testing.T) {
	c := releasesServer(t, http.StatusOK, "v1.3.0")

	res, err := c.Check(context.Background(), "1.3.0")
	require.NoError(t, err)
	assert.False(t, res.Available)
}

func TestCheckDevBuildIsOutOfDate(t *testing.T) {
	c := releasesServer(t, http.StatusOK, "v0.1.0")

	res, err := c.Check(context.Background(), "dev")
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestCheckNoReleases(t *testing.T) {
	c := releasesServer(t, http.StatusNotFound, "")

	res, err := c.Check(context.Background(), "1.0.0")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Empty(t, res.LatestVersion)
}

func TestCheckServerError(t *testing.T) {
	c := releasesServer(t, http.StatusBadGateway, "")

	_, err := c.Check(context.Background(), "1.0.0")
	assert.Error(t, err)
}

func TestParseSemver(t *testing.T) {
	tests := []struct {
		in      string
		want    Semver
		wantErr bool
	}{
		{in: "1.2.3", want: Semver{1, 2, 3}},
		{in: "v0.10.0", want: Semver{0, 10, 0}},
		{in: "2.0.0-rc.1", want: Semver{2, 0, 0}},
		{in: "dev", wantErr: true},
		{in: "1.2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSemver(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, Semver{1, 2, 3}.LessThan(Semver{1, 3, 0}))
	assert.False(t, Semver{2, 0, 0}.LessThan(Semver{1, 9, 9}))
}

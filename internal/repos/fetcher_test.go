package repos

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchfire-io/launchpad/internal/models"
)

type listerFunc func(ctx context.Context) ([]models.RepoRecord, error)

func (f listerFunc) Repos(ctx context.Context) ([]models.RepoRecord, error) { return f(ctx) }

func names(list []models.RepoRecord) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.Name)
	}
	return out
}

func TestRefreshReplacesCache(t *testing.T) {
	calls := 0
	f := New(listerFunc(func(context.Context) ([]models.RepoRecord, error) {
		calls++
		if calls == 1 {
			return []models.RepoRecord{{Name: "a"}, {Name: "b"}}, nil
		}
		return []models.RepoRecord{{Name: "c"}}, nil
	}), nil)

	assert.Empty(t, f.Repos())
	assert.Equal(t, []string{"a", "b"}, names(f.Refresh(context.Background())))
	assert.Equal(t, []string{"c"}, names(f.Refresh(context.Background())))
	assert.Equal(t, []string{"c"}, names(f.Repos()))
}

func TestRefreshFailureKeepsStaleListAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	fail := false
	f := New(listerFunc(func(context.Context) ([]models.RepoRecord, error) {
		if fail {
			return nil, errors.New("service unavailable")
		}
		return []models.RepoRecord{{Name: "a"}}, nil
	}), logger)

	f.Refresh(context.Background())
	fail = true
	got := f.Refresh(context.Background())

	assert.Equal(t, []string{"a"}, names(got))
	assert.Contains(t, buf.String(), "failed to fetch repositories")
	assert.Contains(t, buf.String(), "service unavailable")
	assert.Contains(t, buf.String(), "component=repos")
}

func TestRefreshNilListBecomesEmpty(t *testing.T) {
	f := New(listerFunc(func(context.Context) ([]models.RepoRecord, error) {
		return nil, nil
	}), nil)

	got := f.Refresh(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOverlappingRefreshesLastIssuedWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	var mu sync.Mutex

	f := New(listerFunc(func(context.Context) ([]models.RepoRecord, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return []models.RepoRecord{{Name: "old"}}, nil
		}
		return []models.RepoRecord{{Name: "new"}}, nil
	}), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.Refresh(context.Background())
	}()

	<-started
	require.Equal(t, []string{"new"}, names(f.Refresh(context.Background())))
	close(release)
	wg.Wait()

	assert.Equal(t, []string{"new"}, names(f.Repos()))
}

func TestReposReturnsCopy(t *testing.T) {
	f := New(listerFunc(func(context.Context) ([]models.RepoRecord, error) {
		return []models.RepoRecord{{Name: "a"}}, nil
	}), nil)
	f.Refresh(context.Background())

	got := f.Repos()
	got[0].Name = "mutated"
	assert.Equal(t, "a", f.Repos()[0].Name)
}

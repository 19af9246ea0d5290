// Package repos keeps the cached list of previously deployed repositories.
package repos

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/watchfire-io/launchpad/internal/logging"
	"github.com/watchfire-io/launchpad/internal/models"
)

// Lister fetches the repository list from the service.
type Lister interface {
	Repos(ctx context.Context) ([]models.RepoRecord, error)
}

// Fetcher caches the last successfully fetched repository list. When
// refreshes overlap, only a response newer than the last applied one
// replaces the cache.
type Fetcher struct {
	lister Lister
	logger *slog.Logger

	mu      sync.Mutex
	repos   []models.RepoRecord
	issued  uint64
	applied uint64
}

// New creates a Fetcher with an empty cache.
func New(lister Lister, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		lister: lister,
		logger: logging.WithComponent(logger, "repos"),
		repos:  []models.RepoRecord{},
	}
}

// Refresh fetches the list and returns the cache afterwards. Failures are
// logged and leave the cache untouched.
func (f *Fetcher) Refresh(ctx context.Context) []models.RepoRecord {
	f.mu.Lock()
	f.issued++
	gen := f.issued
	f.mu.Unlock()

	list, err := f.lister.Repos(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.logger.Warn("failed to fetch repositories", "error", err)
		return slices.Clone(f.repos)
	}
	if gen <= f.applied {
		f.logger.Debug("discarding stale repository list", "generation", gen, "applied", f.applied)
		return slices.Clone(f.repos)
	}

	f.applied = gen
	if list == nil {
		list = []models.RepoRecord{}
	}
	f.repos = slices.Clone(list)
	return slices.Clone(f.repos)
}

// Repos returns the cached list.
func (f *Fetcher) Repos() []models.RepoRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.repos)
}

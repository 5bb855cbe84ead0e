// Package cache persists one JSON file per upstream endpoint so a
// later run can rebuild unchanged sections without hitting the API.
package cache

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"

	"github.com/clanwarfare/snapshot/internal/platform/logging"
	"github.com/clanwarfare/snapshot/internal/platform/resilience"
)

// ErrNotCached marks a cache miss, which callers recover from by
// refreshing. Every other read error is fatal to the caller.
var ErrNotCached = crerr.New("endpoint not cached")

// Fetcher performs the live upstream call for an endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) ([]byte, error)
}

// Store is the on-disk cache gateway. Endpoint names may contain
// slashes, which become directories under the data dir.
type Store struct {
	dir     string
	fetcher Fetcher
	logger  *logging.Logger
	flight  resilience.Flight[[]byte]
}

func NewStore(dir string, fetcher Fetcher, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		dir:     dir,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Read returns the cached payload for endpoint, or ErrNotCached when
// no cache entry exists.
func (s *Store) Read(_ context.Context, endpoint string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(endpoint))
	if err != nil {
		if crerr.Is(err, fs.ErrNotExist) {
			return nil, crerr.Wrapf(ErrNotCached, "endpoint=%s", endpoint)
		}
		return nil, crerr.Wrapf(err, "read cache endpoint=%s", endpoint)
	}
	return raw, nil
}

// Refresh fetches the endpoint live, overwrites its cache entry with
// the payload verbatim, and returns the payload. Concurrent refreshes
// of the same endpoint share one upstream call.
func (s *Store) Refresh(ctx context.Context, endpoint string) ([]byte, error) {
	raw, err, shared := s.flight.Do(endpoint, func() ([]byte, error) {
		raw, err := s.fetcher.Fetch(ctx, endpoint)
		if err != nil {
			return nil, crerr.Wrapf(err, "fetch endpoint=%s", endpoint)
		}
		if err := s.write(endpoint, raw); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "refresh shared with in-flight call", "endpoint", endpoint)
	}
	return raw, nil
}

// LoadOrRefresh restores the endpoint from cache unless forceRefresh
// is set or the entry is missing; a miss falls through to a live
// refresh, any other read failure propagates.
func (s *Store) LoadOrRefresh(ctx context.Context, endpoint string, forceRefresh bool) ([]byte, error) {
	if forceRefresh {
		s.logger.DebugContext(ctx, "fetching endpoint from api", "endpoint", endpoint)
		return s.Refresh(ctx, endpoint)
	}

	raw, err := s.Read(ctx, endpoint)
	if err == nil {
		s.logger.DebugContext(ctx, "restored endpoint from cache", "endpoint", endpoint)
		return raw, nil
	}
	if !crerr.Is(err, ErrNotCached) {
		return nil, err
	}

	s.logger.DebugContext(ctx, "cache miss, updating from api", "endpoint", endpoint)
	return s.Refresh(ctx, endpoint)
}

func (s *Store) write(endpoint string, raw []byte) error {
	path := s.path(endpoint)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return crerr.Wrapf(err, "create cache dir endpoint=%s", endpoint)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return crerr.Wrapf(err, "write cache endpoint=%s", endpoint)
	}
	return nil
}

func (s *Store) path(endpoint string) string {
	return filepath.Join(s.dir, filepath.FromSlash(endpoint)+".json")
}

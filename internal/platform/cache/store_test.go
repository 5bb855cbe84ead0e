package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"
)

type fetcherMock struct {
	mock.Mock
}

func (m *fetcherMock) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	args := m.Called(ctx, endpoint)
	if raw := args.Get(0); raw != nil {
		return raw.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestLoadOrRefresh_MissFetchesOnceAndWritesCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fetcher := &fetcherMock{}
	fetcher.On("Fetch", mock.Anything, "Clan/GetAllClans").Return([]byte(`[{"groupId":1}]`), nil).Once()

	store := NewStore(dir, fetcher, nil)

	raw, err := store.LoadOrRefresh(context.Background(), "Clan/GetAllClans", false)
	if err != nil {
		t.Fatalf("load or refresh: %v", err)
	}
	if string(raw) != `[{"groupId":1}]` {
		t.Fatalf("payload mismatch: %s", raw)
	}

	cached, err := os.ReadFile(filepath.Join(dir, "Clan", "GetAllClans.json"))
	if err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
	if string(cached) != string(raw) {
		t.Fatalf("cache content mismatch: %s", cached)
	}

	fetcher.AssertExpectations(t)
}

func TestLoadOrRefresh_HitSkipsFetch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Event"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Event", "GetAllEvents.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	fetcher := &fetcherMock{}
	store := NewStore(dir, fetcher, nil)

	raw, err := store.LoadOrRefresh(context.Background(), "Event/GetAllEvents", false)
	if err != nil {
		t.Fatalf("load or refresh: %v", err)
	}
	if string(raw) != `[]` {
		t.Fatalf("payload mismatch: %s", raw)
	}

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestLoadOrRefresh_ForceAlwaysRefreshesAndOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Status.json"), []byte(`"stale"`), 0o644); err != nil {
		t.Fatal(err)
	}

	fetcher := &fetcherMock{}
	fetcher.On("Fetch", mock.Anything, "Status").Return([]byte(`"fresh"`), nil).Once()

	store := NewStore(dir, fetcher, nil)

	raw, err := store.LoadOrRefresh(context.Background(), "Status", true)
	if err != nil {
		t.Fatalf("load or refresh: %v", err)
	}
	if string(raw) != `"fresh"` {
		t.Fatalf("payload mismatch: %s", raw)
	}

	cached, err := os.ReadFile(filepath.Join(dir, "Status.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(cached) != `"fresh"` {
		t.Fatalf("cache not overwritten: %s", cached)
	}

	fetcher.AssertExpectations(t)
}

func TestRead_MissReturnsSentinel(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), &fetcherMock{}, nil)

	_, err := store.Read(context.Background(), "Component/GetLastUpdatedTimes")
	if !crerr.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestLoadOrRefresh_NonMissReadErrorPropagates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A directory where the cache file should be forces a read error
	// that is not a miss.
	if err := os.MkdirAll(filepath.Join(dir, "Broken.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	fetcher := &fetcherMock{}
	store := NewStore(dir, fetcher, nil)

	_, err := store.LoadOrRefresh(context.Background(), "Broken", false)
	if err == nil {
		t.Fatal("expected read error")
	}
	if crerr.Is(err, ErrNotCached) {
		t.Fatalf("corrupt entry misreported as miss: %v", err)
	}

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

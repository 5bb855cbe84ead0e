package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	sonic "github.com/bytedance/sonic"

	"github.com/clanwarfare/snapshot/external/bungie"
	"github.com/clanwarfare/snapshot/external/warfare"
	"github.com/clanwarfare/snapshot/internal/config"
	"github.com/clanwarfare/snapshot/internal/platform/cache"
	"github.com/clanwarfare/snapshot/internal/platform/logging"
	"github.com/clanwarfare/snapshot/internal/platform/resilience"
	"github.com/clanwarfare/snapshot/internal/usecase"
)

// snapshotJSON sorts map keys so the output is byte-identical for
// identical input, which keeps site rebuilds cache-friendly.
var snapshotJSON = sonic.Config{SortMapKeys: true}.Froze()

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := warfare.NewClient(warfare.ClientConfig{
		BaseURL:    cfg.APIBaseURL,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.APITimeout,
		MaxRetries: cfg.APIMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          cfg.APICircuitEnabled,
			FailureThreshold: cfg.APICircuitFailureCount,
			OpenTimeout:      cfg.APICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APICircuitHalfOpenMax,
		},
	})

	store := cache.NewStore(cfg.DataDir, client, logger)

	prober := bungie.NewClient(bungie.ClientConfig{
		BaseURL: cfg.BungieBaseURL,
		APIKey:  cfg.BungieAPIKey,
		Logger:  logger,
	})

	service, err := usecase.NewFetchService(usecase.FetchConfig{
		MaxWorkers:                 cfg.FetchMaxWorkers,
		EnableMatchHistory:         cfg.EnableMatchHistory,
		EnablePreviousLeaderboards: cfg.EnablePreviousLeaderboards,
		ArtifactDirs:               cfg.ArtifactDirs,
		Defaults:                   usecase.DefaultAPIStatus(bungie.StatusDisabled),
	}, store, prober, logger)
	if err != nil {
		logger.Error("build fetch service", "error", err)
		os.Exit(1)
	}

	snap, err := service.Run(ctx)
	if err != nil {
		logger.Error("fetch run failed", "error", err)
		os.Exit(1)
	}

	raw, err := snapshotJSON.Marshal(snap)
	if err != nil {
		logger.Error("encode snapshot", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SnapshotPath), 0o755); err != nil {
		logger.Error("create snapshot dir", "path", cfg.SnapshotPath, "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(cfg.SnapshotPath, raw, 0o644); err != nil {
		logger.Error("write snapshot", "path", cfg.SnapshotPath, "error", err)
		os.Exit(1)
	}

	logger.Info("snapshot written", "path", cfg.SnapshotPath, "bytes", len(raw))
}

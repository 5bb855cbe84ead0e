package config

import (
	"testing"
	"time"

	"github.com/clanwarfare/snapshot/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIBaseURL != "https://api.destinyclanwarfare.com/api" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 20*time.Second {
		t.Fatalf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.APIMaxRetries != 3 {
		t.Fatalf("APIMaxRetries = %d", cfg.APIMaxRetries)
	}
	if !cfg.APICircuitEnabled {
		t.Fatal("circuit breaker disabled by default")
	}
	if cfg.EnableMatchHistory || cfg.EnablePreviousLeaderboards {
		t.Fatal("flag-gated sections enabled by default")
	}
	if cfg.FetchMaxWorkers != 4 {
		t.Fatalf("FetchMaxWorkers = %d", cfg.FetchMaxWorkers)
	}
	if got := []string{"public", ".cache"}; len(cfg.ArtifactDirs) != 2 ||
		cfg.ArtifactDirs[0] != got[0] || cfg.ArtifactDirs[1] != got[1] {
		t.Fatalf("ArtifactDirs = %v", cfg.ArtifactDirs)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://staging.example.com/api")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("ENABLE_MATCH_HISTORY", "true")
	t.Setenv("ENABLE_PREVIOUS_LEADERBOARDS", "true")
	t.Setenv("ARTIFACT_DIRS", "dist, out ,")
	t.Setenv("FETCH_MAX_WORKERS", "8")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIBaseURL != "https://staging.example.com/api" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 5*time.Second {
		t.Fatalf("APITimeout = %v", cfg.APITimeout)
	}
	if !cfg.EnableMatchHistory || !cfg.EnablePreviousLeaderboards {
		t.Fatal("flags not applied")
	}
	if len(cfg.ArtifactDirs) != 2 || cfg.ArtifactDirs[0] != "dist" || cfg.ArtifactDirs[1] != "out" {
		t.Fatalf("ArtifactDirs = %v", cfg.ArtifactDirs)
	}
	if cfg.FetchMaxWorkers != 8 {
		t.Fatalf("FetchMaxWorkers = %d", cfg.FetchMaxWorkers)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("ENABLE_MATCH_HISTORY", "yes-please")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed boolean")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("FETCH_MAX_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for zero workers")
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/clanwarfare/snapshot/internal/platform/logging"
)

// Config stores runtime configuration for one fetch run.
type Config struct {
	APIBaseURL             string        `validate:"required"`
	APIKey                 string       
	APITimeout             time.Duration `validate:"gt=0"`
	APIMaxRetries          int           `validate:"gte=0"`
	APICircuitEnabled      bool         
	APICircuitFailureCount int           `validate:"gte=0"`
	APICircuitOpenTimeout  time.Duration `validate:"gte=0"`
	APICircuitHalfOpenMax  int           `validate:"gte=0"`

	BungieBaseURL string `validate:"required"`
	BungieAPIKey  string

	DataDir      string `validate:"required"`
	SnapshotPath string `validate:"required"`
	ArtifactDirs []string

	EnableMatchHistory         bool
	EnablePreviousLeaderboards bool
	FetchMaxWorkers            int `validate:"gt=0"`

	LogLevel logging.Level
}

func Load() (Config, error) {
	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_TIMEOUT: %w", err)
	}
	apiMaxRetries, err := getEnvAsInt("API_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_MAX_RETRIES: %w", err)
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("API_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	circuitHalfOpenMax, err := getEnvAsInt("API_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	enableMatchHistory, err := strconv.ParseBool(getEnv("ENABLE_MATCH_HISTORY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ENABLE_MATCH_HISTORY: %w", err)
	}
	enablePreviousLeaderboards, err := strconv.ParseBool(getEnv("ENABLE_PREVIOUS_LEADERBOARDS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ENABLE_PREVIOUS_LEADERBOARDS: %w", err)
	}

	maxWorkers, err := getEnvAsInt("FETCH_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_MAX_WORKERS: %w", err)
	}

	cfg := Config{
		APIBaseURL:             getEnv("API_BASE_URL", "https://api.destinyclanwarfare.com/api"),
		APIKey:                 strings.TrimSpace(os.Getenv("API_KEY")),
		APITimeout:             apiTimeout,
		APIMaxRetries:          apiMaxRetries,
		APICircuitEnabled:      circuitEnabled,
		APICircuitFailureCount: circuitFailureCount,
		APICircuitOpenTimeout:  circuitOpenTimeout,
		APICircuitHalfOpenMax:  circuitHalfOpenMax,

		BungieBaseURL: getEnv("BUNGIE_BASE_URL", "https://www.bungie.net/Platform"),
		BungieAPIKey:  strings.TrimSpace(os.Getenv("BUNGIE_API_KEY")),

		DataDir:      getEnv("DATA_DIR", "data"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "data/snapshot.json"),
		ArtifactDirs: splitCSV(getEnv("ARTIFACT_DIRS", "public,.cache")),

		EnableMatchHistory:         enableMatchHistory,
		EnablePreviousLeaderboards: enablePreviousLeaderboards,
		FetchMaxWorkers:            maxWorkers,

		LogLevel: parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(value string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

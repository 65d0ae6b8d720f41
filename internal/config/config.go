package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database. Empty means run with in-memory persistence only.
	DatabaseURL string

	// Sync tuning. The suppression window must exceed the debounce window so
	// a client's own edit has time to round-trip before a concurrent
	// broadcast can overwrite it.
	DebounceWindow    time.Duration
	SuppressionWindow time.Duration

	// Assets
	MaxAssetBytes int64
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DebounceWindow:    time.Duration(getEnvInt("DEBOUNCE_MS", 300)) * time.Millisecond,
		SuppressionWindow: time.Duration(getEnvInt("SUPPRESSION_MS", 500)) * time.Millisecond,
		MaxAssetBytes:     int64(getEnvInt("MAX_ASSET_BYTES", 8*1024*1024)),
	}

	if cfg.SuppressionWindow <= cfg.DebounceWindow {
		cfg.SuppressionWindow = cfg.DebounceWindow + 200*time.Millisecond
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

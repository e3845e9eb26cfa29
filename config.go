package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// config is read once at startup from the environment (and .env if present).
type config struct {
	Addr             string
	LocalDBPath      string
	CloudURL         string // empty runs without a cloud mirror
	LogLevel         zapcore.Level
	CloudSyncTimeout time.Duration
}

// loadConfig loads .env when it exists and reads settings from the
// environment, applying defaults for anything unset.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := config{
		Addr:             envOr("APP_ADDR", "localhost:3000"),
		LocalDBPath:      os.Getenv("LOCAL_DB_PATH"),
		CloudURL:         os.Getenv("DB_URL"),
		LogLevel:         zapcore.InfoLevel,
		CloudSyncTimeout: 10 * time.Second,
	}

	if cfg.LocalDBPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return config{}, fmt.Errorf("resolve LOCAL_DB_PATH default: %w", err)
		}
		cfg.LocalDBPath = filepath.Join(dir, "wellness", "wellness.db")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}
	if v := os.Getenv("CLOUD_SYNC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return config{}, fmt.Errorf("invalid CLOUD_SYNC_TIMEOUT %q", v)
		}
		cfg.CloudSyncTimeout = d
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds the production zap logger at the configured level.
func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

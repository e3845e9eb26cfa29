package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("LOCAL_DB_PATH", "/tmp/wellness-test.db")
	t.Setenv("DB_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CLOUD_SYNC_TIMEOUT", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", cfg.Addr)
	assert.Equal(t, "/tmp/wellness-test.db", cfg.LocalDBPath)
	assert.Empty(t, cfg.CloudURL)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.CloudSyncTimeout)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":8080")
	t.Setenv("LOCAL_DB_PATH", "/tmp/wellness-test.db")
	t.Setenv("DB_URL", "postgres://localhost/wellness")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CLOUD_SYNC_TIMEOUT", "3s")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "postgres://localhost/wellness", cfg.CloudURL)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.CloudSyncTimeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("LOCAL_DB_PATH", "/tmp/wellness-test.db")

	t.Setenv("LOG_LEVEL", "loud")
	_, err := loadConfig()
	assert.Error(t, err)

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CLOUD_SYNC_TIMEOUT", "-1s")
	_, err = loadConfig()
	assert.Error(t, err)
}

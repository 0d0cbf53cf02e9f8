package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr())
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "paddle_game.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 168*time.Hour, cfg.Storage.RedisGameTTL)
	assert.Equal(t, 3, cfg.Game.DefaultMaxPlayers)
	assert.Equal(t, 5, cfg.Game.DefaultGoal)
	assert.Equal(t, 10, cfg.Game.MaxPlayersLimit)
	assert.Equal(t, 9, cfg.Game.MaxGoal)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 9191, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
log-level: warn
http:
  host: 127.0.0.1
  port: 7000
storage:
  type: redis
  redis-url: redis://cache:6379/1
game:
  default-goal: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTP.Addr())
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "redis://cache:6379/1", cfg.Storage.RedisURL)
	assert.Equal(t, 7, cfg.Game.DefaultGoal)
	assert.Equal(t, 3, cfg.Game.DefaultMaxPlayers)
}

func TestInvalidValues(t *testing.T) {
	t.Run("storage type", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "postgres")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("default goal above limit", func(t *testing.T) {
		t.Setenv("GAME_DEFAULT_GOAL", "12")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

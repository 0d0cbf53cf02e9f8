package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the server configuration, read from an optional YAML file and
// overridden by environment variables
type Config struct {
	LogLevel string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTP     HTTP    `yaml:"http"`
	Storage  Storage `yaml:"storage"`
	Game     Game    `yaml:"game"`
}

type HTTP struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:""`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read-timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write-timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type Storage struct {
	Type         string        `yaml:"type" env:"STORAGE_TYPE" env-default:"memory"`
	RedisURL     string        `yaml:"redis-url" env:"REDIS_URL" env-default:"redis://localhost:6379"`
	RedisGameTTL time.Duration `yaml:"redis-game-ttl" env:"REDIS_GAME_TTL" env-default:"168h"`
	SQLitePath   string        `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"paddle_game.db"`
}

type Game struct {
	DefaultMaxPlayers int `yaml:"default-max-players" env:"GAME_DEFAULT_MAX_PLAYERS" env-default:"3"`
	DefaultGoal       int `yaml:"default-goal" env:"GAME_DEFAULT_GOAL" env-default:"5"`
	MaxPlayersLimit   int `yaml:"max-players-limit" env:"GAME_MAX_PLAYERS_LIMIT" env-default:"10"`
	MaxGoal           int `yaml:"max-goal" env:"GAME_MAX_GOAL" env-default:"9"`
}

// Load reads configuration from path, or from the environment alone when
// path is empty
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("invalid storage type %q: must be memory, redis or sqlite", c.Storage.Type)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Game.MaxPlayersLimit < 2 || c.Game.MaxGoal < 1 {
		return fmt.Errorf("game limits must allow at least 2 players and 1 round")
	}
	if c.Game.DefaultMaxPlayers < 2 || c.Game.DefaultMaxPlayers > c.Game.MaxPlayersLimit {
		return fmt.Errorf("default max players %d outside 2..%d", c.Game.DefaultMaxPlayers, c.Game.MaxPlayersLimit)
	}
	if c.Game.DefaultGoal < 1 || c.Game.DefaultGoal > c.Game.MaxGoal {
		return fmt.Errorf("default goal %d outside 1..%d", c.Game.DefaultGoal, c.Game.MaxGoal)
	}
	return nil
}

// Level returns the slog level for LogLevel
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// Addr returns the HTTP listen address
func (h HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}

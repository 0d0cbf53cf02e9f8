package factory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/paddlegame/internal/config"
	"github.com/mcoot/paddlegame/internal/dependencies/clock"
	"github.com/mcoot/paddlegame/internal/dependencies/random"
	"github.com/mcoot/paddlegame/internal/services/game"
	"github.com/mcoot/paddlegame/internal/services/scoring"
	"github.com/mcoot/paddlegame/internal/storage"
	"github.com/mcoot/paddlegame/internal/storage/memory"
	redisstorage "github.com/mcoot/paddlegame/internal/storage/redis"
	sqlitestorage "github.com/mcoot/paddlegame/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	ScoringService *scoring.Service
	Variant        game.Variant
	GameController *game.Controller

	// Defaults applied when a create request omits them
	GameDefaults GameDefaults
}

// GameDefaults are the settings used for games created without explicit values
type GameDefaults struct {
	MaxPlayers int
	Goal       int
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// GameConfig bounds the games players may create
	// If zero value, defaults to game.DefaultConfig()
	GameConfig game.Config
	// GameDefaults are used when a create request omits settings
	GameDefaults GameDefaults
}

// FromConfig builds a factory Config from the loaded server configuration
func FromConfig(cfg *config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.Storage.RedisURL
	redisCfg.GameTTL = cfg.Storage.RedisGameTTL

	return Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		RedisConfig: &redisCfg,
		SQLitePath:  cfg.Storage.SQLitePath,
		GameConfig: game.Config{
			MaxPlayers: cfg.Game.MaxPlayersLimit,
			MaxGoal:    cfg.Game.MaxGoal,
		},
		GameDefaults: GameDefaults{
			MaxPlayers: cfg.Game.DefaultMaxPlayers,
			Goal:       cfg.Game.DefaultGoal,
		},
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default game config if not provided
	gameCfg := cfg.GameConfig
	if gameCfg.MaxPlayers == 0 || gameCfg.MaxGoal == 0 {
		gameCfg = game.DefaultConfig()
	}

	app := newWithDependencies(store, clk, rnd, gameCfg, logger)
	if cfg.GameDefaults.MaxPlayers != 0 {
		app.GameDefaults = cfg.GameDefaults
	}
	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLitePath required when StorageType is sqlite")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return sqlitestorage.New(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, gameCfg game.Config, logger *slog.Logger) *App {
	// Create services
	scoringService := scoring.New(scoring.DefaultConfig())
	variant := game.NewPaddleVariant(scoringService)
	gameController := game.NewController(store, variant, clk, rnd, logger, gameCfg)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		ScoringService: scoringService,
		Variant:        variant,
		GameController: gameController,
		GameDefaults: GameDefaults{
			MaxPlayers: 3,
			Goal:       5,
		},
	}
}

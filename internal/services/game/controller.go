package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mcoot/paddlegame/internal/dependencies/clock"
	"github.com/mcoot/paddlegame/internal/dependencies/random"
	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/history"
	"github.com/mcoot/paddlegame/internal/storage"
)

const (
	// GameIDLength is the length of generated game ids
	GameIDLength = 12
	// GameIDAlphabet is the characters used in game ids
	GameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxIDAttempts = 10
)

// Config bounds the games that may be created
type Config struct {
	MaxPlayers int // upper limit for a game's max_players
	MaxGoal    int // upper limit for a game's goal
}

// DefaultConfig returns the standard limits
func DefaultConfig() Config {
	return Config{
		MaxPlayers: 10,
		MaxGoal:    9,
	}
}

// Controller manages the game state machine, registration and move flow.
// Every mutation of a game runs under that game's lock and commits through a
// single storage.Atomic call.
type Controller struct {
	storage storage.Storage
	variant Variant
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	config  Config
	locks   *gameLocks
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	variant Variant,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	config Config,
) *Controller {
	return &Controller{
		storage: storage,
		variant: variant,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "game")),
		config:  config,
		locks:   newGameLocks(),
	}
}

// CreateGame opens registration for a new game with the creator as its first player
func (c *Controller) CreateGame(ctx context.Context, creator string, maxPlayers, goal int) (*model.Game, error) {
	if maxPlayers < 2 || maxPlayers > c.config.MaxPlayers {
		return nil, fmt.Errorf("max players must be between 2 and %d: %w", c.config.MaxPlayers, model.ErrInvalidGameConfig)
	}
	if goal < 1 || goal > c.config.MaxGoal {
		return nil, fmt.Errorf("goal must be between 1 and %d: %w", c.config.MaxGoal, model.ErrInvalidGameConfig)
	}

	now := c.clock.Now()
	game := &model.Game{
		MaxPlayers: maxPlayers,
		Goal:       goal,
		State:      model.GameStateRegistering,
		Players: []model.Player{
			{
				Identity: creator,
				Active:   true,
				Paddles:  c.variant.InitialPaddles(goal),
			},
		},
		Ledger:    model.Ledger{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Generate unique game id
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return nil, fmt.Errorf("no free game id after %d attempts", maxIDAttempts)
		}
		game.ID = model.GameID(c.random.String(GameIDLength, GameIDAlphabet))
		exists, err := c.storage.GameExists(ctx, game.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		err = c.storage.CreateGame(ctx, game)
		if errors.Is(err, storage.ErrGameExists) {
			continue
		}
		if err != nil {
			c.logger.Error("failed to save game",
				slog.String("game_id", string(game.ID)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		break
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("creator", creator),
		slog.Int("max_players", maxPlayers),
		slog.Int("goal", goal),
	)

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// commit writes game back through fn, provided nobody else has committed
// since it was read
func (c *Controller) commit(ctx context.Context, game *model.Game, fn func(tx storage.Tx) error) error {
	if err := c.storage.Atomic(ctx, game.ID, game.Version, fn); err != nil {
		return err
	}
	game.Version++
	return nil
}

// JoinGame registers identity in a game. The join that fills the last seat
// starts the game.
func (c *Controller) JoinGame(ctx context.Context, gameID model.GameID, identity string) (*model.Game, error) {
	unlock := c.locks.lock(gameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.PlayerIndex(identity) >= 0 {
		return nil, model.ErrAlreadyInGame
	}
	if game.IsFull() || game.State != model.GameStateRegistering {
		return nil, model.ErrGameFull
	}

	game.Players = append(game.Players, model.Player{
		Identity: identity,
		Active:   true,
		Paddles:  c.variant.InitialPaddles(game.Goal),
	})
	index := len(game.Players) - 1

	started := game.IsFull()
	if started {
		if err := advance(game, model.GameStateInProgress); err != nil {
			return nil, err
		}
	}
	game.UpdatedAt = c.clock.Now()

	err = c.commit(ctx, game, func(tx storage.Tx) error {
		if err := tx.AddPlayer(ctx, game, index); err != nil {
			return err
		}
		return tx.SaveMoveAndState(ctx, game)
	})
	if err != nil {
		if errors.Is(err, model.ErrConsistencyViolation) {
			c.logger.Warn("join rejected, stored game changed",
				slog.String("game_id", string(gameID)),
				slog.String("player", identity),
			)
		} else {
			c.logger.Error("failed to save join",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	c.logger.Info("player joined",
		slog.String("game_id", string(gameID)),
		slog.String("player", identity),
		slog.Int("player_count", len(game.Players)),
	)
	if started {
		c.logger.Info("game started",
			slog.String("game_id", string(gameID)),
			slog.Int("player_count", len(game.Players)),
		)
	}

	return game, nil
}

// QuitGame removes identity from a game. During registration the player is
// deleted, and the game with them if nobody is left; afterwards the player
// is only marked inactive so the ledger keeps its shape.
func (c *Controller) QuitGame(ctx context.Context, gameID model.GameID, identity string) error {
	unlock := c.locks.lock(gameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	index := game.PlayerIndex(identity)
	if index == -1 {
		return model.ErrPlayerNotFound
	}

	if game.State == model.GameStateRegistering {
		return c.leaveRegistration(ctx, game, index)
	}

	if !game.Players[index].Active {
		return nil // Already quit
	}

	game.Players[index].Active = false
	game.UpdatedAt = c.clock.Now()

	err = c.commit(ctx, game, func(tx storage.Tx) error {
		if err := tx.SavePlayerActive(ctx, game, index); err != nil {
			return err
		}
		return tx.SaveMoveAndState(ctx, game)
	})
	if err != nil {
		c.logger.Error("failed to save quit",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.Info("player quit",
		slog.String("game_id", string(gameID)),
		slog.String("player", identity),
		slog.String("state", game.State.String()),
	)
	return nil
}

func (c *Controller) leaveRegistration(ctx context.Context, game *model.Game, index int) error {
	identity := game.Players[index].Identity
	game.Players = slices.Delete(game.Players, index, index+1)
	game.UpdatedAt = c.clock.Now()
	empty := len(game.Players) == 0

	err := c.commit(ctx, game, func(tx storage.Tx) error {
		if err := tx.DeletePlayer(ctx, game, identity); err != nil {
			return err
		}
		if empty {
			return tx.DeleteGame(ctx, game.ID)
		}
		return tx.SaveMoveAndState(ctx, game)
	})
	if err != nil {
		c.logger.Error("failed to save quit",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.Info("player quit",
		slog.String("game_id", string(game.ID)),
		slog.String("player", identity),
		slog.String("state", game.State.String()),
	)
	if empty {
		c.logger.Info("game deleted", slog.String("game_id", string(game.ID)))
	}
	return nil
}

// SubmitMove plays token t for identity. Moves made while the game is not in
// progress, and second moves in the same round, are dropped without error and
// the game is returned unchanged.
func (c *Controller) SubmitMove(ctx context.Context, gameID model.GameID, identity string, t model.Token) (*model.Game, error) {
	unlock := c.locks.lock(gameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	index := game.PlayerIndex(identity)
	if index == -1 {
		return nil, model.ErrPlayerNotFound
	}

	if game.State != model.GameStateInProgress {
		c.logger.Debug("move dropped, game not in progress",
			slog.String("game_id", string(gameID)),
			slog.String("player", identity),
			slog.String("state", game.State.String()),
		)
		return game, nil
	}

	result, err := c.variant.ApplyMove(game, index, t)
	if err != nil {
		return nil, err
	}
	if !result.Step.Applied {
		c.logger.Debug("move dropped, already moved this round",
			slog.String("game_id", string(gameID)),
			slog.String("player", identity),
		)
		return game, nil
	}

	if result.GameOver {
		if err := advance(game, model.GameStateOver); err != nil {
			return nil, err
		}
	}
	game.UpdatedAt = c.clock.Now()

	err = c.commit(ctx, game, func(tx storage.Tx) error {
		if err := tx.SavePlayerPaddles(ctx, game, index); err != nil {
			return err
		}
		for _, w := range result.Step.Outcome.Winners {
			if err := tx.SavePlayerScore(ctx, game, w); err != nil {
				return err
			}
		}
		return tx.SaveMoveAndState(ctx, game)
	})
	if err != nil {
		if errors.Is(err, model.ErrConsistencyViolation) {
			c.logger.Warn("move rejected, stored game changed",
				slog.String("game_id", string(gameID)),
				slog.String("player", identity),
			)
		} else {
			c.logger.Error("failed to save move",
				slog.String("game_id", string(gameID)),
				slog.String("player", identity),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	if result.Step.RoundCompleted {
		c.logger.Info("round completed",
			slog.String("game_id", string(gameID)),
			slog.Int("round", result.Step.RoundIndex+1),
			slog.Any("winners", result.Step.Outcome.Winners),
			slog.Int("points", result.Step.Outcome.Points),
		)
	}
	if result.GameOver {
		c.logger.Info("game over",
			slog.String("game_id", string(gameID)),
			slog.Int("rounds", len(game.Ledger)),
		)
	}

	return game, nil
}

// ForceGameOver ends an in-progress game immediately. Ending a game that is
// already over does nothing.
func (c *Controller) ForceGameOver(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	unlock := c.locks.lock(gameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	switch game.State {
	case model.GameStateOver:
		return game, nil
	case model.GameStateRegistering:
		return nil, model.ErrGameNotInProgress
	}

	if err := advance(game, model.GameStateOver); err != nil {
		return nil, err
	}
	game.UpdatedAt = c.clock.Now()

	err = c.commit(ctx, game, func(tx storage.Tx) error {
		return tx.SaveMoveAndState(ctx, game)
	})
	if err != nil {
		c.logger.Error("failed to save game over",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game over",
		slog.String("game_id", string(gameID)),
		slog.Int("rounds", len(game.Ledger)),
		slog.Bool("forced", true),
	)
	return game, nil
}

// ActiveGames is a player's game listing
type ActiveGames struct {
	Games          []model.GameSummary
	LatestActivity time.Time // zero when there are no games
}

// ListActiveGames returns the games identity has not quit, oldest first,
// and the most recent update across them so clients can poll for changes.
func (c *Controller) ListActiveGames(ctx context.Context, identity string) (*ActiveGames, error) {
	games, err := c.storage.GetActiveGamesForPlayer(ctx, identity)
	if err != nil {
		return nil, err
	}

	result := &ActiveGames{Games: games}
	for _, g := range games {
		if g.UpdatedAt.After(result.LatestActivity) {
			result.LatestActivity = g.UpdatedAt
		}
	}
	return result, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, creator string, maxPlayers, goal int) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	JoinGame(ctx context.Context, gameID model.GameID, identity string) (*model.Game, error)
	QuitGame(ctx context.Context, gameID model.GameID, identity string) error
	SubmitMove(ctx context.Context, gameID model.GameID, identity string, t model.Token) (*model.Game, error)
	ForceGameOver(ctx context.Context, gameID model.GameID) (*model.Game, error)
	ListActiveGames(ctx context.Context, identity string) (*ActiveGames, error)
	ValidMoves(ctx context.Context, gameID model.GameID, identity string) ([]model.Token, error)
	IsPlayersTurn(ctx context.Context, gameID model.GameID, identity string) (bool, error)
	AnnotatedHistory(ctx context.Context, gameID model.GameID, identity string) ([]history.Round, error)
	View(game *model.Game, identity string) *Projection
}

var _ ControllerInterface = (*Controller)(nil)

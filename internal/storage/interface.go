package storage

import (
	"context"

	"github.com/mcoot/paddlegame/internal/model"
)

// Storage defines the interface for data persistence.
// Games are returned as independent copies; changes only become visible
// through a successful Atomic.
type Storage interface {
	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GameExists(ctx context.Context, id model.GameID) (bool, error)

	// GetActiveGamesForPlayer lists games the identity is in and has not
	// quit, oldest first.
	GetActiveGamesForPlayer(ctx context.Context, identity string) ([]model.GameSummary, error)

	// Atomic runs fn against the stored game and commits every write it
	// makes together, bumping the stored version by one. version is the
	// Version of the copy the caller read; if the stored game has moved on
	// since, Atomic fails with model.ErrConsistencyViolation without calling
	// fn. If fn or the commit fails, nothing is written.
	Atomic(ctx context.Context, id model.GameID, version int64, fn func(tx Tx) error) error

	Close() error
}

// Tx is the set of writes available inside Atomic. Each write takes the
// caller's updated copy of the game and persists the named part of it.
type Tx interface {
	// SaveMoveAndState persists the ledger, lifecycle state and timestamp
	SaveMoveAndState(ctx context.Context, game *model.Game) error
	SavePlayerScore(ctx context.Context, game *model.Game, index int) error
	SavePlayerPaddles(ctx context.Context, game *model.Game, index int) error
	SavePlayerActive(ctx context.Context, game *model.Game, index int) error

	// AddPlayer persists game.Players[index] as a new member. It fails with
	// model.ErrConsistencyViolation unless the stored player count, including
	// members added earlier in the same Atomic, equals index and a seat is
	// still free.
	AddPlayer(ctx context.Context, game *model.Game, index int) error

	DeletePlayer(ctx context.Context, game *model.Game, identity string) error
	DeleteGame(ctx context.Context, id model.GameID) error
}

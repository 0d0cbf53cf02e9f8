package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu    sync.RWMutex
	games map[model.GameID]*model.Game
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games: make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Close() error {
	return nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return storage.ErrGameExists
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[id]
	return ok, nil
}

func (s *Storage) GetActiveGamesForPlayer(ctx context.Context, identity string) ([]model.GameSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.GameSummary
	for _, game := range s.games {
		i := game.PlayerIndex(identity)
		if i >= 0 && game.Players[i].Active {
			result = append(result, game.Summary())
		}
	}
	storage.SortSummaries(result)
	return result, nil
}

// Atomic stages writes against a private copy of the game and swaps it in
// only if fn succeeds. The write lock is held throughout, so fn must not
// call back into the Storage.
func (s *Storage) Atomic(ctx context.Context, id model.GameID, version int64, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	if current.Version != version {
		return storage.ErrStale(id, version, current.Version)
	}

	tx := &memoryTx{staged: current.Clone()}
	tx.staged.Version++
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if tx.deleted {
		delete(s.games, id)
	} else {
		s.games[id] = tx.staged
	}
	return nil
}

type memoryTx struct {
	staged  *model.Game
	deleted bool
}

func (t *memoryTx) SaveMoveAndState(ctx context.Context, game *model.Game) error {
	t.staged.Ledger = game.Ledger.Clone()
	t.staged.State = game.State
	t.staged.UpdatedAt = game.UpdatedAt
	return nil
}

func (t *memoryTx) stagedPlayer(game *model.Game, index int) (*model.Player, *model.Player, error) {
	src, err := storage.PlayerAt(game, index)
	if err != nil {
		return nil, nil, err
	}
	i := t.staged.PlayerIndex(src.Identity)
	if i < 0 {
		return nil, nil, model.ErrPlayerNotFound
	}
	return src, &t.staged.Players[i], nil
}

func (t *memoryTx) SavePlayerScore(ctx context.Context, game *model.Game, index int) error {
	src, dst, err := t.stagedPlayer(game, index)
	if err != nil {
		return err
	}
	dst.Score = src.Score
	return nil
}

func (t *memoryTx) SavePlayerPaddles(ctx context.Context, game *model.Game, index int) error {
	src, dst, err := t.stagedPlayer(game, index)
	if err != nil {
		return err
	}
	dst.Paddles = slices.Clone(src.Paddles)
	return nil
}

func (t *memoryTx) SavePlayerActive(ctx context.Context, game *model.Game, index int) error {
	src, dst, err := t.stagedPlayer(game, index)
	if err != nil {
		return err
	}
	dst.Active = src.Active
	return nil
}

func (t *memoryTx) AddPlayer(ctx context.Context, game *model.Game, index int) error {
	src, err := storage.PlayerAt(game, index)
	if err != nil {
		return err
	}
	if t.staged.PlayerIndex(src.Identity) >= 0 {
		return model.ErrAlreadyInGame
	}
	if err := storage.CheckSeat(len(t.staged.Players), t.staged.MaxPlayers, index); err != nil {
		return err
	}
	t.staged.Players = append(t.staged.Players, src.Clone())
	return nil
}

func (t *memoryTx) DeletePlayer(ctx context.Context, game *model.Game, identity string) error {
	t.staged.Players = slices.DeleteFunc(t.staged.Players, func(p model.Player) bool {
		return p.Identity == identity
	})
	return nil
}

func (t *memoryTx) DeleteGame(ctx context.Context, id model.GameID) error {
	t.deleted = true
	return nil
}

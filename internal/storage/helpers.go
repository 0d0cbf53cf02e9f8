package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mcoot/paddlegame/internal/model"
)

// ErrGameExists is returned by CreateGame when the id is already taken
var ErrGameExists = errors.New("game already exists")

// PlayerAt returns the player at index, or an error naming the bad index
func PlayerAt(game *model.Game, index int) (*model.Player, error) {
	if index < 0 || index >= len(game.Players) {
		return nil, fmt.Errorf("player index %d of %d: %w", index, len(game.Players), model.ErrPlayerNotFound)
	}
	return &game.Players[index], nil
}

// SortSummaries orders game listings oldest first, then by id
func SortSummaries(games []model.GameSummary) {
	sort.Slice(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.Before(games[j].CreatedAt)
		}
		return games[i].ID < games[j].ID
	})
}

// ErrStale reports that game id is no longer at the version the caller read
func ErrStale(id model.GameID, want, got int64) error {
	return fmt.Errorf("game %s at version %d, expected %d: %w", id, got, want, model.ErrConsistencyViolation)
}

// CheckSeat fails unless a player added at index would take the next free
// seat of a game with count members
func CheckSeat(count, maxPlayers, index int) error {
	if count != index || index >= maxPlayers {
		return fmt.Errorf("seat %d with %d of %d players: %w", index, count, maxPlayers, model.ErrConsistencyViolation)
	}
	return nil
}

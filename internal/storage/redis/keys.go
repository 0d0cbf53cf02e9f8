package redis

import (
	"fmt"

	"github.com/mcoot/paddlegame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "paddle"

// gameKey returns the Redis key for a Game's HASH of scalar fields and ledger
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// playersKey returns the Redis key for the ZSET of a game's players, scored by join order
func playersKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s:players", keyPrefix, id)
}

// playerKey returns the Redis key for one player's HASH within a game
func playerKey(id model.GameID, identity string) string {
	return fmt.Sprintf("%s:game:%s:player:%s", keyPrefix, id, identity)
}

// gamesForPlayerIndexKey returns the Redis key for the SET of game ids an identity has joined
func gamesForPlayerIndexKey(identity string) string {
	return fmt.Sprintf("%s:idx:games_for_player:%s", keyPrefix, identity)
}

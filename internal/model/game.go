package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameState represents the lifecycle phase of a game.
// States only ever move forward.
type GameState int

const (
	GameStateRegistering GameState = iota // Waiting for players to join
	GameStateInProgress                   // All seats taken, moves accepted
	GameStateOver                         // Goal reached or ended by an administrator
)

// String returns the wire name of the state
func (s GameState) String() string {
	switch s {
	case GameStateRegistering:
		return "registering"
	case GameStateInProgress:
		return "in_progress"
	case GameStateOver:
		return "over"
	default:
		return "unknown"
	}
}

// Game is a single paddle game. It exclusively owns its players and ledger.
type Game struct {
	ID         GameID
	MaxPlayers int
	Goal       int // number of rounds, and paddles dealt to each player
	State      GameState
	Players    []Player // join order; index is the player's slot in every round
	Ledger     Ledger
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64 // bumped by every committed Atomic
}

// PlayerIndex returns the slot of the player with the given identity, or -1
func (g *Game) PlayerIndex(identity string) int {
	for i := range g.Players {
		if g.Players[i].Identity == identity {
			return i
		}
	}
	return -1
}

// IsFull returns true once every seat is taken
func (g *Game) IsFull() bool {
	return len(g.Players) >= g.MaxPlayers
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	out := *g
	out.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		out.Players[i] = p.Clone()
	}
	out.Ledger = g.Ledger.Clone()
	return &out
}

// Summary returns the lightweight listing record for the game
func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:          g.ID,
		MaxPlayers:  g.MaxPlayers,
		Goal:        g.Goal,
		State:       g.State,
		PlayerCount: len(g.Players),
		Rounds:      len(g.Ledger),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// GameSummary is a lightweight record of a game used for listings
type GameSummary struct {
	ID          GameID
	MaxPlayers  int
	Goal        int
	State       GameState
	PlayerCount int
	Rounds      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package response

import (
	"time"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/game"
	"github.com/mcoot/paddlegame/internal/services/history"
)

// Player represents a player in API responses
type Player struct {
	Identity    string `json:"identity"`
	Score       int    `json:"score"`
	Active      bool   `json:"active"`
	PaddlesLeft int    `json:"paddles_left"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		Identity:    p.Identity,
		Score:       p.Score,
		Active:      p.Active,
		PaddlesLeft: len(p.Paddles),
	}
}

// Cell is one slot of a round as the caller may see it:
// "" when unplayed, "?" when hidden, otherwise the paddle
type Cell struct {
	Value   string `json:"value"`
	Winning bool   `json:"winning,omitempty"`
}

// Round represents an annotated round
type Round struct {
	Cells    []Cell `json:"cells"`
	Complete bool   `json:"complete"`
}

// RoundFromHistory converts an annotated history round
func RoundFromHistory(r history.Round) Round {
	cells := make([]Cell, len(r.Cells))
	for i, c := range r.Cells {
		cells[i] = Cell{Value: c.Display(), Winning: c.Winning}
	}
	return Round{Cells: cells, Complete: r.Complete}
}

// Game is the full game view for one caller
type Game struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	MaxPlayers int       `json:"max_players"`
	Goal       int       `json:"goal"`
	Players    []Player  `json:"players"`
	Rounds     []Round   `json:"rounds"`
	ValidMoves []int     `json:"valid_moves"`
	YourTurn   bool      `json:"your_turn"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GameFromProjection converts a per-viewer projection to a response Game
func GameFromProjection(p *game.Projection) Game {
	g := p.Game

	players := make([]Player, len(g.Players))
	for i, pl := range g.Players {
		players[i] = PlayerFromModel(pl)
	}

	rounds := make([]Round, len(p.History))
	for i, r := range p.History {
		rounds[i] = RoundFromHistory(r)
	}

	moves := make([]int, len(p.ValidMoves))
	for i, t := range p.ValidMoves {
		moves[i] = int(t)
	}

	return Game{
		ID:         string(g.ID),
		State:      g.State.String(),
		MaxPlayers: g.MaxPlayers,
		Goal:       g.Goal,
		Players:    players,
		Rounds:     rounds,
		ValidMoves: moves,
		YourTurn:   p.YourTurn,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

// GameSummary is a game in a listing
type GameSummary struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	MaxPlayers  int       `json:"max_players"`
	Goal        int       `json:"goal"`
	PlayerCount int       `json:"player_count"`
	Rounds      int       `json:"rounds"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameSummaryFromModel converts a model.GameSummary
func GameSummaryFromModel(s model.GameSummary) GameSummary {
	return GameSummary{
		ID:          string(s.ID),
		State:       s.State.String(),
		MaxPlayers:  s.MaxPlayers,
		Goal:        s.Goal,
		PlayerCount: s.PlayerCount,
		Rounds:      s.Rounds,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// GameList is the caller's active games
type GameList struct {
	Games []GameSummary `json:"games"`
	// LatestActivity is the most recent update across Games, absent when empty
	LatestActivity *time.Time `json:"latest_activity,omitempty"`
}

// GameListFromActive converts the controller's active game listing
func GameListFromActive(a *game.ActiveGames) GameList {
	games := make([]GameSummary, len(a.Games))
	for i, s := range a.Games {
		games[i] = GameSummaryFromModel(s)
	}
	list := GameList{Games: games}
	if !a.LatestActivity.IsZero() {
		t := a.LatestActivity
		list.LatestActivity = &t
	}
	return list
}

// ValidMoves lists the paddles the caller may still play
type ValidMoves struct {
	Paddles  []int `json:"paddles"`
	YourTurn bool  `json:"your_turn"`
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGameStateString(t *testing.T) {
	assert.Equal(t, "registering", GameStateRegistering.String())
	assert.Equal(t, "in_progress", GameStateInProgress.String())
	assert.Equal(t, "over", GameStateOver.String())
	assert.Equal(t, "unknown", GameState(7).String())
}

func TestGamePlayerIndex(t *testing.T) {
	g := &Game{Players: []Player{{Identity: "alice"}, {Identity: "bob"}}}

	assert.Equal(t, 0, g.PlayerIndex("alice"))
	assert.Equal(t, 1, g.PlayerIndex("bob"))
	assert.Equal(t, -1, g.PlayerIndex("carol"))
}

func TestGameIsFull(t *testing.T) {
	g := &Game{MaxPlayers: 2, Players: []Player{{Identity: "alice"}}}
	assert.False(t, g.IsFull())

	g.Players = append(g.Players, Player{Identity: "bob"})
	assert.True(t, g.IsFull())
}

func TestGameCloneIsDeep(t *testing.T) {
	g := &Game{
		ID:      "G1",
		Players: []Player{{Identity: "alice", Paddles: []Token{1, 2}}},
		Ledger:  Ledger{{Played(3), {}}},
	}

	c := g.Clone()
	c.Players[0].Paddles[0] = 9
	c.Players[0].Score = 4
	c.Ledger[0][1] = Played(1)

	assert.Equal(t, Token(1), g.Players[0].Paddles[0])
	assert.Equal(t, 0, g.Players[0].Score)
	assert.False(t, g.Ledger[0][1].Set)
}

func TestGameSummary(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := &Game{
		ID:         "G1",
		MaxPlayers: 3,
		Goal:       5,
		State:      GameStateInProgress,
		Players:    []Player{{Identity: "a"}, {Identity: "b"}, {Identity: "c"}},
		Ledger:     Ledger{{Played(1), {}, {}}},
		CreatedAt:  now,
		UpdatedAt:  now.Add(time.Minute),
	}

	sum := g.Summary()

	assert.Equal(t, GameID("G1"), sum.ID)
	assert.Equal(t, 3, sum.PlayerCount)
	assert.Equal(t, 1, sum.Rounds)
	assert.Equal(t, GameStateInProgress, sum.State)
	assert.Equal(t, now.Add(time.Minute), sum.UpdatedAt)
}

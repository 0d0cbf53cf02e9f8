package game

import (
	"context"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/history"
	"github.com/mcoot/paddlegame/internal/services/turn"
)

// Projection is a game as seen by one viewer
type Projection struct {
	Game       *model.Game
	Viewer     int // player index, or history.Spectator
	History    []history.Round
	ValidMoves []model.Token
	YourTurn   bool
}

// View builds the projection of game for identity. Non-members see the game
// as a spectator, with every played slot of the open round masked.
func (c *Controller) View(game *model.Game, identity string) *Projection {
	viewer := game.PlayerIndex(identity)
	if viewer == -1 {
		viewer = history.Spectator
	}

	p := &Projection{
		Game:    game,
		Viewer:  viewer,
		History: history.Build(game.Ledger, viewer, c.variant.Rule()),
	}
	if viewer != history.Spectator {
		p.ValidMoves = c.variant.ValidMoves(game, viewer)
		p.YourTurn = turn.IsPlayersTurn(game, viewer)
	}
	return p
}

// member loads a game and the index of identity within it
func (c *Controller) member(ctx context.Context, gameID model.GameID, identity string) (*model.Game, int, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, -1, err
	}
	index := game.PlayerIndex(identity)
	if index == -1 {
		return nil, -1, model.ErrPlayerNotFound
	}
	return game, index, nil
}

// ValidMoves returns the paddles identity has not yet played
func (c *Controller) ValidMoves(ctx context.Context, gameID model.GameID, identity string) ([]model.Token, error) {
	game, index, err := c.member(ctx, gameID, identity)
	if err != nil {
		return nil, err
	}
	return c.variant.ValidMoves(game, index), nil
}

// IsPlayersTurn reports whether identity is expected to move now
func (c *Controller) IsPlayersTurn(ctx context.Context, gameID model.GameID, identity string) (bool, error) {
	game, index, err := c.member(ctx, gameID, identity)
	if err != nil {
		return false, err
	}
	return turn.IsPlayersTurn(game, index), nil
}

// AnnotatedHistory returns the rounds of a game as identity may see them
func (c *Controller) AnnotatedHistory(ctx context.Context, gameID model.GameID, identity string) ([]history.Round, error) {
	game, index, err := c.member(ctx, gameID, identity)
	if err != nil {
		return nil, err
	}
	return history.Build(game.Ledger, index, c.variant.Rule()), nil
}

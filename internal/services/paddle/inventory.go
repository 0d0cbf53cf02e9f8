package paddle

import (
	"fmt"
	"slices"

	"github.com/mcoot/paddlegame/internal/model"
)

// Initial returns the paddles dealt to each player in a game of the given goal:
// one token per round, 1 through goal.
func Initial(goal int) []model.Token {
	paddles := make([]model.Token, goal)
	for i := range paddles {
		paddles[i] = model.Token(i + 1)
	}
	return paddles
}

// Remaining returns a copy of the player's unplayed paddles in order
func Remaining(player model.Player) []model.Token {
	out := slices.Clone(player.Paddles)
	slices.Sort(out)
	return out
}

// Has returns true if the token is still available
func Has(paddles []model.Token, t model.Token) bool {
	return slices.Contains(paddles, t)
}

// Consume returns a new inventory with exactly one occurrence of t removed.
// The input slice is not modified.
func Consume(paddles []model.Token, t model.Token) ([]model.Token, error) {
	i := slices.Index(paddles, t)
	if i < 0 {
		return nil, fmt.Errorf("paddle %d: %w", t, model.ErrInvalidMove)
	}
	out := make([]model.Token, 0, len(paddles)-1)
	out = append(out, paddles[:i]...)
	return append(out, paddles[i+1:]...), nil
}

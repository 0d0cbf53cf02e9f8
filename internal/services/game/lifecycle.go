package game

import (
	"fmt"

	"github.com/mcoot/paddlegame/internal/model"
)

// advance moves g to the next lifecycle state. Only
// Registering -> InProgress and InProgress -> Over are allowed.
func advance(g *model.Game, to model.GameState) error {
	switch {
	case g.State == model.GameStateRegistering && to == model.GameStateInProgress:
	case g.State == model.GameStateInProgress && to == model.GameStateOver:
	default:
		return fmt.Errorf("game %s cannot move from %s to %s: %w", g.ID, g.State, to, model.ErrConsistencyViolation)
	}
	g.State = to
	return nil
}

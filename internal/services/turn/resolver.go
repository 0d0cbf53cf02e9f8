package turn

import (
	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/scoring"
)

// Step describes what applying a single move did to the ledger
type Step struct {
	Applied        bool // false when the player had already moved this round
	RoundStarted   bool
	RoundCompleted bool
	RoundIndex     int
	Outcome        scoring.Outcome // set only when RoundCompleted
}

// Resolver records moves into a game's ledger and scores rounds as they complete
type Resolver struct {
	rule scoring.Rule
}

// New creates a Resolver that scores completed rounds with rule
func New(rule scoring.Rule) *Resolver {
	return &Resolver{
		rule: rule,
	}
}

// Rule returns the scoring rule used for completed rounds
func (r *Resolver) Rule() scoring.Rule {
	return r.rule
}

// CanFill reports whether the player at index may place a token now:
// either a new round is due or their slot in the open round is unset.
func CanFill(ledger model.Ledger, players, index int) bool {
	if index < 0 || index >= players {
		return false
	}
	last := ledger.Last()
	if last == nil || last.IsComplete() {
		return true
	}
	return index < len(last) && !last[index].Set
}

// Apply places token t in the player's slot, starting a new round if the
// previous one is complete. Scores are added to g.Players when the round
// completes. A player who already moved this round is a no-op.
func (r *Resolver) Apply(g *model.Game, index int, t model.Token) Step {
	if !CanFill(g.Ledger, len(g.Players), index) {
		return Step{}
	}

	step := Step{Applied: true}
	last := g.Ledger.Last()
	if last == nil || last.IsComplete() {
		g.Ledger = append(g.Ledger, model.NewRound(len(g.Players)))
		step.RoundStarted = true
	}

	step.RoundIndex = len(g.Ledger) - 1
	round := g.Ledger[step.RoundIndex]
	round[index] = model.Played(t)

	if round.IsComplete() {
		step.RoundCompleted = true
		step.Outcome = r.rule.Score(round)
		step.Outcome.Apply(g.Players)
	}
	return step
}

// IsPlayersTurn reports whether the player at index is expected to move:
// the game is in progress and the player has no token in the open round.
func IsPlayersTurn(g *model.Game, index int) bool {
	if g.State != model.GameStateInProgress {
		return false
	}
	return CanFill(g.Ledger, len(g.Players), index)
}

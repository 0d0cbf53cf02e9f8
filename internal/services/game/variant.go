package game

import (
	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/paddle"
	"github.com/mcoot/paddlegame/internal/services/scoring"
	"github.com/mcoot/paddlegame/internal/services/turn"
)

// MoveResult describes the effect of one accepted move
type MoveResult struct {
	Step     turn.Step
	GameOver bool // the move completed the final round
}

// Variant supplies the rules of a game in the paddle family. The controller
// owns the lifecycle and persistence; a Variant only decides what a move does.
type Variant interface {
	// InitialPaddles returns the tokens dealt to every player
	InitialPaddles(goal int) []model.Token

	// ValidMoves returns the tokens the player at index may still play
	ValidMoves(g *model.Game, index int) []model.Token

	// ApplyMove records token t for the player at index, mutating g.
	// A player who already moved this round gets a zero MoveResult and no
	// error; an unavailable token fails with model.ErrInvalidMove and leaves
	// g untouched.
	ApplyMove(g *model.Game, index int, t model.Token) (MoveResult, error)

	// IsComplete reports whether every round has been played
	IsComplete(g *model.Game) bool

	Rule() scoring.Rule
}

// PaddleVariant is the standard game: each player holds paddles 1..goal,
// plays one per round, and the highest paddle wins the round.
type PaddleVariant struct {
	resolver *turn.Resolver
}

// NewPaddleVariant creates the standard variant scored by rule
func NewPaddleVariant(rule scoring.Rule) *PaddleVariant {
	return &PaddleVariant{
		resolver: turn.New(rule),
	}
}

// Ensure PaddleVariant implements Variant
var _ Variant = (*PaddleVariant)(nil)

func (v *PaddleVariant) InitialPaddles(goal int) []model.Token {
	return paddle.Initial(goal)
}

func (v *PaddleVariant) ValidMoves(g *model.Game, index int) []model.Token {
	if index < 0 || index >= len(g.Players) {
		return nil
	}
	return paddle.Remaining(g.Players[index])
}

func (v *PaddleVariant) ApplyMove(g *model.Game, index int, t model.Token) (MoveResult, error) {
	if !turn.CanFill(g.Ledger, len(g.Players), index) {
		return MoveResult{}, nil
	}

	remaining, err := paddle.Consume(g.Players[index].Paddles, t)
	if err != nil {
		return MoveResult{}, err
	}
	g.Players[index].Paddles = remaining

	step := v.resolver.Apply(g, index, t)
	return MoveResult{
		Step:     step,
		GameOver: step.RoundCompleted && v.IsComplete(g),
	}, nil
}

func (v *PaddleVariant) IsComplete(g *model.Game) bool {
	return len(g.Ledger) >= g.Goal && g.Ledger.Open() == nil
}

func (v *PaddleVariant) Rule() scoring.Rule {
	return v.resolver.Rule()
}

package scoring

import (
	"github.com/mcoot/paddlegame/internal/model"
)

// Config controls how many points a round is worth
type Config struct {
	SoleWinnerPoints   int // awarded when exactly one player holds the highest paddle
	SharedWinnerPoints int // awarded to each player when the highest paddle is tied
}

// DefaultConfig returns the standard paddle scoring: 2 for a sole winner, 1 each on a tie
func DefaultConfig() Config {
	return Config{
		SoleWinnerPoints:   2,
		SharedWinnerPoints: 1,
	}
}

// Outcome is the result of scoring one completed round
type Outcome struct {
	Winners []int // player indexes holding the round's highest paddle
	Points  int   // awarded to each winner
}

// Service scores completed rounds: the highest paddle wins
type Service struct {
	config Config
}

// New creates a new scoring Service
func New(config Config) *Service {
	return &Service{
		config: config,
	}
}

// Winners returns the indexes of every slot holding the round's maximum token.
// Unset slots never win.
func (s *Service) Winners(round model.Round) []int {
	max, ok := round.Max()
	if !ok {
		return nil
	}
	var winners []int
	for i, slot := range round {
		if slot.Set && slot.Token == max {
			winners = append(winners, i)
		}
	}
	return winners
}

// Score computes the winners and per-winner points of a completed round.
// An incomplete round scores nothing.
func (s *Service) Score(round model.Round) Outcome {
	if !round.IsComplete() {
		return Outcome{}
	}
	winners := s.Winners(round)
	points := s.config.SharedWinnerPoints
	if len(winners) == 1 {
		points = s.config.SoleWinnerPoints
	}
	return Outcome{
		Winners: winners,
		Points:  points,
	}
}

// Apply adds the outcome's points to each winner's score
func (o Outcome) Apply(players []model.Player) {
	for _, i := range o.Winners {
		if i >= 0 && i < len(players) {
			players[i].Score += o.Points
		}
	}
}

// Rule decides who wins a round and what they earn.
// Alternate paddle variants supply their own.
type Rule interface {
	Winners(round model.Round) []int
	Score(round model.Round) Outcome
}

var _ Rule = (*Service)(nil)

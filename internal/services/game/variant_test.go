package game

import (
	"testing"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/scoring"
	"github.com/stretchr/testify/suite"
)

type VariantSuite struct {
	suite.Suite
	variant *PaddleVariant
	game    *model.Game
}

func TestVariantSuite(t *testing.T) {
	suite.Run(t, new(VariantSuite))
}

func (s *VariantSuite) SetupTest() {
	s.variant = NewPaddleVariant(scoring.New(scoring.DefaultConfig()))
	s.game = &model.Game{
		ID:         "G1",
		MaxPlayers: 2,
		Goal:       2,
		State:      model.GameStateInProgress,
		Players: []model.Player{
			{Identity: "alice", Active: true, Paddles: s.variant.InitialPaddles(2)},
			{Identity: "bob", Active: true, Paddles: s.variant.InitialPaddles(2)},
		},
	}
}

func (s *VariantSuite) TestApplyMoveConsumesPaddle() {
	result, err := s.variant.ApplyMove(s.game, 0, 2)

	s.Require().NoError(err)
	s.True(result.Step.Applied)
	s.False(result.GameOver)
	s.Equal([]model.Token{1}, s.game.Players[0].Paddles)
}

func (s *VariantSuite) TestInvalidMoveLeavesGameUntouched() {
	_, err := s.variant.ApplyMove(s.game, 0, 7)

	s.ErrorIs(err, model.ErrInvalidMove)
	s.Empty(s.game.Ledger)
	s.Equal([]model.Token{1, 2}, s.game.Players[0].Paddles)
}

func (s *VariantSuite) TestRepeatMoveConsumesNothing() {
	_, err := s.variant.ApplyMove(s.game, 0, 2)
	s.Require().NoError(err)

	result, err := s.variant.ApplyMove(s.game, 0, 1)

	s.Require().NoError(err)
	s.False(result.Step.Applied)
	s.Equal([]model.Token{1}, s.game.Players[0].Paddles)
}

func (s *VariantSuite) TestGameOverOnFinalRound() {
	moves := []struct {
		index int
		token model.Token
	}{{0, 1}, {1, 2}, {0, 2}, {1, 1}}

	var last MoveResult
	for _, m := range moves {
		var err error
		last, err = s.variant.ApplyMove(s.game, m.index, m.token)
		s.Require().NoError(err)
	}

	s.True(last.GameOver)
	s.True(s.variant.IsComplete(s.game))
	s.Equal(2, s.game.Players[1].Score)
	s.Equal(2, s.game.Players[0].Score)
}

func (s *VariantSuite) TestValidMovesUnknownPlayer() {
	s.Nil(s.variant.ValidMoves(s.game, 5))
}

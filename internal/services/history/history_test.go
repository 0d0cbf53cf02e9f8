package history

import (
	"testing"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/services/scoring"
	"github.com/stretchr/testify/suite"
)

type HistorySuite struct {
	suite.Suite
	rule scoring.Rule
}

func TestHistorySuite(t *testing.T) {
	suite.Run(t, new(HistorySuite))
}

func (s *HistorySuite) SetupTest() {
	s.rule = scoring.New(scoring.DefaultConfig())
}

func displays(r Round) []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Display()
	}
	return out
}

func (s *HistorySuite) TestEmptyLedger() {
	s.Empty(Build(nil, 0, s.rule))
}

func (s *HistorySuite) TestCompletedRoundMarksWinners() {
	ledger := model.Ledger{{model.Played(5), model.Played(5), model.Played(3)}}

	rounds := Build(ledger, 2, s.rule)

	s.Require().Len(rounds, 1)
	s.True(rounds[0].Complete)
	s.Equal([]string{"5", "5", "3"}, displays(rounds[0]))
	s.True(rounds[0].Cells[0].Winning)
	s.True(rounds[0].Cells[1].Winning)
	s.False(rounds[0].Cells[2].Winning)
}

func (s *HistorySuite) TestOpenRoundHidesOthersUntilViewerMoves() {
	ledger := model.Ledger{{{}, model.Played(4), {}}}

	rounds := Build(ledger, 0, s.rule)

	s.Require().Len(rounds, 1)
	s.False(rounds[0].Complete)
	s.Equal([]string{"", "?", ""}, displays(rounds[0]))
}

func (s *HistorySuite) TestOpenRoundShowsOwnMove() {
	ledger := model.Ledger{{{}, model.Played(4), {}}}

	rounds := Build(ledger, 1, s.rule)

	s.Equal([]string{"", "4", ""}, displays(rounds[0]))
}

func (s *HistorySuite) TestOpenRoundRevealsAfterViewerMoves() {
	ledger := model.Ledger{{model.Played(2), model.Played(4), {}}}

	rounds := Build(ledger, 0, s.rule)

	s.Equal([]string{"2", "4", ""}, displays(rounds[0]))
	for _, c := range rounds[0].Cells {
		s.False(c.Winning)
	}
}

func (s *HistorySuite) TestSpectatorSeesOpenRoundMasked() {
	ledger := model.Ledger{
		{model.Played(1), model.Played(2)},
		{model.Played(3), {}},
	}

	rounds := Build(ledger, Spectator, s.rule)

	s.Require().Len(rounds, 2)
	s.Equal([]string{"1", "2"}, displays(rounds[0]))
	s.True(rounds[0].Cells[1].Winning)
	s.Equal([]string{"?", ""}, displays(rounds[1]))
}

func (s *HistorySuite) TestBuildDoesNotMutateLedger() {
	ledger := model.Ledger{{model.Played(2), {}}}
	before := ledger.Clone()

	Build(ledger, 1, s.rule)

	s.Equal(before, ledger)
}

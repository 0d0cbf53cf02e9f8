package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type RoundSuite struct {
	suite.Suite
}

func TestRoundSuite(t *testing.T) {
	suite.Run(t, new(RoundSuite))
}

func (s *RoundSuite) TestNewRoundIsOpen() {
	r := NewRound(3)

	s.Len(r, 3)
	s.False(r.IsComplete())
	_, ok := r.Max()
	s.False(ok)
}

func (s *RoundSuite) TestEmptyRoundIsNotComplete() {
	s.False(Round{}.IsComplete())
}

func (s *RoundSuite) TestRoundCompleteWhenAllSlotsSet() {
	r := Round{Played(5), Played(3), {}}
	s.False(r.IsComplete())

	r[2] = Played(1)
	s.True(r.IsComplete())
}

func (s *RoundSuite) TestMaxIgnoresUnsetSlots() {
	r := Round{Played(2), {}, Played(4)}

	max, ok := r.Max()

	s.True(ok)
	s.Equal(Token(4), max)
}

func (s *RoundSuite) TestLedgerOpenRound() {
	s.Nil(Ledger{}.Open())

	l := Ledger{{Played(1), Played(2)}}
	s.Nil(l.Open())
	s.Equal(1, l.CompletedRounds())

	l = append(l, Round{Played(3), {}})
	s.Equal(Round{Played(3), {}}, l.Open())
	s.Equal(1, l.CompletedRounds())
}

func (s *RoundSuite) TestLedgerCloneIsIndependent() {
	l := Ledger{{Played(1), {}}}

	c := l.Clone()
	c[0][1] = Played(2)

	s.False(l[0][1].Set)
}

func (s *RoundSuite) TestLedgerJSONEncoding() {
	l := Ledger{{Played(5), {}, Played(3)}, {Played(1), Played(2), Played(4)}}

	data, err := json.Marshal(l)
	s.Require().NoError(err)
	s.JSONEq(`[[5,null,3],[1,2,4]]`, string(data))
}

func (s *RoundSuite) TestEmptyLedgerEncodesAsArray() {
	var l Ledger

	encoded, err := EncodeLedger(l)
	s.Require().NoError(err)
	s.Equal("[]", encoded)
}

func (s *RoundSuite) TestLedgerRoundTrip() {
	l := Ledger{{Played(5), {}, Played(3)}, {Played(1), Played(2), Played(4)}}

	encoded, err := EncodeLedger(l)
	s.Require().NoError(err)
	decoded, err := DecodeLedger(encoded)
	s.Require().NoError(err)

	s.Equal(l, decoded)
}

func (s *RoundSuite) TestDecodeEmpty() {
	decoded, err := DecodeLedger("")
	s.Require().NoError(err)
	s.Empty(decoded)

	decoded, err = DecodeLedger("[]")
	s.Require().NoError(err)
	s.NotNil(decoded)
	s.Empty(decoded)
}

func (s *RoundSuite) TestDecodeRejectsGarbage() {
	_, err := DecodeLedger(`[["x"]]`)
	s.Error(err)
}

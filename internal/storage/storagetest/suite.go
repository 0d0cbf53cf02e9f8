// Package storagetest holds a contract test suite every storage backend runs.
package storagetest

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/storage"
)

var errAbort = errors.New("abort")

// Suite exercises a storage.Storage implementation. Embed it and call
// Init from SetupTest with a fresh, empty store.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	ctx     context.Context
	now     time.Time
}

func (s *Suite) Init(st storage.Storage) {
	s.Storage = st
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) newGame(id model.GameID, maxPlayers, goal int, identities ...string) *model.Game {
	game := &model.Game{
		ID:         id,
		MaxPlayers: maxPlayers,
		Goal:       goal,
		State:      model.GameStateRegistering,
		Ledger:     model.Ledger{},
		CreatedAt:  s.now,
		UpdatedAt:  s.now,
	}
	for _, identity := range identities {
		paddles := make([]model.Token, goal)
		for i := range paddles {
			paddles[i] = model.Token(i + 1)
		}
		game.Players = append(game.Players, model.Player{Identity: identity, Active: true, Paddles: paddles})
	}
	return game
}

func (s *Suite) create(game *model.Game) {
	s.Require().NoError(s.Storage.CreateGame(s.ctx, game))
}

func (s *Suite) get(id model.GameID) *model.Game {
	game, err := s.Storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	return game
}

func identities(game *model.Game) []string {
	out := make([]string, len(game.Players))
	for i, p := range game.Players {
		out[i] = p.Identity
	}
	return out
}

func (s *Suite) TestCreateAndGetGame() {
	s.create(s.newGame("G1", 3, 5, "alice"))

	game := s.get("G1")

	s.Equal(model.GameID("G1"), game.ID)
	s.Equal(3, game.MaxPlayers)
	s.Equal(5, game.Goal)
	s.Equal(model.GameStateRegistering, game.State)
	s.Empty(game.Ledger)
	s.True(s.now.Equal(game.CreatedAt))
	s.True(s.now.Equal(game.UpdatedAt))
	s.Require().Len(game.Players, 1)
	s.Equal("alice", game.Players[0].Identity)
	s.True(game.Players[0].Active)
	s.Equal([]model.Token{1, 2, 3, 4, 5}, game.Players[0].Paddles)
}

func (s *Suite) TestGetUnknownGame() {
	_, err := s.Storage.GetGame(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestCreateDuplicateGame() {
	s.create(s.newGame("G1", 2, 3, "alice"))

	err := s.Storage.CreateGame(s.ctx, s.newGame("G1", 2, 3, "bob"))

	s.ErrorIs(err, storage.ErrGameExists)
	s.Equal([]string{"alice"}, identities(s.get("G1")))
}

func (s *Suite) TestGameExists() {
	exists, err := s.Storage.GameExists(s.ctx, "G1")
	s.Require().NoError(err)
	s.False(exists)

	s.create(s.newGame("G1", 2, 3, "alice"))

	exists, err = s.Storage.GameExists(s.ctx, "G1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *Suite) TestGetGameReturnsCopy() {
	s.create(s.newGame("G1", 2, 3, "alice"))

	game := s.get("G1")
	game.State = model.GameStateOver
	game.Players[0].Score = 10
	game.Ledger = append(game.Ledger, model.Round{model.Played(1), {}})

	again := s.get("G1")
	s.Equal(model.GameStateRegistering, again.State)
	s.Equal(0, again.Players[0].Score)
	s.Empty(again.Ledger)
}

func (s *Suite) TestAtomicCommitsAllWrites() {
	game := s.newGame("G1", 2, 3, "alice", "bob")
	game.State = model.GameStateInProgress
	s.create(game)

	later := s.now.Add(time.Minute)
	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		game.Ledger = model.Ledger{{model.Played(3), model.Played(1)}, {{}, model.Played(2)}}
		game.UpdatedAt = later
		game.Players[0].Score = 2
		game.Players[1].Paddles = []model.Token{3}
		if err := tx.SavePlayerPaddles(s.ctx, game, 1); err != nil {
			return err
		}
		if err := tx.SavePlayerScore(s.ctx, game, 0); err != nil {
			return err
		}
		return tx.SaveMoveAndState(s.ctx, game)
	})
	s.Require().NoError(err)

	stored := s.get("G1")
	s.Equal(game.Ledger, stored.Ledger)
	s.True(later.Equal(stored.UpdatedAt))
	s.Equal(model.GameStateInProgress, stored.State)
	s.Equal(2, stored.Players[0].Score)
	s.Equal([]model.Token{3}, stored.Players[1].Paddles)
	s.Equal([]model.Token{1, 2, 3}, stored.Players[0].Paddles)
}

func (s *Suite) TestAtomicRollsBackOnError() {
	game := s.newGame("G1", 2, 3, "alice", "bob")
	game.State = model.GameStateInProgress
	s.create(game)

	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		game.Ledger = model.Ledger{{model.Played(3), {}}}
		game.Players[0].Paddles = []model.Token{1, 2}
		game.Players[0].Score = 5
		if err := tx.SaveMoveAndState(s.ctx, game); err != nil {
			return err
		}
		if err := tx.SavePlayerPaddles(s.ctx, game, 0); err != nil {
			return err
		}
		if err := tx.SavePlayerScore(s.ctx, game, 0); err != nil {
			return err
		}
		return errAbort
	})
	s.ErrorIs(err, errAbort)

	stored := s.get("G1")
	s.Empty(stored.Ledger)
	s.Equal(0, stored.Players[0].Score)
	s.Equal([]model.Token{1, 2, 3}, stored.Players[0].Paddles)
}

func (s *Suite) TestAtomicUnknownGame() {
	called := false
	err := s.Storage.Atomic(s.ctx, "NOPE", 0, func(tx storage.Tx) error {
		called = true
		return nil
	})

	s.ErrorIs(err, model.ErrGameNotFound)
	s.False(called)
}

func (s *Suite) TestAtomicBumpsVersion() {
	game := s.newGame("G1", 2, 3, "alice", "bob")
	s.create(game)
	s.Equal(int64(0), s.get("G1").Version)

	for want := int64(1); want <= 2; want++ {
		game = s.get("G1")
		err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
			return tx.SaveMoveAndState(s.ctx, game)
		})
		s.Require().NoError(err)
		s.Equal(want, s.get("G1").Version)
	}
}

func (s *Suite) TestAtomicRejectsStaleVersion() {
	game := s.newGame("G1", 2, 3, "alice", "bob")
	game.State = model.GameStateInProgress
	s.create(game)

	// Another writer commits between our read and our Atomic
	mine := s.get("G1")
	theirs := s.get("G1")
	theirs.Players[1].Paddles = []model.Token{1, 3}
	theirs.Ledger = model.Ledger{{{}, model.Played(2)}}
	err := s.Storage.Atomic(s.ctx, "G1", theirs.Version, func(tx storage.Tx) error {
		if err := tx.SavePlayerPaddles(s.ctx, theirs, 1); err != nil {
			return err
		}
		return tx.SaveMoveAndState(s.ctx, theirs)
	})
	s.Require().NoError(err)

	called := false
	mine.Players[0].Paddles = []model.Token{1, 2}
	mine.Ledger = model.Ledger{{model.Played(3), {}}}
	err = s.Storage.Atomic(s.ctx, "G1", mine.Version, func(tx storage.Tx) error {
		called = true
		if err := tx.SavePlayerPaddles(s.ctx, mine, 0); err != nil {
			return err
		}
		return tx.SaveMoveAndState(s.ctx, mine)
	})

	s.ErrorIs(err, model.ErrConsistencyViolation)
	s.False(called)
	stored := s.get("G1")
	s.Equal(theirs.Ledger, stored.Ledger)
	s.Equal([]model.Token{1, 2, 3}, stored.Players[0].Paddles)
	s.Equal([]model.Token{1, 3}, stored.Players[1].Paddles)
	s.Equal(int64(1), stored.Version)
}

func (s *Suite) TestAddPlayer() {
	game := s.newGame("G1", 3, 3, "alice")
	s.create(game)

	game.Players = append(game.Players, s.newGame("", 0, 3, "bob").Players[0])
	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		return tx.AddPlayer(s.ctx, game, 1)
	})
	s.Require().NoError(err)

	stored := s.get("G1")
	s.Equal([]string{"alice", "bob"}, identities(stored))
	s.Equal([]model.Token{1, 2, 3}, stored.Players[1].Paddles)
	s.True(stored.Players[1].Active)
}

func (s *Suite) TestAddPlayerToFullGame() {
	s.create(s.newGame("G1", 2, 3, "alice", "bob"))

	stale := s.newGame("G1", 2, 3, "alice", "carol")
	err := s.Storage.Atomic(s.ctx, "G1", stale.Version, func(tx storage.Tx) error {
		return tx.AddPlayer(s.ctx, stale, 1)
	})

	s.ErrorIs(err, model.ErrConsistencyViolation)
	s.Equal([]string{"alice", "bob"}, identities(s.get("G1")))
}

func (s *Suite) TestAddPlayerAtStaleIndex() {
	s.create(s.newGame("G1", 3, 3, "alice", "bob"))

	// Read before bob joined; a seat is still free but not this one
	stale := s.newGame("G1", 3, 3, "alice", "carol")
	err := s.Storage.Atomic(s.ctx, "G1", stale.Version, func(tx storage.Tx) error {
		return tx.AddPlayer(s.ctx, stale, 1)
	})

	s.ErrorIs(err, model.ErrConsistencyViolation)
	s.Equal([]string{"alice", "bob"}, identities(s.get("G1")))
}

func (s *Suite) TestAddPlayerPastNextSeat() {
	game := s.newGame("G1", 4, 3, "alice")
	s.create(game)

	game.Players = append(game.Players, s.newGame("", 0, 3, "bob", "carol").Players...)
	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		return tx.AddPlayer(s.ctx, game, 2)
	})

	s.ErrorIs(err, model.ErrConsistencyViolation)
	s.Equal([]string{"alice"}, identities(s.get("G1")))
}

func (s *Suite) TestAddTwoPlayersInOneAtomic() {
	game := s.newGame("G1", 3, 3, "alice")
	s.create(game)

	game.Players = append(game.Players, s.newGame("", 0, 3, "bob", "carol").Players...)
	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		if err := tx.AddPlayer(s.ctx, game, 1); err != nil {
			return err
		}
		return tx.AddPlayer(s.ctx, game, 2)
	})
	s.Require().NoError(err)

	s.Equal([]string{"alice", "bob", "carol"}, identities(s.get("G1")))
}

func (s *Suite) TestAddPlayerRolledBackWithStateChange() {
	game := s.newGame("G1", 2, 3, "alice")
	s.create(game)

	game.Players = append(game.Players, s.newGame("", 0, 3, "bob").Players[0])
	game.State = model.GameStateInProgress
	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		if err := tx.AddPlayer(s.ctx, game, 1); err != nil {
			return err
		}
		if err := tx.SaveMoveAndState(s.ctx, game); err != nil {
			return err
		}
		return errAbort
	})
	s.ErrorIs(err, errAbort)

	stored := s.get("G1")
	s.Equal([]string{"alice"}, identities(stored))
	s.Equal(model.GameStateRegistering, stored.State)
}

func (s *Suite) TestPlayerOrderIsJoinOrder() {
	game := s.newGame("G1", 4, 3, "alice", "bob", "carol")
	s.create(game)

	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		return tx.DeletePlayer(s.ctx, game, "alice")
	})
	s.Require().NoError(err)

	game = s.get("G1")
	game.Players = append(game.Players, s.newGame("", 0, 3, "alice").Players[0])
	err = s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		return tx.AddPlayer(s.ctx, game, 2)
	})
	s.Require().NoError(err)

	s.Equal([]string{"bob", "carol", "alice"}, identities(s.get("G1")))
}

func (s *Suite) TestDeletePlayerAndGame() {
	game := s.newGame("G1", 3, 3, "alice")
	s.create(game)

	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		if err := tx.DeletePlayer(s.ctx, game, "alice"); err != nil {
			return err
		}
		return tx.DeleteGame(s.ctx, "G1")
	})
	s.Require().NoError(err)

	_, err = s.Storage.GetGame(s.ctx, "G1")
	s.ErrorIs(err, model.ErrGameNotFound)

	games, err := s.Storage.GetActiveGamesForPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *Suite) TestSavePlayerActive() {
	game := s.newGame("G1", 2, 3, "alice", "bob")
	game.State = model.GameStateInProgress
	s.create(game)

	game.Players[1].Active = false
	err := s.Storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		return tx.SavePlayerActive(s.ctx, game, 1)
	})
	s.Require().NoError(err)

	stored := s.get("G1")
	s.True(stored.Players[0].Active)
	s.False(stored.Players[1].Active)
}

func (s *Suite) TestGetActiveGamesForPlayer() {
	first := s.newGame("G1", 2, 3, "alice", "bob")
	first.State = model.GameStateInProgress
	second := s.newGame("G2", 3, 5, "carol", "alice")
	second.CreatedAt = s.now.Add(time.Hour)
	second.UpdatedAt = s.now.Add(2 * time.Hour)
	third := s.newGame("G3", 2, 3, "bob")
	s.create(second)
	s.create(first)
	s.create(third)

	games, err := s.Storage.GetActiveGamesForPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("G1"), games[0].ID)
	s.Equal(model.GameStateInProgress, games[0].State)
	s.Equal(2, games[0].PlayerCount)
	s.Equal(model.GameID("G2"), games[1].ID)
	s.Equal(5, games[1].Goal)
	s.True(s.now.Add(2 * time.Hour).Equal(games[1].UpdatedAt))

	first.Players[0].Active = false
	err = s.Storage.Atomic(s.ctx, "G1", first.Version, func(tx storage.Tx) error {
		return tx.SavePlayerActive(s.ctx, first, 0)
	})
	s.Require().NoError(err)

	games, err = s.Storage.GetActiveGamesForPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal(model.GameID("G2"), games[0].ID)
}

func (s *Suite) TestGetActiveGamesForUnknownPlayer() {
	games, err := s.Storage.GetActiveGamesForPlayer(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(games)
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/storage"
	"github.com/mcoot/paddlegame/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	client  *redis.Client
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GameTTL = time.Hour

	s.storage = NewWithClient(s.client, cfg)
	s.ctx = context.Background()
	s.Init(s.storage)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) game(id model.GameID, identities ...string) *model.Game {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	game := &model.Game{ID: id, MaxPlayers: 3, Goal: 3, CreatedAt: now, UpdatedAt: now}
	for _, identity := range identities {
		game.Players = append(game.Players, model.Player{Identity: identity, Active: true, Paddles: []model.Token{1, 2, 3}})
	}
	return game
}

// Redis specific tests

func (s *StorageSuite) TestKeysCarryTTL() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.game("G1", "alice")))

	s.Equal(time.Hour, s.mini.TTL(gameKey("G1")))
	s.Equal(time.Hour, s.mini.TTL(playersKey("G1")))
	s.Equal(time.Hour, s.mini.TTL(playerKey("G1", "alice")))
}

func (s *StorageSuite) TestAtomicRefreshesTTL() {
	game := s.game("G1", "alice")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))
	s.mini.FastForward(30 * time.Minute)

	err := s.storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		return tx.SaveMoveAndState(s.ctx, game)
	})
	s.Require().NoError(err)

	s.Equal(time.Hour, s.mini.TTL(gameKey("G1")))
}

func (s *StorageSuite) TestExpiredGamesArePrunedFromIndex() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.game("G1", "alice")))
	s.True(s.mini.Exists(gamesForPlayerIndexKey("alice")))

	s.mini.FastForward(2 * time.Hour)

	games, err := s.storage.GetActiveGamesForPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(games)
	s.False(s.mini.Exists(gamesForPlayerIndexKey("alice")))
}

func (s *StorageSuite) TestConcurrentWriteAbortsCommit() {
	game := s.game("G1", "alice")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	other := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	defer other.Close()

	err := s.storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		s.Require().NoError(other.HSet(s.ctx, gameKey("G1"), fieldState, 2).Err())
		game.Players[0].Score = 7
		return tx.SavePlayerScore(s.ctx, game, 0)
	})

	s.ErrorIs(err, model.ErrConsistencyViolation)
	stored, err := s.storage.GetGame(s.ctx, "G1")
	s.Require().NoError(err)
	s.Equal(0, stored.Players[0].Score)
}

func (s *StorageSuite) TestDeleteGameRemovesAllKeys() {
	game := s.game("G1", "alice", "bob")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	err := s.storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		return tx.DeleteGame(s.ctx, "G1")
	})
	s.Require().NoError(err)

	s.Empty(s.mini.Keys())
}

func (s *StorageSuite) TestLedgerStoredAsJSON() {
	game := s.game("G1", "alice", "bob")
	game.Ledger = model.Ledger{{model.Played(3), {}}}
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	s.Equal(`[[3,null]]`, s.mini.HGet(gameKey("G1"), fieldTurns))
}

func (s *StorageSuite) TestGameWithoutVersionFieldLoadsAtZero() {
	game := s.game("G1", "alice")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))
	s.mini.HDel(gameKey("G1"), fieldVersion)

	stored, err := s.storage.GetGame(s.ctx, "G1")
	s.Require().NoError(err)
	s.Equal(int64(0), stored.Version)

	err = s.storage.Atomic(s.ctx, "G1", 0, func(tx storage.Tx) error {
		return tx.SaveMoveAndState(s.ctx, game)
	})
	s.Require().NoError(err)
	s.Equal("1", s.mini.HGet(gameKey("G1"), fieldVersion))
}

func (s *StorageSuite) TestWriteBeforeWatchIsStale() {
	game := s.game("G1", "alice")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))
	s.mini.HSet(gameKey("G1"), fieldVersion, "3")

	err := s.storage.Atomic(s.ctx, "G1", game.Version, func(tx storage.Tx) error {
		return tx.SaveMoveAndState(s.ctx, game)
	})

	s.ErrorIs(err, model.ErrConsistencyViolation)
	s.Equal("3", s.mini.HGet(gameKey("G1"), fieldVersion))
}

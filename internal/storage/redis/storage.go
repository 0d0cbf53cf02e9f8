package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	fields, err := gameFields(game)
	if err != nil {
		return err
	}

	key := gameKey(game.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return storage.ErrGameExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			members := make([]string, 0, len(game.Players))
			for i := range game.Players {
				if err := s.queueAddPlayer(ctx, pipe, game.ID, &game.Players[i], float64(i+1)); err != nil {
					return err
				}
				members = append(members, game.Players[i].Identity)
			}
			s.queueExpire(ctx, pipe, game.ID, members)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return storage.ErrGameExists
	}
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return loadGame(ctx, s.client, id)
}

func (s *Storage) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	n, err := s.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) GetActiveGamesForPlayer(ctx context.Context, identity string) ([]model.GameSummary, error) {
	indexKey := gamesForPlayerIndexKey(identity)
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	var result []model.GameSummary
	for _, id := range ids {
		game, err := loadGame(ctx, s.client, model.GameID(id))
		if errors.Is(err, model.ErrGameNotFound) {
			// Expired games leave their id behind in the index
			if err := s.client.SRem(ctx, indexKey, id).Err(); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		i := game.PlayerIndex(identity)
		if i >= 0 && game.Players[i].Active {
			result = append(result, game.Summary())
		}
	}
	storage.SortSummaries(result)
	return result, nil
}

// Atomic loads the game under WATCH, checks its version against the
// caller's, lets fn queue writes, then commits them in a single MULTI/EXEC.
// Writes that land before the WATCH show up as a version mismatch; writes
// that land after it abort the EXEC.
func (s *Storage) Atomic(ctx context.Context, id model.GameID, version int64, fn func(tx storage.Tx) error) error {
	err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
		game, err := loadGame(ctx, rtx, id)
		if err != nil {
			return err
		}
		if game.Version != version {
			return storage.ErrStale(id, version, game.Version)
		}

		t := &redisTx{
			storage: s,
			rtx:     rtx,
			id:      id,
			loaded:  game,
			members: identities(game),
		}
		if err := fn(t); err != nil {
			return err
		}

		_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, op := range t.ops {
				if err := op(pipe); err != nil {
					return err
				}
			}
			if !t.deleted {
				pipe.HIncrBy(ctx, gameKey(id), fieldVersion, 1)
				s.queueExpire(ctx, pipe, id, t.members)
			}
			return nil
		})
		return err
	}, gameKey(id), playersKey(id))

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("game %s changed during update: %w", id, model.ErrConsistencyViolation)
	}
	return err
}

// loadGame reads a game and its players in join order. c may be a watched
// transaction connection.
func loadGame(ctx context.Context, c redis.Cmdable, id model.GameID) (*model.Game, error) {
	fields, err := c.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrGameNotFound
	}

	game, err := decodeGame(id, fields)
	if err != nil {
		return nil, err
	}

	members, err := c.ZRange(ctx, playersKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return game, nil
	}

	// Fetch all player hashes in one round trip
	pipe := c.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, identity := range members {
		cmds[i] = pipe.HGetAll(ctx, playerKey(id, identity))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	game.Players = make([]model.Player, 0, len(members))
	for i, cmd := range cmds {
		player, err := decodePlayer(cmd.Val())
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", members[i], err)
		}
		game.Players = append(game.Players, player)
	}
	return game, nil
}

func (s *Storage) queueAddPlayer(ctx context.Context, pipe redis.Pipeliner, id model.GameID, player *model.Player, seq float64) error {
	fields, err := playerFields(player)
	if err != nil {
		return err
	}
	pipe.HSet(ctx, playerKey(id, player.Identity), fields)
	pipe.ZAdd(ctx, playersKey(id), redis.Z{Score: seq, Member: player.Identity})
	pipe.SAdd(ctx, gamesForPlayerIndexKey(player.Identity), string(id))
	return nil
}

func (s *Storage) queueExpire(ctx context.Context, pipe redis.Pipeliner, id model.GameID, members []string) {
	if s.cfg.GameTTL <= 0 {
		return
	}
	pipe.Expire(ctx, gameKey(id), s.cfg.GameTTL)
	pipe.Expire(ctx, playersKey(id), s.cfg.GameTTL)
	for _, identity := range members {
		pipe.Expire(ctx, playerKey(id, identity), s.cfg.GameTTL)
	}
}

func identities(game *model.Game) []string {
	out := make([]string, len(game.Players))
	for i, p := range game.Players {
		out[i] = p.Identity
	}
	return out
}

// redisTx queues writes for a single Atomic call
type redisTx struct {
	storage *Storage
	rtx     *redis.Tx
	id      model.GameID
	loaded  *model.Game
	members []string
	ops     []func(pipe redis.Pipeliner) error
	nextSeq float64
	deleted bool
}

func (t *redisTx) queue(op func(pipe redis.Pipeliner) error) {
	t.ops = append(t.ops, op)
}

func (t *redisTx) member(game *model.Game, index int) (*model.Player, error) {
	player, err := storage.PlayerAt(game, index)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(t.members, player.Identity) {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (t *redisTx) SaveMoveAndState(ctx context.Context, game *model.Game) error {
	turns, err := model.EncodeLedger(game.Ledger)
	if err != nil {
		return err
	}
	state := int(game.State)
	updatedAt := encodeTime(game.UpdatedAt)
	t.queue(func(pipe redis.Pipeliner) error {
		return pipe.HSet(ctx, gameKey(t.id),
			fieldTurns, turns,
			fieldState, state,
			fieldUpdatedAt, updatedAt,
		).Err()
	})
	return nil
}

func (t *redisTx) SavePlayerScore(ctx context.Context, game *model.Game, index int) error {
	player, err := t.member(game, index)
	if err != nil {
		return err
	}
	key, score := playerKey(t.id, player.Identity), player.Score
	t.queue(func(pipe redis.Pipeliner) error {
		return pipe.HSet(ctx, key, fieldScore, score).Err()
	})
	return nil
}

func (t *redisTx) SavePlayerPaddles(ctx context.Context, game *model.Game, index int) error {
	player, err := t.member(game, index)
	if err != nil {
		return err
	}
	paddles, err := encodePaddles(player.Paddles)
	if err != nil {
		return err
	}
	key := playerKey(t.id, player.Identity)
	t.queue(func(pipe redis.Pipeliner) error {
		return pipe.HSet(ctx, key, fieldPaddles, paddles).Err()
	})
	return nil
}

func (t *redisTx) SavePlayerActive(ctx context.Context, game *model.Game, index int) error {
	player, err := t.member(game, index)
	if err != nil {
		return err
	}
	key, active := playerKey(t.id, player.Identity), encodeBool(player.Active)
	t.queue(func(pipe redis.Pipeliner) error {
		return pipe.HSet(ctx, key, fieldActive, active).Err()
	})
	return nil
}

// AddPlayer re-reads the member count on the watched connection rather than
// trusting the caller's copy of the game.
func (t *redisTx) AddPlayer(ctx context.Context, game *model.Game, index int) error {
	player, err := storage.PlayerAt(game, index)
	if err != nil {
		return err
	}
	if slices.Contains(t.members, player.Identity) {
		return model.ErrAlreadyInGame
	}

	stored, err := t.rtx.ZCard(ctx, playersKey(t.id)).Result()
	if err != nil {
		return err
	}
	pending := len(t.members) - len(t.loaded.Players)
	if err := storage.CheckSeat(int(stored)+pending, t.loaded.MaxPlayers, index); err != nil {
		return err
	}

	if t.nextSeq == 0 {
		last, err := t.rtx.ZRevRangeWithScores(ctx, playersKey(t.id), 0, 0).Result()
		if err != nil {
			return err
		}
		t.nextSeq = 1
		if len(last) > 0 {
			t.nextSeq = last[0].Score + 1
		}
	}
	seq := t.nextSeq
	t.nextSeq++

	added := player.Clone()
	t.members = append(t.members, added.Identity)
	t.queue(func(pipe redis.Pipeliner) error {
		return t.storage.queueAddPlayer(ctx, pipe, t.id, &added, seq)
	})
	return nil
}

func (t *redisTx) DeletePlayer(ctx context.Context, game *model.Game, identity string) error {
	t.members = slices.DeleteFunc(t.members, func(m string) bool { return m == identity })
	t.queue(func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, playersKey(t.id), identity)
		pipe.Del(ctx, playerKey(t.id, identity))
		pipe.SRem(ctx, gamesForPlayerIndexKey(identity), string(t.id))
		return nil
	})
	return nil
}

func (t *redisTx) DeleteGame(ctx context.Context, id model.GameID) error {
	members := slices.Clone(t.members)
	t.deleted = true
	t.members = nil
	t.queue(func(pipe redis.Pipeliner) error {
		keys := []string{gameKey(id), playersKey(id)}
		for _, identity := range members {
			keys = append(keys, playerKey(id, identity))
			pipe.SRem(ctx, gamesForPlayerIndexKey(identity), string(id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	return nil
}

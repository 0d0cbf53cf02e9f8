package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/paddlegame/internal/model"
	"github.com/mcoot/paddlegame/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens (creating if missing) the database at path and applies the schema
func New(ctx context.Context, path string) (*Storage, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't create tables: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't migrate tables: %w", err)
	}

	return &Storage{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('game') WHERE name = 'version'`).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	_, err = db.ExecContext(ctx, addVersionColumn)
	return err
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		turns, err := model.EncodeLedger(game.Ledger)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO game (id, max_players, goal, state, turns, created_at, updated_at, version)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			string(game.ID), game.MaxPlayers, game.Goal, int(game.State), turns,
			game.CreatedAt.UnixNano(), game.UpdatedAt.UnixNano(), game.Version)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return storage.ErrGameExists
		}

		for i := range game.Players {
			if err := insertPlayer(ctx, tx, game.ID, &game.Players[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return loadGame(ctx, s.db, id)
}

func (s *Storage) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game WHERE id = ?`, string(id)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) GetActiveGamesForPlayer(ctx context.Context, identity string) ([]model.GameSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game.id, game.max_players, game.goal, game.state, game.turns,
		       game.created_at, game.updated_at,
		       (SELECT COUNT(*) FROM player p WHERE p.game_id = game.id)
		FROM game JOIN player ON player.game_id = game.id
		WHERE player.user_name = ? AND player.playing
		ORDER BY game.created_at, game.id`, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.GameSummary
	for rows.Next() {
		var (
			sum                  model.GameSummary
			id, turns            string
			state                int
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&id, &sum.MaxPlayers, &sum.Goal, &state, &turns, &createdAt, &updatedAt, &sum.PlayerCount); err != nil {
			return nil, err
		}
		ledger, err := model.DecodeLedger(turns)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}
		sum.ID = model.GameID(id)
		sum.State = model.GameState(state)
		sum.Rounds = len(ledger)
		sum.CreatedAt = time.Unix(0, createdAt).UTC()
		sum.UpdatedAt = time.Unix(0, updatedAt).UTC()
		result = append(result, sum)
	}
	return result, rows.Err()
}

// Atomic runs fn inside a single database transaction. The version bump is
// conditional on the version the caller read, so a game changed since then
// rolls the whole transaction back.
func (s *Storage) Atomic(ctx context.Context, id model.GameID, version int64, fn func(tx storage.Tx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var stored int64
		err := tx.QueryRowContext(ctx, `SELECT version FROM game WHERE id = ?`, string(id)).Scan(&stored)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrGameNotFound
		}
		if err != nil {
			return err
		}
		if stored != version {
			return storage.ErrStale(id, version, stored)
		}

		t := &sqlTx{tx: tx, id: id}
		if err := fn(t); err != nil {
			return err
		}
		if t.deleted {
			return nil
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE game SET version = version + 1 WHERE id = ? AND version = ?`,
			string(id), version)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("game %s changed during update: %w", id, model.ErrConsistencyViolation)
		}
		return nil
	})
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func loadGame(ctx context.Context, q queryer, id model.GameID) (*model.Game, error) {
	game := &model.Game{ID: id}
	var (
		state                int
		turns                string
		createdAt, updatedAt int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT max_players, goal, state, turns, created_at, updated_at, version FROM game WHERE id = ?`,
		string(id)).Scan(&game.MaxPlayers, &game.Goal, &state, &turns, &createdAt, &updatedAt, &game.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	game.State = model.GameState(state)
	game.CreatedAt = time.Unix(0, createdAt).UTC()
	game.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if game.Ledger, err = model.DecodeLedger(turns); err != nil {
		return nil, fmt.Errorf("game %s turns: %w", id, err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT user_name, score, playing, paddles FROM player WHERE game_id = ? ORDER BY seq`,
		string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p       model.Player
			paddles string
		)
		if err := rows.Scan(&p.Identity, &p.Score, &p.Active, &paddles); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(paddles), &p.Paddles); err != nil {
			return nil, fmt.Errorf("player %s paddles: %w", p.Identity, err)
		}
		game.Players = append(game.Players, p)
	}
	return game, rows.Err()
}

func encodePaddles(paddles []model.Token) (string, error) {
	if paddles == nil {
		paddles = []model.Token{}
	}
	data, err := json.Marshal(paddles)
	return string(data), err
}

func insertPlayer(ctx context.Context, tx *sql.Tx, id model.GameID, p *model.Player) error {
	paddles, err := encodePaddles(p.Paddles)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO player (game_id, user_name, score, playing, paddles) VALUES (?, ?, ?, ?, ?)`,
		string(id), p.Identity, p.Score, p.Active, paddles)
	return err
}

// sqlTx writes through an open database transaction
type sqlTx struct {
	tx      *sql.Tx
	id      model.GameID
	deleted bool
}

func (t *sqlTx) SaveMoveAndState(ctx context.Context, game *model.Game) error {
	turns, err := model.EncodeLedger(game.Ledger)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx,
		`UPDATE game SET turns = ?, state = ?, updated_at = ? WHERE id = ?`,
		turns, int(game.State), game.UpdatedAt.UnixNano(), string(t.id))
	return err
}

// updatePlayer runs an UPDATE against one player row and fails if no row matched
func (t *sqlTx) updatePlayer(ctx context.Context, game *model.Game, index int, column string, value any) error {
	p, err := storage.PlayerAt(game, index)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx,
		`UPDATE player SET `+column+` = ? WHERE game_id = ? AND user_name = ?`,
		value, string(t.id), p.Identity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (t *sqlTx) SavePlayerScore(ctx context.Context, game *model.Game, index int) error {
	p, err := storage.PlayerAt(game, index)
	if err != nil {
		return err
	}
	return t.updatePlayer(ctx, game, index, "score", p.Score)
}

func (t *sqlTx) SavePlayerPaddles(ctx context.Context, game *model.Game, index int) error {
	p, err := storage.PlayerAt(game, index)
	if err != nil {
		return err
	}
	paddles, err := encodePaddles(p.Paddles)
	if err != nil {
		return err
	}
	return t.updatePlayer(ctx, game, index, "paddles", paddles)
}

func (t *sqlTx) SavePlayerActive(ctx context.Context, game *model.Game, index int) error {
	p, err := storage.PlayerAt(game, index)
	if err != nil {
		return err
	}
	return t.updatePlayer(ctx, game, index, "playing", p.Active)
}

// AddPlayer only inserts while the stored player count equals index and is
// below max_players
func (t *sqlTx) AddPlayer(ctx context.Context, game *model.Game, index int) error {
	p, err := storage.PlayerAt(game, index)
	if err != nil {
		return err
	}
	paddles, err := encodePaddles(p.Paddles)
	if err != nil {
		return err
	}

	var existing int
	err = t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM player WHERE game_id = ? AND user_name = ?`,
		string(t.id), p.Identity).Scan(&existing)
	if err != nil {
		return err
	}
	if existing > 0 {
		return model.ErrAlreadyInGame
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO player (game_id, user_name, score, playing, paddles)
		SELECT ?, ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM player WHERE game_id = ?) = ?
		  AND ? < (SELECT max_players FROM game WHERE id = ?)`,
		string(t.id), p.Identity, p.Score, p.Active, paddles,
		string(t.id), index, index, string(t.id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("seat %d: %w", index, model.ErrConsistencyViolation)
	}
	return nil
}

func (t *sqlTx) DeletePlayer(ctx context.Context, game *model.Game, identity string) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM player WHERE game_id = ? AND user_name = ?`,
		string(t.id), identity)
	return err
}

func (t *sqlTx) DeleteGame(ctx context.Context, id model.GameID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM player WHERE game_id = ?`, string(id)); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM game WHERE id = ?`, string(id)); err != nil {
		return err
	}
	t.deleted = true
	return nil
}

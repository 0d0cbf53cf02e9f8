package sqlite

// schema mirrors the classic two-table layout: one row per game with the
// ledger as JSON text, and one row per (game, player) in join order.
const schema = `
CREATE TABLE IF NOT EXISTS game (
	id          TEXT PRIMARY KEY,
	max_players INTEGER NOT NULL,
	goal        INTEGER NOT NULL,
	state       INTEGER NOT NULL DEFAULT 0,
	turns       TEXT NOT NULL DEFAULT '[]',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL,
	version     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS player (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id   TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
	user_name TEXT NOT NULL,
	score     INTEGER NOT NULL DEFAULT 0,
	playing   INTEGER NOT NULL DEFAULT 1,
	paddles   TEXT NOT NULL DEFAULT '[]',
	UNIQUE (game_id, user_name)
);

CREATE INDEX IF NOT EXISTS player_user_name ON player (user_name, playing);
`

// addVersionColumn upgrades databases created before game rows were versioned
const addVersionColumn = `ALTER TABLE game ADD COLUMN version INTEGER NOT NULL DEFAULT 0`

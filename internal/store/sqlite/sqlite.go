// Package sqlite is the only concrete store this module ships: a
// database/sql + mattn/go-sqlite3 implementation of store.Store, grounded
// on the teacher's pkg/server/internal/db package. Connection pooling,
// migrations and query tuning are explicitly out of scope (spec §1) — this
// is a straightforward, transactional repository, not a production data
// layer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/decred/slog"
	"github.com/vctt94/holdem-engine/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	blind_time INTEGER NOT NULL,
	level INTEGER NOT NULL,
	chips INTEGER NOT NULL,
	start_time TIMESTAMP NOT NULL,
	end_time TIMESTAMP
);

CREATE TABLE IF NOT EXISTS game_blinds (
	level INTEGER PRIMARY KEY,
	small_blind_amount INTEGER NOT NULL,
	big_blind_amount INTEGER NOT NULL,
	ante INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL,
	name TEXT NOT NULL,
	amount INTEGER NOT NULL DEFAULT 0,
	is_online BOOLEAN NOT NULL DEFAULT TRUE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	action TEXT NOT NULL DEFAULT '',
	action_amount INTEGER NOT NULL DEFAULT 0,
	all_bet_sum INTEGER NOT NULL DEFAULT 0,
	inactive_time_hand_id TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS hands (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL,
	level INTEGER NOT NULL,
	dealer TEXT NOT NULL,
	small_blind TEXT,
	big_blind TEXT NOT NULL,
	current_player_turn_id TEXT NOT NULL,
	pot_amount INTEGER NOT NULL DEFAULT 0,
	ante INTEGER NOT NULL DEFAULT 0,
	small_blind_amount INTEGER NOT NULL DEFAULT 0,
	big_blind_amount INTEGER NOT NULL DEFAULT 0,
	last_call_amount INTEGER NOT NULL DEFAULT 0,
	current_max_bet INTEGER NOT NULL DEFAULT 0,
	last_raise_amount INTEGER NOT NULL DEFAULT 0,
	current_round TEXT NOT NULL,
	is_changed_current_round BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS actions (
	id TEXT PRIMARY KEY,
	hand_id TEXT NOT NULL,
	player_id TEXT NOT NULL,
	round TEXT NOT NULL,
	betting_round INTEGER NOT NULL,
	action_order INTEGER NOT NULL,
	action_type TEXT NOT NULL,
	bet_amount INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_players_game ON players(game_id);
CREATE INDEX IF NOT EXISTS idx_hands_game ON hands(game_id);
CREATE INDEX IF NOT EXISTS idx_actions_hand ON actions(hand_id);
`

// SQLiteStore is a store.Store backed by a single sqlite database file.
type SQLiteStore struct {
	*queries
	db  *sql.DB
	log slog.Logger
}

// New opens dbPath (creating it if necessary) and ensures the schema exists.
func New(dbPath string, log slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single connection: sqlite serializes writers anyway, and the engine
	// itself serializes commands per game, so pooling would only buy
	// contention on a write lock it can never use concurrently.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{queries: &queries{ex: db}, db: db, log: log}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx opens a transactional boundary; the engine wraps one full command
// dispatch in exactly one of these.
func (s *SQLiteStore) BeginTx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &sqliteTx{queries: &queries{ex: tx}, tx: tx}, nil
}

type sqliteTx struct {
	*queries
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error   { return t.tx.Commit() }
func (t *sqliteTx) Rollback() error { return t.tx.Rollback() }

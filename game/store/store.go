package store

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Sentinel errors mapped to API failure codes by the service layer.
var (
	ErrNotFound       = errors.New("store: room not found")
	ErrRoomFull       = errors.New("store: room is full")
	ErrAlreadyStarted = errors.New("store: room already started")
	ErrAlreadyJoined  = errors.New("store: identity already seated")
	ErrWrongStatus    = errors.New("store: operation not valid in this room status")
	ErrStale          = errors.New("store: turn number changed concurrently")
	ErrNotUndoable    = errors.New("store: nothing undoable by this player")
)

// Store is the SQLite-backed room store.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	code         TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	game_mode    TEXT NOT NULL,
	current_turn INTEGER NOT NULL,
	turn_number  INTEGER NOT NULL DEFAULT 0,
	winner       INTEGER,
	bot_seed     TEXT NOT NULL,
	host_binding TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	room_code       TEXT NOT NULL REFERENCES rooms(code) ON DELETE CASCADE,
	player_id       INTEGER NOT NULL,
	pos_row         INTEGER NOT NULL,
	pos_col         INTEGER NOT NULL,
	goal_side       TEXT NOT NULL,
	walls_left      INTEGER NOT NULL,
	player_type     TEXT NOT NULL,
	session_binding TEXT NOT NULL,
	PRIMARY KEY (room_code, player_id)
);

CREATE TABLE IF NOT EXISTS barriers (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_code   TEXT NOT NULL REFERENCES rooms(code) ON DELETE CASCADE,
	pos_row     INTEGER NOT NULL,
	pos_col     INTEGER NOT NULL,
	orientation TEXT NOT NULL,
	placed_by   INTEGER NOT NULL,
	turn_number INTEGER NOT NULL,
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS moves (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_code   TEXT NOT NULL REFERENCES rooms(code) ON DELETE CASCADE,
	player_id   INTEGER NOT NULL,
	from_row    INTEGER NOT NULL,
	from_col    INTEGER NOT NULL,
	to_row      INTEGER NOT NULL,
	to_col      INTEGER NOT NULL,
	turn_number INTEGER NOT NULL,
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bot_move_jobs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	room_code     TEXT NOT NULL REFERENCES rooms(code) ON DELETE CASCADE,
	player_id     INTEGER NOT NULL,
	expected_turn INTEGER NOT NULL,
	status        TEXT NOT NULL,
	started_at    DATETIME,
	completed_at  DATETIME,
	error         TEXT,
	created_at    DATETIME NOT NULL,
	UNIQUE (room_code, player_id, expected_turn)
);

CREATE TABLE IF NOT EXISTS user_stats (
	binding      TEXT PRIMARY KEY,
	games_played INTEGER NOT NULL DEFAULT 0,
	games_won    INTEGER NOT NULL DEFAULT 0
);
`

// Open opens (creating if necessary) the SQLite database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// The pragmas ride the DSN so every pooled connection gets them:
	// foreign keys drive the room cascade, and the busy timeout papers
	// over writer contention from the worker.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc's driver is safe with one writer; serializing through a
	// single connection avoids SQLITE_BUSY under concurrent commits.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// codeAlphabet is the room-code character set: 6 uppercase alphanumerics.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newRoomCode draws 6 characters from crypto/rand. Uniqueness is still
// enforced by the rooms primary key; CreateRoom retries on collision.
func newRoomCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate room code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

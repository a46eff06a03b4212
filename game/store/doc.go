// Package store persists rooms, players, barriers, move history, bot
// jobs, and user aggregates in SQLite.
//
// A single transaction covers every write of one accepted action, and two
// database constraints carry the whole concurrency story:
//
//   - CommitAction increments rooms.turn_number with a compare-and-swap
//     UPDATE; a mismatch returns ErrStale and nothing is written.
//   - bot_move_jobs has a UNIQUE(room_code, player_id, expected_turn)
//     constraint, making bot scheduling idempotent per turn.
//
// There are no in-process locks around game state: the database's
// transaction boundary is the locking discipline, so any number of API
// handlers and worker goroutines can race safely.
package store

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gbr5/bloqueio-server/game/engine"
)

// RoomState is a room snapshot plus the metadata the service layer needs
// for authorization decisions.
type RoomState struct {
	engine.GameState
	HostBinding string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Action is the write batch of one accepted game action. Exactly one of
// Move or Barrier is set. CommitAction applies the whole batch, advances
// turn_number by one, and rotates current_turn to NextTurn — atomically,
// guarded by the expected turn number.
type Action struct {
	PlayerID int
	Move     *engine.Move
	Barrier  *engine.Barrier
	NextTurn int
	Winner   *int
	Status   engine.RoomStatus

	// Stats, set only on winning commits, updates aggregate counters for
	// identified (human) users in the same transaction.
	Stats *WinStats
}

// WinStats names the user bindings whose aggregates a winning commit
// must bump.
type WinStats struct {
	PlayedBindings []string
	WinnerBinding  string
}

// CreateRoom creates a WAITING room with the host seated at slot 0 and
// returns the fresh snapshot. The room's bot seed is fixed at creation so
// every bot decision in its lifetime is replayable.
func (s *Store) CreateRoom(ctx context.Context, mode engine.GameMode, hostBinding string) (*RoomState, error) {
	now := time.Now().UTC()
	pos, goal := engine.StartingPosition(0)

	for attempt := 0; attempt < 5; attempt++ {
		code, err := newRoomCode()
		if err != nil {
			return nil, err
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin create room: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO rooms (code, status, game_mode, current_turn, turn_number, winner, bot_seed, host_binding, created_at, updated_at)
			 VALUES (?, ?, ?, 0, 0, NULL, ?, ?, ?, ?)`,
			code, engine.StatusWaiting, mode, uuid.NewString(), hostBinding, now, now)
		if err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("insert room: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO players (room_code, player_id, pos_row, pos_col, goal_side, walls_left, player_type, session_binding)
			 VALUES (?, 0, ?, ?, ?, ?, ?, ?)`,
			code, pos.Row, pos.Col, goal, mode.WallsPerPlayer(), engine.Human, hostBinding)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("insert host player: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit create room: %w", err)
		}
		return s.LoadRoom(ctx, code)
	}
	return nil, fmt.Errorf("create room: could not allocate a unique code")
}

// JoinRoom seats the identity in the first free slot of a WAITING room
// and returns the assigned player id.
func (s *Store) JoinRoom(ctx context.Context, code, binding string) (int, error) {
	return s.seat(ctx, code, binding, engine.Human)
}

// AddBot seats a bot of the given type in the first free slot. The bot
// gets a synthetic session binding so every seat stays identity-addressed.
func (s *Store) AddBot(ctx context.Context, code string, botType engine.PlayerType) (int, error) {
	return s.seat(ctx, code, "bot:"+uuid.NewString(), botType)
}

func (s *Store) seat(ctx context.Context, code, binding string, playerType engine.PlayerType) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin join: %w", err)
	}
	defer tx.Rollback()

	room, err := loadRoomTx(ctx, tx, code)
	if err != nil {
		return 0, err
	}
	if room.Status != engine.StatusWaiting {
		return 0, ErrAlreadyStarted
	}
	taken := make(map[int]bool, len(room.Players))
	for _, p := range room.Players {
		if p.SessionBinding == binding {
			return 0, ErrAlreadyJoined
		}
		taken[p.ID] = true
	}

	seat := -1
	for _, candidate := range room.Mode.Seats() {
		if !taken[candidate] {
			seat = candidate
			break
		}
	}
	if seat < 0 {
		return 0, ErrRoomFull
	}

	pos, goal := engine.StartingPosition(seat)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO players (room_code, player_id, pos_row, pos_col, goal_side, walls_left, player_type, session_binding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		code, seat, pos.Row, pos.Col, goal, room.Mode.WallsPerPlayer(), playerType, binding)
	if err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET updated_at = ? WHERE code = ?`, time.Now().UTC(), code); err != nil {
		return 0, fmt.Errorf("touch room: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit join: %w", err)
	}
	return seat, nil
}

// StartRoom transitions a WAITING room to PLAYING with the first seat to
// act. Host and seat-count validation is the service's job; here only the
// status transition is guarded.
func (s *Store) StartRoom(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rooms SET status = ?, current_turn = 0, updated_at = ? WHERE code = ? AND status = ?`,
		engine.StatusPlaying, time.Now().UTC(), code, engine.StatusWaiting)
	if err != nil {
		return fmt.Errorf("start room: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("start room: %w", err)
	}
	if n == 0 {
		if _, err := s.LoadRoom(ctx, code); err != nil {
			return err
		}
		return ErrWrongStatus
	}
	return nil
}

// LoadRoom returns the full current state of a room. The reads share one
// transaction so the snapshot is consistent at a single turn number.
func (s *Store) LoadRoom(ctx context.Context, code string) (*RoomState, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()
	return loadRoomTx(ctx, tx, code)
}

func loadRoomTx(ctx context.Context, tx *sql.Tx, code string) (*RoomState, error) {
	rs := &RoomState{}
	var winner sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT code, status, game_mode, current_turn, turn_number, winner, bot_seed, host_binding, created_at, updated_at
		 FROM rooms WHERE code = ?`, code).
		Scan(&rs.Code, &rs.Status, &rs.Mode, &rs.CurrentTurn, &rs.TurnNumber,
			&winner, &rs.BotSeed, &rs.HostBinding, &rs.CreatedAt, &rs.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if winner.Valid {
		w := int(winner.Int64)
		rs.Winner = &w
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT player_id, pos_row, pos_col, goal_side, walls_left, player_type, session_binding
		 FROM players WHERE room_code = ? ORDER BY player_id`, code)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p engine.Player
		if err := rows.Scan(&p.ID, &p.Pos.Row, &p.Pos.Col, &p.Goal, &p.WallsLeft, &p.Type, &p.SessionBinding); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		rs.Players = append(rs.Players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	brows, err := tx.QueryContext(ctx,
		`SELECT pos_row, pos_col, orientation, placed_by FROM barriers WHERE room_code = ? ORDER BY id`, code)
	if err != nil {
		return nil, fmt.Errorf("load barriers: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		var b engine.Barrier
		if err := brows.Scan(&b.Row, &b.Col, &b.Orientation, &b.PlacedBy); err != nil {
			return nil, fmt.Errorf("scan barrier: %w", err)
		}
		rs.Barriers = append(rs.Barriers, b)
	}
	if err := brows.Err(); err != nil {
		return nil, fmt.Errorf("load barriers: %w", err)
	}

	var m engine.Move
	err = tx.QueryRowContext(ctx,
		`SELECT player_id, from_row, from_col, to_row, to_col, created_at
		 FROM moves WHERE room_code = ? ORDER BY turn_number DESC LIMIT 1`, code).
		Scan(&m.PlayerID, &m.From.Row, &m.From.Col, &m.To.Row, &m.To.Col, &m.CreatedAt)
	if err == nil {
		rs.LastMove = &m
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("load last move: %w", err)
	}

	return rs, nil
}

// MoveHistory returns the committed pawn moves of a room in turn order,
// paginated from offset.
func (s *Store) MoveHistory(ctx context.Context, code string, offset, limit int) ([]engine.Move, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM moves WHERE room_code = ?`, code).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count moves: %w", err)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, from_row, from_col, to_row, to_col, created_at
		 FROM moves WHERE room_code = ? ORDER BY turn_number LIMIT ? OFFSET ?`,
		code, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("load moves: %w", err)
	}
	defer rows.Close()

	var moves []engine.Move
	for rows.Next() {
		var m engine.Move
		if err := rows.Scan(&m.PlayerID, &m.From.Row, &m.From.Col, &m.To.Row, &m.To.Col, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan move: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, total, rows.Err()
}

// CommitAction applies one accepted action atomically. The compare-and-
// swap on turn_number is the optimistic concurrency gate: if the room
// advanced past expectedTurn since the caller loaded it, nothing is
// written and ErrStale is returned.
func (s *Store) CommitAction(ctx context.Context, code string, expectedTurn int, act Action) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	var winner interface{}
	if act.Winner != nil {
		winner = *act.Winner
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE rooms SET current_turn = ?, turn_number = turn_number + 1, winner = ?, status = ?, updated_at = ?
		 WHERE code = ? AND turn_number = ?`,
		act.NextTurn, winner, act.Status, now, code, expectedTurn)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM rooms WHERE code = ?`, code).Scan(&exists); err != nil {
			return fmt.Errorf("check room: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrStale
	}

	switch {
	case act.Move != nil:
		m := act.Move
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET pos_row = ?, pos_col = ? WHERE room_code = ? AND player_id = ?`,
			m.To.Row, m.To.Col, code, act.PlayerID); err != nil {
			return fmt.Errorf("move player: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO moves (room_code, player_id, from_row, from_col, to_row, to_col, turn_number, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			code, act.PlayerID, m.From.Row, m.From.Col, m.To.Row, m.To.Col, expectedTurn, now); err != nil {
			return fmt.Errorf("append move: %w", err)
		}
	case act.Barrier != nil:
		b := act.Barrier
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO barriers (room_code, pos_row, pos_col, orientation, placed_by, turn_number, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			code, b.Row, b.Col, b.Orientation, act.PlayerID, expectedTurn, now); err != nil {
			return fmt.Errorf("append barrier: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET walls_left = walls_left - 1 WHERE room_code = ? AND player_id = ?`,
			code, act.PlayerID); err != nil {
			return fmt.Errorf("decrement walls: %w", err)
		}
	}

	if act.Stats != nil {
		for _, binding := range act.Stats.PlayedBindings {
			won := 0
			if binding == act.Stats.WinnerBinding {
				won = 1
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_stats (binding, games_played, games_won) VALUES (?, 1, ?)
				 ON CONFLICT(binding) DO UPDATE SET games_played = games_played + 1, games_won = games_won + ?`,
				binding, won, won); err != nil {
				return fmt.Errorf("update user stats: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit action: %w", err)
	}
	return nil
}

// UndoLast reverses the most recent committed action of the room,
// provided it belongs to playerID and the room is still PLAYING. The turn
// reverts to the actor; turn_number deliberately stays where it is, which
// is what invalidates any bot job queued against the rotated-to turn.
func (s *Store) UndoLast(ctx context.Context, code string, playerID int) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin undo: %w", err)
	}
	defer tx.Rollback()

	room, err := loadRoomTx(ctx, tx, code)
	if err != nil {
		return err
	}
	if room.Status != engine.StatusPlaying || room.Winner != nil {
		return ErrWrongStatus
	}
	if room.PrevSeat(room.CurrentTurn) != playerID {
		return ErrNotUndoable
	}

	// The room's most recent action is whichever of the newest move and
	// newest barrier carries the higher turn number.
	var (
		moveID, moveTurn       int64 = -1, -1
		fromRow, fromCol             = 0, 0
		movePlayer                   = -1
		barrierID, barrierTurn int64 = -1, -1
		barrierPlayer                = -1
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, player_id, from_row, from_col, turn_number
		 FROM moves WHERE room_code = ? ORDER BY turn_number DESC LIMIT 1`, code).
		Scan(&moveID, &movePlayer, &fromRow, &fromCol, &moveTurn)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("load last move: %w", err)
	}
	err = tx.QueryRowContext(ctx,
		`SELECT id, placed_by, turn_number
		 FROM barriers WHERE room_code = ? ORDER BY turn_number DESC LIMIT 1`, code).
		Scan(&barrierID, &barrierPlayer, &barrierTurn)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("load last barrier: %w", err)
	}
	if moveTurn < 0 && barrierTurn < 0 {
		return ErrNotUndoable
	}

	if moveTurn > barrierTurn {
		if movePlayer != playerID {
			return ErrNotUndoable
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET pos_row = ?, pos_col = ? WHERE room_code = ? AND player_id = ?`,
			fromRow, fromCol, code, playerID); err != nil {
			return fmt.Errorf("restore position: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM moves WHERE id = ?`, moveID); err != nil {
			return fmt.Errorf("delete move: %w", err)
		}
	} else {
		if barrierPlayer != playerID {
			return ErrNotUndoable
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM barriers WHERE id = ?`, barrierID); err != nil {
			return fmt.Errorf("delete barrier: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET walls_left = walls_left + 1 WHERE room_code = ? AND player_id = ?`,
			code, playerID); err != nil {
			return fmt.Errorf("restore walls: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET current_turn = ?, updated_at = ? WHERE code = ?`,
		playerID, now, code); err != nil {
		return fmt.Errorf("revert turn: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit undo: %w", err)
	}
	return nil
}

// DeleteRoom removes a room; players, barriers, moves, and jobs cascade.
func (s *Store) DeleteRoom(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserStats returns the aggregate counters for one identity.
func (s *Store) UserStats(ctx context.Context, binding string) (played, won int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT games_played, games_won FROM user_stats WHERE binding = ?`, binding).
		Scan(&played, &won)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	return played, won, err
}

// isUniqueViolation sniffs the driver error text for a constraint
// violation; modernc/sqlite does not export a typed error for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

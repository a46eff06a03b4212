package service

import (
	"fmt"

	"github.com/gbr5/bloqueio-server/game/engine"
)

// Failure codes surfaced to clients, per operation. Rule violations keep
// the codes of the engine package; these cover everything around them.
const (
	CodeInvalidMode            = "INVALID_MODE"
	CodeNotFound               = "NOT_FOUND"
	CodeFull                   = "FULL"
	CodeAlreadyStarted         = "ALREADY_STARTED"
	CodeAlreadyJoined          = "ALREADY_JOINED"
	CodeNotHost                = "NOT_HOST"
	CodeWrongStatus            = "WRONG_STATUS"
	CodeBelowMin               = "BELOW_MIN"
	CodeAboveMax               = "ABOVE_MAX"
	CodeNotInRoom              = "NOT_IN_ROOM"
	CodeNotYourTurn            = "NOT_YOUR_TURN"
	CodeGameNotStarted         = "GAME_NOT_STARTED"
	CodeGameFinished           = "GAME_FINISHED"
	CodeNotUndoable            = "NOT_UNDOABLE"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeInternal               = "INTERNAL"
)

// Error is a service failure with a stable machine-readable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func svcErr(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode extracts the failure code from a service or rule error, or
// INTERNAL for anything else.
func ErrorCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	if e, ok := err.(*engine.RuleError); ok {
		return e.Code
	}
	return CodeInternal
}

// RoomInfo is the result of creating or joining a room. SessionToken is
// the caller's identity for every subsequent request on this room.
type RoomInfo struct {
	Code         string `json:"code"`
	PlayerID     int    `json:"player_id"`
	SessionToken string `json:"session_token"`
}

// RoomSnapshot is the client-facing view of a room. CallerPlayerID and
// IsMyTurn are filled in relative to the requesting identity, when known.
type RoomSnapshot struct {
	Code           string            `json:"code"`
	Status         engine.RoomStatus `json:"status"`
	Mode           engine.GameMode   `json:"game_mode"`
	Players        []engine.Player   `json:"players"`
	Barriers       []engine.Barrier  `json:"barriers"`
	CurrentTurn    int               `json:"current_turn"`
	TurnNumber     int               `json:"turn_number"`
	Winner         *int              `json:"winner"`
	LastMove       *engine.Move      `json:"last_move,omitempty"`
	CallerPlayerID *int              `json:"caller_player_id,omitempty"`
	IsMyTurn       bool              `json:"is_my_turn"`
}

// HistoryOptions configures move-history pagination.
type HistoryOptions struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// HistoryResponse is one page of a room's committed pawn moves.
type HistoryResponse struct {
	Moves      []engine.Move `json:"moves"`
	TotalMoves int           `json:"total_moves"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// UserStats are the aggregate per-identity counters bumped on winning
// commits.
type UserStats struct {
	GamesPlayed int `json:"games_played"`
	GamesWon    int `json:"games_won"`
}
